package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HLomotey/homa-suite-sub003/internal/billing"
	"github.com/HLomotey/homa-suite-sub003/jobs"
)

// BillingCLI wraps manual management helpers for billing jobs.
type BillingCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewBillingCLI initialises the CLI helpers using the provided Redis address.
func NewBillingCLI(redisAddr string) (*BillingCLI, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
	return &BillingCLI{client: client, inspector: inspector}, nil
}

// Close releases underlying resources.
func (c *BillingCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Trigger enqueues a billing generation run for the given month. Charge type
// and period may be empty to run every type across both windows.
func (c *BillingCLI) Trigger(ctx context.Context, year, month int, chargeType, period string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("billing cli: client not configured")
	}
	task, err := jobs.NewBillingGenerateTask(jobs.BillingGeneratePayload{
		Year:       year,
		Month:      month,
		ChargeType: chargeType,
		Period:     period,
	})
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *BillingCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("billing cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = int(info.Pending)
		stats.Active = int(info.Active)
		stats.Scheduled = int(info.Scheduled)
		stats.Retry = int(info.Retry)
	}
	return stats, nil
}

// FormatSummary renders a run summary for terminal output with grouped
// digits, one line per charge type plus a total line.
func FormatSummary(summary billing.Summary) string {
	printer := message.NewPrinter(language.English)
	var b strings.Builder
	fmt.Fprintf(&b, "billing run %04d-%02d (%s)\n", summary.Year, summary.Month, summary.Selector)
	for _, result := range summary.Results {
		b.WriteString(printer.Sprintf("  %-16s written=%d skipped=%d schedules=%d\n",
			string(result.ChargeType), result.Written, result.Skipped, result.Schedules))
	}
	for chargeType, reason := range summary.Failures {
		fmt.Fprintf(&b, "  %-16s FAILED: %s\n", string(chargeType), reason)
	}
	b.WriteString(printer.Sprintf("  total written=%d skipped=%d\n", summary.Written, summary.Skipped))
	return b.String()
}
