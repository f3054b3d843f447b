package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/HLomotey/homa-suite-sub003/internal/billing"
	jobmetrics "github.com/HLomotey/homa-suite-sub003/internal/jobs"
	"github.com/HLomotey/homa-suite-sub003/internal/platform/cache"
	"github.com/HLomotey/homa-suite-sub003/internal/shared"
)

// BillingGenerateJob runs billing generation from the queue.
type BillingGenerateJob struct {
	Service *billing.Service
	Cache   *billing.SummaryCache
	Redis   *redis.Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBillingGenerateJob wires dependencies for the generation handler. The
// redis client is optional; when present it guards against two workers
// generating the same month concurrently.
func NewBillingGenerateJob(service *billing.Service, summaryCache *billing.SummaryCache, redisClient *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *BillingGenerateJob {
	return &BillingGenerateJob{
		Service: service,
		Cache:   summaryCache,
		Redis:   redisClient,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes billing generation tasks.
func (j *BillingGenerateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("billing generate: handler not configured")
	}
	var payload BillingGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	now := j.clock()
	year := payload.Year
	month := time.Month(payload.Month)
	if year == 0 {
		year = now.Year()
	}
	if payload.Month == 0 {
		month = now.Month()
	}
	selector := billing.PeriodSelector(payload.Period)
	if selector == "" {
		selector = billing.PeriodBoth
	}

	lock := cache.NewLock(j.Redis, shared.GenerationLockKey(year, int(month)), 15*time.Minute)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		j.logger().Warn("billing generation already running for month, skipping",
			slog.Int("year", year), slog.Int("month", int(month)))
		return nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			j.logger().Warn("run lock release failed", slog.Any("error", err))
		}
	}()

	tracker := j.metrics().Track(TaskBillingGenerate)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.Int("year", year),
		slog.Int("month", int(month)),
		slog.String("charge_type", payload.ChargeType))

	if payload.ChargeType != "" {
		result, err := j.Service.GenerateForMonth(ctx, billing.RunRequest{
			Year:       year,
			Month:      month,
			ChargeType: billing.ChargeType(payload.ChargeType),
			Selector:   selector,
		})
		if err != nil {
			resultErr = err
			logger.Error("billing generation task failed", slog.Any("error", err))
			return resultErr
		}
		logger.Info("billing generation task complete",
			slog.Int("written", result.Written),
			slog.Int("skipped", result.Skipped))
		return nil
	}

	summary, err := j.Service.GenerateAll(ctx, year, month, selector, 0)
	if err != nil {
		resultErr = err
		logger.Error("billing generation task failed", slog.Any("error", err))
		return resultErr
	}
	if j.Cache != nil {
		if err := j.Cache.Store(ctx, summary); err != nil {
			logger.Warn("summary cache store failed", slog.Any("error", err))
		}
	}
	if len(summary.Failures) > 0 {
		logger.Warn("billing generation finished with per-type failures",
			slog.Int("failed_types", len(summary.Failures)),
			slog.Int("written", summary.Written),
			slog.Int("skipped", summary.Skipped))
		return nil
	}
	logger.Info("billing generation task complete",
		slog.Int("written", summary.Written),
		slog.Int("skipped", summary.Skipped))
	return nil
}

func (j *BillingGenerateJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *BillingGenerateJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
