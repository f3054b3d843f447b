package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillingGenerate runs semi-monthly billing generation for a month.
	TaskBillingGenerate = "billing:generate"
)

// BillingGeneratePayload describes one generation run. Zero year/month means
// "the month the task executes in", which is what the monthly cron enqueues.
type BillingGeneratePayload struct {
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
	ChargeType string `json:"charge_type,omitempty"`
	Period     string `json:"period,omitempty"`
}

// NewBillingGenerateTask constructs an Asynq task.
func NewBillingGenerateTask(payload BillingGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingGenerate, data, asynq.Queue(QueueDefault)), nil
}
