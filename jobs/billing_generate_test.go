package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/HLomotey/homa-suite-sub003/internal/billing"
)

type stubRepo struct {
	records map[string]*billing.BillingRecord
	nextID  int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]*billing.BillingRecord)}
}

func (r *stubRepo) UpsertRecord(ctx context.Context, input billing.RecordInput) (*billing.BillingRecord, error) {
	key := input.PeriodStart.Format("2006-01-02") + "|" + string(input.ChargeType)
	if rec, ok := r.records[key]; ok {
		rec.Amount = input.Amount
		return rec, nil
	}
	r.nextID++
	rec := &billing.BillingRecord{
		ID:          r.nextID,
		TenantID:    input.TenantID,
		Amount:      input.Amount,
		ChargeType:  input.ChargeType,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
	}
	r.records[key] = rec
	return rec, nil
}

func (r *stubRepo) HasDeductions(ctx context.Context, recordID int64) (bool, error) { return true, nil }
func (r *stubRepo) InsertDeductions(ctx context.Context, recordID int64, items []billing.ScheduleItem) error {
	return nil
}
func (r *stubRepo) GetRecord(ctx context.Context, id int64) (*billing.BillingRecord, error) {
	return nil, billing.ErrNotFound
}
func (r *stubRepo) ListRecords(ctx context.Context, filter billing.RecordFilter) ([]billing.BillingRecord, error) {
	return nil, nil
}
func (r *stubRepo) CountRecords(ctx context.Context, filter billing.RecordFilter) (int, error) {
	return len(r.records), nil
}
func (r *stubRepo) ListDeductions(ctx context.Context, recordID int64) ([]billing.Deduction, error) {
	return nil, nil
}
func (r *stubRepo) CancelRecord(ctx context.Context, id int64) error { return nil }

type stubDirectory struct{}

func (stubDirectory) ListChargeAssignments(ctx context.Context, q billing.AssignmentQuery) ([]billing.ChargeAssignment, error) {
	hire := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	return []billing.ChargeAssignment{{TenantID: 1, PropertyID: 10, HireDate: &hire}}, nil
}

func (stubDirectory) CountChargeAssignments(ctx context.Context, chargeType billing.ChargeType) (int, error) {
	return 1, nil
}

func testJob(repo *stubRepo) *BillingGenerateJob {
	svc := billing.NewService(repo, stubDirectory{}, slog.Default(), billing.Options{
		Location: time.UTC,
		DefaultRates: map[billing.ChargeType]decimal.Decimal{
			billing.ChargeHousing:         decimal.RequireFromString("250.00"),
			billing.ChargeTransportation:  decimal.RequireFromString("25.00"),
			billing.ChargeSecurityDeposit: decimal.RequireFromString("500.00"),
			billing.ChargeBusCard:         decimal.RequireFromString("50.00"),
		},
		BusCardInstallments: 1,
	})
	job := NewBillingGenerateJob(svc, nil, nil, slog.Default(), nil)
	job.clock = func() time.Time {
		return time.Date(2025, time.August, 3, 12, 0, 0, 0, time.UTC)
	}
	return job
}

func TestBillingGenerateHandleSingleType(t *testing.T) {
	repo := newStubRepo()
	job := testJob(repo)

	task, err := NewBillingGenerateTask(BillingGeneratePayload{
		Year:       2025,
		Month:      8,
		ChargeType: string(billing.ChargeHousing),
	})
	require.NoError(t, err)
	require.Equal(t, TaskBillingGenerate, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, repo.records, 2)
}

func TestBillingGenerateHandleDefaultsToCurrentMonth(t *testing.T) {
	repo := newStubRepo()
	job := testJob(repo)

	task, err := NewBillingGenerateTask(BillingGeneratePayload{ChargeType: string(billing.ChargeHousing)})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	for _, rec := range repo.records {
		require.Equal(t, time.August, rec.PeriodStart.Month())
	}
}

func TestBillingGenerateHandleAllTypes(t *testing.T) {
	repo := newStubRepo()
	job := testJob(repo)

	task, err := NewBillingGenerateTask(BillingGeneratePayload{Year: 2025, Month: 8})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	// Four charge types across two windows each.
	require.Len(t, repo.records, 8)
}

func TestBillingGenerateHandleBadPayloadSkipsRetry(t *testing.T) {
	job := testJob(newStubRepo())
	task := asynq.NewTask(TaskBillingGenerate, []byte("{not json"))
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}
