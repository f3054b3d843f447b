package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HLomotey/homa-suite-sub003/internal/shared"
)

// DirectoryPort is the read-only view of the staff/assignment directory the
// engine depends on.
type DirectoryPort interface {
	// ListChargeAssignments returns assignments eligible for the charge type
	// whose coarse employment interval touches [q.MonthStart, q.MonthEnd].
	ListChargeAssignments(ctx context.Context, q AssignmentQuery) ([]ChargeAssignment, error)
	// CountChargeAssignments counts eligible assignments regardless of month.
	CountChargeAssignments(ctx context.Context, chargeType ChargeType) (int, error)
}

// AssignmentQuery scopes a directory lookup to a charge type and month.
type AssignmentQuery struct {
	ChargeType ChargeType
	MonthStart time.Time
	MonthEnd   time.Time
}

// RepositoryPort defines the persistence operations used by the engine.
// UpsertRecord must be atomic on the (tenant, period start, period end,
// charge type) conflict key; InsertDeductions must be atomic per call.
type RepositoryPort interface {
	UpsertRecord(ctx context.Context, input RecordInput) (*BillingRecord, error)
	HasDeductions(ctx context.Context, recordID int64) (bool, error)
	InsertDeductions(ctx context.Context, recordID int64, items []ScheduleItem) error
	GetRecord(ctx context.Context, id int64) (*BillingRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]BillingRecord, error)
	CountRecords(ctx context.Context, filter RecordFilter) (int, error)
	ListDeductions(ctx context.Context, recordID int64) ([]Deduction, error)
	CancelRecord(ctx context.Context, id int64) error
}

// Auditor records generation runs. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsObserver counts run outcomes. Satisfied by observability.Metrics.
type MetricsObserver interface {
	ObserveBillingRun(chargeType string, written, skipped int)
}

// Hard-failure sentinels for an empty upstream. An empty directory signals
// misconfiguration, not "nobody owes money".
var (
	ErrNoAssignments   = errors.New("billing: no charge assignments exist for this charge type")
	ErrNoneInMonth     = errors.New("billing: charge assignments exist but none fall within the billing month")
	ErrUnknownCharge   = errors.New("billing: unknown charge type")
	ErrInvalidSelector = errors.New("billing: invalid billing-period selector")
)

// Options configures the generation service.
type Options struct {
	Location            *time.Location
	DefaultRates        map[ChargeType]decimal.Decimal
	BusCardInstallments int
	Auditor             Auditor
	Metrics             MetricsObserver
}

// Service orchestrates billing generation across charge types.
type Service struct {
	repo    RepositoryPort
	dir     DirectoryPort
	logger  *slog.Logger
	loc     *time.Location
	rates   map[ChargeType]decimal.Decimal
	busCard int
	auditor Auditor
	metrics MetricsObserver
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, dir DirectoryPort, logger *slog.Logger, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	rates := opts.DefaultRates
	if rates == nil {
		rates = map[ChargeType]decimal.Decimal{}
	}
	return &Service{
		repo:    repo,
		dir:     dir,
		logger:  logger,
		loc:     loc,
		rates:   rates,
		busCard: opts.BusCardInstallments,
		auditor: opts.Auditor,
		metrics: opts.Metrics,
	}
}

// RunRequest describes one per-charge-type generation run.
type RunRequest struct {
	Year       int
	Month      time.Month
	ChargeType ChargeType
	Selector   PeriodSelector
	ActorID    int64
}

// RunResult summarises one per-charge-type generation run.
type RunResult struct {
	RunID      string     `json:"run_id"`
	ChargeType ChargeType `json:"charge_type"`
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Written    int        `json:"written"`
	Skipped    int        `json:"skipped"`
	Schedules  int        `json:"schedules"`
}

// GenerateForMonth produces the billing records (and installment schedules)
// that should exist for the month and charge type. Re-running is idempotent:
// existing rows are updated through the upsert conflict key and existing
// schedules are never regenerated. Per-assignment write failures are logged
// and counted but do not abort the batch.
func (s *Service) GenerateForMonth(ctx context.Context, req RunRequest) (RunResult, error) {
	if !req.ChargeType.Valid() {
		return RunResult{}, fmt.Errorf("%w: %q", ErrUnknownCharge, req.ChargeType)
	}
	if req.Selector == "" {
		req.Selector = PeriodBoth
	}
	if !req.Selector.Valid() {
		return RunResult{}, fmt.Errorf("%w: %q", ErrInvalidSelector, req.Selector)
	}
	windows, err := WindowsForMonth(req.Year, req.Month, s.loc)
	if err != nil {
		return RunResult{}, err
	}
	monthStart, monthEnd := monthBounds(req.Year, req.Month, s.loc)

	assignments, err := s.dir.ListChargeAssignments(ctx, AssignmentQuery{
		ChargeType: req.ChargeType,
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("billing: list assignments: %w", err)
	}
	if len(assignments) == 0 {
		total, countErr := s.dir.CountChargeAssignments(ctx, req.ChargeType)
		if countErr != nil {
			return RunResult{}, fmt.Errorf("billing: count assignments: %w", countErr)
		}
		if total == 0 {
			return RunResult{}, fmt.Errorf("%w (charge type %s)", ErrNoAssignments, req.ChargeType)
		}
		return RunResult{}, fmt.Errorf("%w (%d assignments, month %04d-%02d)", ErrNoneInMonth, total, req.Year, int(req.Month))
	}

	result := RunResult{
		RunID:      uuid.NewString(),
		ChargeType: req.ChargeType,
		Year:       req.Year,
		Month:      int(req.Month),
	}
	installments := InstallmentCount(req.ChargeType, s.busCard)

	for _, assignment := range assignments {
		start, end := s.effectiveInterval(assignment, monthStart)
		inclusion := InclusionForMonth(monthStart, start, end)
		for i, window := range windows {
			if i == 0 && (!inclusion.FirstWindow || req.Selector == PeriodSecond) {
				continue
			}
			if i == 1 && (!inclusion.SecondWindow || req.Selector == PeriodFirst) {
				continue
			}
			amount := s.resolveAmount(req.ChargeType, assignment)
			record, err := s.repo.UpsertRecord(ctx, RecordInput{
				TenantID:        assignment.TenantID,
				PropertyID:      assignment.PropertyID,
				RoomID:          assignment.RoomID,
				Amount:          amount,
				ChargeType:      req.ChargeType,
				PeriodStart:     window.Start,
				PeriodEnd:       window.End,
				AssignmentStart: *start,
				AssignmentEnd:   end,
			})
			if err != nil {
				result.Skipped++
				s.logger.Error("billing record upsert failed",
					slog.Int64("tenant_id", assignment.TenantID),
					slog.String("charge_type", string(req.ChargeType)),
					slog.Time("period_start", window.Start),
					slog.Any("error", err))
				continue
			}
			result.Written++

			if installments > 0 {
				n, err := s.ensureSchedule(ctx, record, installments, *start, window)
				if err != nil {
					s.logger.Error("deduction schedule failed",
						slog.Int64("billing_record_id", record.ID),
						slog.Int64("tenant_id", assignment.TenantID),
						slog.Any("error", err))
					continue
				}
				result.Schedules += n
			}
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveBillingRun(string(req.ChargeType), result.Written, result.Skipped)
	}
	if s.auditor != nil {
		if err := s.auditor.Record(ctx, shared.AuditLog{
			ActorID:  req.ActorID,
			Action:   "billing.generate",
			Entity:   "billing_run",
			EntityID: result.RunID,
			Meta: map[string]any{
				"charge_type": string(req.ChargeType),
				"year":        req.Year,
				"month":       int(req.Month),
				"selector":    string(req.Selector),
				"written":     result.Written,
				"skipped":     result.Skipped,
			},
		}); err != nil {
			s.logger.Warn("audit record failed", slog.Any("error", err))
		}
	}

	s.logger.Info("billing generation complete",
		slog.String("run_id", result.RunID),
		slog.String("charge_type", string(req.ChargeType)),
		slog.Int("written", result.Written),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// effectiveInterval resolves the employment interval for inclusion checks,
// falling back to assignment dates when hire/termination are absent. When
// neither is present the assignment is treated as active from the start of
// the month and the gap is logged.
func (s *Service) effectiveInterval(a ChargeAssignment, monthStart time.Time) (*time.Time, *time.Time) {
	start := a.HireDate
	if start == nil {
		start = a.AssignmentStart
	}
	end := a.TerminationDate
	if end == nil {
		end = a.AssignmentEnd
	}
	if start == nil {
		s.logger.Warn("assignment missing hire and start dates, treating as active",
			slog.Int64("tenant_id", a.TenantID),
			slog.Int64("property_id", a.PropertyID))
		ms := monthStart
		start = &ms
	}
	return start, end
}

// resolveAmount prefers the assignment override, then the charge-type
// default rate.
func (s *Service) resolveAmount(chargeType ChargeType, a ChargeAssignment) decimal.Decimal {
	if a.BaseAmount != nil && a.BaseAmount.Sign() > 0 {
		return *a.BaseAmount
	}
	return s.rates[chargeType]
}

// ensureSchedule generates and persists the installment plan for a record
// unless items already exist. Sequence numbers must stay stable once the
// payroll system references them, so existing schedules are never rebuilt.
func (s *Service) ensureSchedule(ctx context.Context, record *BillingRecord, installments int, assignmentStart time.Time, window Window) (int, error) {
	exists, err := s.repo.HasDeductions(ctx, record.ID)
	if err != nil {
		return 0, fmt.Errorf("check existing deductions: %w", err)
	}
	if exists {
		return 0, nil
	}
	start := dateOnly(assignmentStart, s.loc)
	if start.Before(window.Start) {
		start = window.Start
	}
	items := GenerateSchedule(record.Amount, installments, start)
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.repo.InsertDeductions(ctx, record.ID, items); err != nil {
		return 0, fmt.Errorf("insert deductions: %w", err)
	}
	return len(items), nil
}

// Summary aggregates a multi-type composition run.
type Summary struct {
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Selector PeriodSelector        `json:"selector"`
	Results  []RunResult           `json:"results"`
	Failures map[ChargeType]string `json:"failures,omitempty"`
	Written  int                   `json:"written"`
	Skipped  int                   `json:"skipped"`
}

// GenerateAll runs every charge type for the month. A failing charge type is
// reported in the summary without stopping the remaining types.
func (s *Service) GenerateAll(ctx context.Context, year int, month time.Month, selector PeriodSelector, actorID int64) (Summary, error) {
	if selector == "" {
		selector = PeriodBoth
	}
	if !selector.Valid() {
		return Summary{}, fmt.Errorf("%w: %q", ErrInvalidSelector, selector)
	}
	if _, err := WindowsForMonth(year, month, s.loc); err != nil {
		return Summary{}, err
	}

	summary := Summary{Year: year, Month: int(month), Selector: selector}
	for _, chargeType := range AllChargeTypes {
		result, err := s.GenerateForMonth(ctx, RunRequest{
			Year:       year,
			Month:      month,
			ChargeType: chargeType,
			Selector:   selector,
			ActorID:    actorID,
		})
		if err != nil {
			if summary.Failures == nil {
				summary.Failures = map[ChargeType]string{}
			}
			summary.Failures[chargeType] = err.Error()
			s.logger.Error("charge type generation failed",
				slog.String("charge_type", string(chargeType)),
				slog.Any("error", err))
			continue
		}
		summary.Results = append(summary.Results, result)
		summary.Written += result.Written
		summary.Skipped += result.Skipped
	}
	return summary, nil
}

// GetRecord returns one billing record.
func (s *Service) GetRecord(ctx context.Context, id int64) (*BillingRecord, error) {
	return s.repo.GetRecord(ctx, id)
}

// ListRecords returns billing records matching the filter.
func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]BillingRecord, error) {
	return s.repo.ListRecords(ctx, filter)
}

// CountRecords returns the total matching the filter, ignoring paging.
func (s *Service) CountRecords(ctx context.Context, filter RecordFilter) (int, error) {
	return s.repo.CountRecords(ctx, filter)
}

// ListDeductions returns the installment rows of a record.
func (s *Service) ListDeductions(ctx context.Context, recordID int64) ([]Deduction, error) {
	return s.repo.ListDeductions(ctx, recordID)
}

// CancelRecord cancels a billing record and its pending deductions.
func (s *Service) CancelRecord(ctx context.Context, id int64) error {
	return s.repo.CancelRecord(ctx, id)
}
