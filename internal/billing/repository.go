package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HLomotey/homa-suite-sub003/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for billing records and
// deductions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("billing: not found")

const uniqueViolation = "23505"

// UpsertRecord writes a billing record, updating amount and assignment dates
// on conflict with the (tenant, period, charge type) key. The conflict
// target makes re-running a month idempotent.
func (r *Repository) UpsertRecord(ctx context.Context, input RecordInput) (*BillingRecord, error) {
	query := `
		INSERT INTO billing_records (
			tenant_id, property_id, room_id, amount, payment_status, charge_type,
			period_start, period_end, assignment_start, assignment_end, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 'PENDING', $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (tenant_id, period_start, period_end, charge_type) DO UPDATE SET
			property_id = EXCLUDED.property_id,
			room_id = EXCLUDED.room_id,
			amount = EXCLUDED.amount,
			assignment_start = EXCLUDED.assignment_start,
			assignment_end = EXCLUDED.assignment_end,
			updated_at = NOW()
		RETURNING id, payment_status, created_at, updated_at`

	rec := BillingRecord{
		TenantID:        input.TenantID,
		PropertyID:      input.PropertyID,
		RoomID:          input.RoomID,
		Amount:          input.Amount,
		ChargeType:      input.ChargeType,
		PeriodStart:     input.PeriodStart,
		PeriodEnd:       input.PeriodEnd,
		AssignmentStart: input.AssignmentStart,
		AssignmentEnd:   input.AssignmentEnd,
	}
	err := r.pool.QueryRow(ctx, query,
		input.TenantID,
		input.PropertyID,
		input.RoomID,
		input.Amount,
		input.ChargeType,
		input.PeriodStart,
		input.PeriodEnd,
		input.AssignmentStart,
		input.AssignmentEnd,
	).Scan(&rec.ID, &rec.PaymentStatus, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("billing: upsert record: %w", err)
	}
	return &rec, nil
}

// HasDeductions reports whether any schedule rows exist for the record.
func (r *Repository) HasDeductions(ctx context.Context, recordID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM billing_deductions WHERE billing_record_id = $1)`,
		recordID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("billing: check deductions: %w", err)
	}
	return exists, nil
}

// InsertDeductions writes the full installment plan in one batch. The
// partial unique index on (billing_record_id, sequence) keeps a concurrent
// duplicate generation from corrupting sequence numbers.
func (r *Repository) InsertDeductions(ctx context.Context, recordID int64, items []ScheduleItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO billing_deductions (
				billing_record_id, sequence, payroll_period, deduction_date,
				scheduled_amount, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, 'PENDING', NOW(), NOW())`,
			recordID, item.Sequence, item.PayrollPeriod, item.DeductionDate, item.ScheduledAmount)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()
	for range items {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("billing: deduction schedule already exists for record %d: %w", recordID, err)
			}
			return fmt.Errorf("billing: insert deductions: %w", err)
		}
	}
	return nil
}

// GetRecord retrieves a billing record by ID.
func (r *Repository) GetRecord(ctx context.Context, id int64) (*BillingRecord, error) {
	query := `
		SELECT id, tenant_id, property_id, room_id, amount, payment_status, charge_type,
			period_start, period_end, assignment_start, assignment_end, created_at, updated_at
		FROM billing_records WHERE id = $1`

	var rec BillingRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.TenantID, &rec.PropertyID, &rec.RoomID, &rec.Amount,
		&rec.PaymentStatus, &rec.ChargeType, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.AssignmentStart, &rec.AssignmentEnd, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("billing: get record: %w", err)
	}
	return &rec, nil
}

func recordFilterConditions(filter RecordFilter) ([]string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.TenantID > 0 {
		add("tenant_id = $%d", filter.TenantID)
	}
	if filter.ChargeType != "" {
		add("charge_type = $%d", filter.ChargeType)
	}
	if filter.PeriodStart != nil {
		add("period_start >= $%d", *filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		add("period_end <= $%d", *filter.PeriodEnd)
	}
	return conditions, args
}

// CountRecords returns the number of billing records matching the filter,
// ignoring limit and offset.
func (r *Repository) CountRecords(ctx context.Context, filter RecordFilter) (int, error) {
	conditions, args := recordFilterConditions(filter)
	query := `SELECT COUNT(*) FROM billing_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("billing: count records: %w", err)
	}
	return total, nil
}

// ListRecords returns billing records matching the filter, newest first.
func (r *Repository) ListRecords(ctx context.Context, filter RecordFilter) ([]BillingRecord, error) {
	conditions, args := recordFilterConditions(filter)

	query := `
		SELECT id, tenant_id, property_id, room_id, amount, payment_status, charge_type,
			period_start, period_end, assignment_start, assignment_end, created_at, updated_at
		FROM billing_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY period_start DESC, tenant_id"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("billing: list records: %w", err)
	}
	defer rows.Close()

	var records []BillingRecord
	for rows.Next() {
		var rec BillingRecord
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.PropertyID, &rec.RoomID, &rec.Amount,
			&rec.PaymentStatus, &rec.ChargeType, &rec.PeriodStart, &rec.PeriodEnd,
			&rec.AssignmentStart, &rec.AssignmentEnd, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("billing: scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListDeductions returns the installment rows of a record in sequence order.
func (r *Repository) ListDeductions(ctx context.Context, recordID int64) ([]Deduction, error) {
	query := `
		SELECT id, billing_record_id, sequence, payroll_period, deduction_date,
			scheduled_amount, status, actual_amount, processed_at, payroll_reference,
			failure_reason, created_at, updated_at
		FROM billing_deductions
		WHERE billing_record_id = $1
		ORDER BY sequence`

	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("billing: list deductions: %w", err)
	}
	defer rows.Close()

	var deductions []Deduction
	for rows.Next() {
		var d Deduction
		if err := rows.Scan(
			&d.ID, &d.BillingRecordID, &d.Sequence, &d.PayrollPeriod, &d.DeductionDate,
			&d.ScheduledAmount, &d.Status, &d.ActualAmount, &d.ProcessedAt,
			&d.PayrollReference, &d.FailureReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("billing: scan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

// CancelRecord marks a record cancelled and cancels its pending deductions
// in one transaction. Processed or failed deductions keep their state; the
// payroll collaborator owns those.
func (r *Repository) CancelRecord(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE billing_records SET payment_status = 'CANCELLED', updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("billing: cancel record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE billing_deductions SET status = 'CANCELLED', updated_at = NOW()
			 WHERE billing_record_id = $1 AND status = 'PENDING'`, id)
		if err != nil {
			return fmt.Errorf("billing: cancel deductions: %w", err)
		}
		return nil
	})
}
