package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("directory: not found")

// CreateAssignment inserts a new charge assignment.
func (r *Repository) CreateAssignment(ctx context.Context, input AssignmentInput) (*Assignment, error) {
	query := `
		INSERT INTO charge_assignments (
			tenant_id, property_id, room_id, base_amount, start_date, end_date,
			has_housing_agreement, has_transport_agreement, has_bus_card,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	a := Assignment{
		TenantID:              input.TenantID,
		PropertyID:            input.PropertyID,
		RoomID:                input.RoomID,
		BaseAmount:            input.BaseAmount,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		HasHousingAgreement:   input.HasHousingAgreement,
		HasTransportAgreement: input.HasTransportAgreement,
		HasBusCard:            input.HasBusCard,
	}
	err := r.pool.QueryRow(ctx, query,
		input.TenantID, input.PropertyID, input.RoomID, input.BaseAmount,
		input.StartDate, input.EndDate,
		input.HasHousingAgreement, input.HasTransportAgreement, input.HasBusCard,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("directory: create assignment: %w", err)
	}
	return &a, nil
}

// UpdateAssignment rewrites the writable fields of an assignment.
func (r *Repository) UpdateAssignment(ctx context.Context, id int64, input AssignmentInput) (*Assignment, error) {
	query := `
		UPDATE charge_assignments SET
			tenant_id = $2, property_id = $3, room_id = $4, base_amount = $5,
			start_date = $6, end_date = $7,
			has_housing_agreement = $8, has_transport_agreement = $9, has_bus_card = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, created_at, updated_at`

	a := Assignment{
		TenantID:              input.TenantID,
		PropertyID:            input.PropertyID,
		RoomID:                input.RoomID,
		BaseAmount:            input.BaseAmount,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		HasHousingAgreement:   input.HasHousingAgreement,
		HasTransportAgreement: input.HasTransportAgreement,
		HasBusCard:            input.HasBusCard,
	}
	err := r.pool.QueryRow(ctx, query, id,
		input.TenantID, input.PropertyID, input.RoomID, input.BaseAmount,
		input.StartDate, input.EndDate,
		input.HasHousingAgreement, input.HasTransportAgreement, input.HasBusCard,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: update assignment: %w", err)
	}
	return &a, nil
}

// GetAssignment retrieves one assignment.
func (r *Repository) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	query := `
		SELECT id, tenant_id, property_id, room_id, base_amount, start_date, end_date,
			has_housing_agreement, has_transport_agreement, has_bus_card,
			created_at, updated_at
		FROM charge_assignments WHERE id = $1`

	var a Assignment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.TenantID, &a.PropertyID, &a.RoomID, &a.BaseAmount,
		&a.StartDate, &a.EndDate,
		&a.HasHousingAgreement, &a.HasTransportAgreement, &a.HasBusCard,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: get assignment: %w", err)
	}
	return &a, nil
}

// ListAssignments returns assignments for a tenant, or all when tenantID is
// zero.
func (r *Repository) ListAssignments(ctx context.Context, tenantID int64) ([]Assignment, error) {
	query := `
		SELECT id, tenant_id, property_id, room_id, base_amount, start_date, end_date,
			has_housing_agreement, has_transport_agreement, has_bus_card,
			created_at, updated_at
		FROM charge_assignments
		WHERE ($1 = 0 OR tenant_id = $1)
		ORDER BY tenant_id, id`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("directory: list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.PropertyID, &a.RoomID, &a.BaseAmount,
			&a.StartDate, &a.EndDate,
			&a.HasHousingAgreement, &a.HasTransportAgreement, &a.HasBusCard,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("directory: scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetStaff retrieves one staff row.
func (r *Repository) GetStaff(ctx context.Context, id int64) (*Staff, error) {
	query := `
		SELECT id, first_name, last_name, COALESCE(employment_status, ''),
			hire_date, termination_date, created_at, updated_at
		FROM staff WHERE id = $1`

	var s Staff
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.EmploymentStatus,
		&s.HireDate, &s.TerminationDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("directory: get staff: %w", err)
	}
	return &s, nil
}

// RecordTermination sets the termination date and status on a staff row.
// The termination day itself still counts as a worked day for billing.
func (r *Repository) RecordTermination(ctx context.Context, staffID int64, terminationDate time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE staff SET termination_date = $2, employment_status = $3, updated_at = NOW() WHERE id = $1`,
		staffID, terminationDate, StatusTerminated)
	if err != nil {
		return fmt.Errorf("directory: record termination: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
