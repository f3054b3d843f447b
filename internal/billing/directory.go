package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryReader is the pgx-backed DirectoryPort. It reads the staff and
// charge_assignments tables owned by the directory module; the engine never
// writes to them.
type DirectoryReader struct {
	pool *pgxpool.Pool
}

// NewDirectoryReader constructs the reader.
func NewDirectoryReader(pool *pgxpool.Pool) *DirectoryReader {
	return &DirectoryReader{pool: pool}
}

// eligibilityColumn maps each charge type to its agreement flag on
// charge_assignments. Security deposits ride on the housing agreement.
func eligibilityColumn(chargeType ChargeType) (string, error) {
	switch chargeType {
	case ChargeHousing, ChargeSecurityDeposit:
		return "a.has_housing_agreement", nil
	case ChargeTransportation:
		return "a.has_transport_agreement", nil
	case ChargeBusCard:
		return "a.has_bus_card", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCharge, chargeType)
	}
}

// ListChargeAssignments returns eligible assignments joined with employment
// fields. The WHERE clause is only the coarse month filter: hire not after
// month end, termination not before month start, status not terminated. The
// overlap evaluator makes the precise per-window decision.
func (r *DirectoryReader) ListChargeAssignments(ctx context.Context, q AssignmentQuery) ([]ChargeAssignment, error) {
	flag, err := eligibilityColumn(q.ChargeType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT a.tenant_id, a.property_id, a.room_id, a.base_amount,
			a.start_date, a.end_date,
			s.hire_date, s.termination_date, COALESCE(s.employment_status, '')
		FROM charge_assignments a
		LEFT JOIN staff s ON s.id = a.tenant_id
		WHERE %s
			AND COALESCE(s.employment_status, '') <> 'terminated'
			AND (s.hire_date IS NULL OR s.hire_date <= $1)
			AND (s.termination_date IS NULL OR s.termination_date >= $2)
		ORDER BY a.tenant_id`, flag)

	rows, err := r.pool.Query(ctx, query, q.MonthEnd, q.MonthStart)
	if err != nil {
		return nil, fmt.Errorf("billing: query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []ChargeAssignment
	for rows.Next() {
		var a ChargeAssignment
		if err := rows.Scan(
			&a.TenantID, &a.PropertyID, &a.RoomID, &a.BaseAmount,
			&a.AssignmentStart, &a.AssignmentEnd,
			&a.HireDate, &a.TerminationDate, &a.EmploymentStatus); err != nil {
			return nil, fmt.Errorf("billing: scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CountChargeAssignments counts eligible assignments without the month
// filter, distinguishing "none exist" from "none in this month".
func (r *DirectoryReader) CountChargeAssignments(ctx context.Context, chargeType ChargeType) (int, error) {
	flag, err := eligibilityColumn(chargeType)
	if err != nil {
		return 0, err
	}
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM charge_assignments a WHERE %s`, flag)
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("billing: count assignments: %w", err)
	}
	return count, nil
}
