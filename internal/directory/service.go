package directory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RepositoryPort defines data access methods for the directory.
type RepositoryPort interface {
	CreateAssignment(ctx context.Context, input AssignmentInput) (*Assignment, error)
	UpdateAssignment(ctx context.Context, id int64, input AssignmentInput) (*Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*Assignment, error)
	ListAssignments(ctx context.Context, tenantID int64) ([]Assignment, error)
	GetStaff(ctx context.Context, id int64) (*Staff, error)
	RecordTermination(ctx context.Context, staffID int64, terminationDate time.Time) error
}

// Service handles directory business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateAssignment validates and stores a new charge assignment.
func (s *Service) CreateAssignment(ctx context.Context, input AssignmentInput) (*Assignment, error) {
	if err := validateAssignment(input); err != nil {
		return nil, err
	}
	return s.repo.CreateAssignment(ctx, input)
}

// UpdateAssignment validates and rewrites an assignment.
func (s *Service) UpdateAssignment(ctx context.Context, id int64, input AssignmentInput) (*Assignment, error) {
	if id <= 0 {
		return nil, errors.New("assignment ID required")
	}
	if err := validateAssignment(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateAssignment(ctx, id, input)
}

// GetAssignment returns one assignment.
func (s *Service) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	return s.repo.GetAssignment(ctx, id)
}

// ListAssignments returns assignments, optionally scoped to a tenant.
func (s *Service) ListAssignments(ctx context.Context, tenantID int64) ([]Assignment, error) {
	return s.repo.ListAssignments(ctx, tenantID)
}

// TerminateStaff records a termination date on a staff member. A date
// earlier than the hire date is accepted but reported to the caller so the
// upstream workflow can flag it; billing logs rather than rejects such rows.
func (s *Service) TerminateStaff(ctx context.Context, staffID int64, terminationDate time.Time) (*Staff, error) {
	if staffID <= 0 {
		return nil, errors.New("staff ID required")
	}
	staff, err := s.repo.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.HireDate != nil && terminationDate.Before(*staff.HireDate) {
		return nil, fmt.Errorf("termination date %s precedes hire date %s",
			terminationDate.Format("2006-01-02"), staff.HireDate.Format("2006-01-02"))
	}
	if err := s.repo.RecordTermination(ctx, staffID, terminationDate); err != nil {
		return nil, err
	}
	td := terminationDate
	staff.TerminationDate = &td
	staff.EmploymentStatus = StatusTerminated
	return staff, nil
}

func validateAssignment(input AssignmentInput) error {
	if input.TenantID <= 0 {
		return errors.New("tenant ID required")
	}
	if input.PropertyID <= 0 {
		return errors.New("property ID required")
	}
	if !input.HasHousingAgreement && !input.HasTransportAgreement && !input.HasBusCard {
		return errors.New("assignment requires at least one agreement flag")
	}
	if input.HasHousingAgreement && input.RoomID == nil {
		return errors.New("housing agreement requires a room")
	}
	if input.BaseAmount != nil && input.BaseAmount.Sign() < 0 {
		return errors.New("base amount must not be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return errors.New("end date precedes start date")
	}
	return nil
}
