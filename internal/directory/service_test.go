package directory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryDirectoryRepo struct {
	assignments map[int64]*Assignment
	staff       map[int64]*Staff
	nextID      int64
}

func newMemoryDirectoryRepo() *memoryDirectoryRepo {
	return &memoryDirectoryRepo{
		assignments: make(map[int64]*Assignment),
		staff:       make(map[int64]*Staff),
	}
}

func (r *memoryDirectoryRepo) CreateAssignment(ctx context.Context, input AssignmentInput) (*Assignment, error) {
	r.nextID++
	a := &Assignment{
		ID:                    r.nextID,
		TenantID:              input.TenantID,
		PropertyID:            input.PropertyID,
		RoomID:                input.RoomID,
		BaseAmount:            input.BaseAmount,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		HasHousingAgreement:   input.HasHousingAgreement,
		HasTransportAgreement: input.HasTransportAgreement,
		HasBusCard:            input.HasBusCard,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}
	r.assignments[a.ID] = a
	return a, nil
}

func (r *memoryDirectoryRepo) UpdateAssignment(ctx context.Context, id int64, input AssignmentInput) (*Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.TenantID = input.TenantID
	a.PropertyID = input.PropertyID
	a.RoomID = input.RoomID
	a.BaseAmount = input.BaseAmount
	a.StartDate = input.StartDate
	a.EndDate = input.EndDate
	a.HasHousingAgreement = input.HasHousingAgreement
	a.HasTransportAgreement = input.HasTransportAgreement
	a.HasBusCard = input.HasBusCard
	a.UpdatedAt = time.Now()
	return a, nil
}

func (r *memoryDirectoryRepo) GetAssignment(ctx context.Context, id int64) (*Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (r *memoryDirectoryRepo) ListAssignments(ctx context.Context, tenantID int64) ([]Assignment, error) {
	var out []Assignment
	for _, a := range r.assignments {
		if tenantID > 0 && a.TenantID != tenantID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *memoryDirectoryRepo) GetStaff(ctx context.Context, id int64) (*Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memoryDirectoryRepo) RecordTermination(ctx context.Context, staffID int64, terminationDate time.Time) error {
	s, ok := r.staff[staffID]
	if !ok {
		return ErrNotFound
	}
	td := terminationDate
	s.TerminationDate = &td
	s.EmploymentStatus = StatusTerminated
	return nil
}

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	require.NoError(t, err)
	return &parsed
}

func validInput(t *testing.T) AssignmentInput {
	t.Helper()
	roomID := int64(42)
	return AssignmentInput{
		TenantID:            1,
		PropertyID:          10,
		RoomID:              &roomID,
		StartDate:           datePtr(t, "2025-08-01"),
		HasHousingAgreement: true,
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	svc := NewService(newMemoryDirectoryRepo())
	ctx := context.Background()

	created, err := svc.CreateAssignment(ctx, validInput(t))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	cases := []struct {
		name   string
		mutate func(*AssignmentInput)
	}{
		{"missing tenant", func(in *AssignmentInput) { in.TenantID = 0 }},
		{"missing property", func(in *AssignmentInput) { in.PropertyID = 0 }},
		{"no agreement flags", func(in *AssignmentInput) { in.HasHousingAgreement = false }},
		{"housing without room", func(in *AssignmentInput) { in.RoomID = nil }},
		{"negative base amount", func(in *AssignmentInput) {
			amount := decimal.RequireFromString("-1.00")
			in.BaseAmount = &amount
		}},
		{"end before start", func(in *AssignmentInput) { in.EndDate = datePtr(t, "2025-07-01") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(t)
			tc.mutate(&input)
			_, err := svc.CreateAssignment(ctx, input)
			require.Error(t, err)
		})
	}
}

func TestCreateAssignmentTransportNeedsNoRoom(t *testing.T) {
	svc := NewService(newMemoryDirectoryRepo())

	input := validInput(t)
	input.RoomID = nil
	input.HasHousingAgreement = false
	input.HasTransportAgreement = true

	created, err := svc.CreateAssignment(context.Background(), input)
	require.NoError(t, err)
	require.True(t, created.HasTransportAgreement)
	require.Nil(t, created.RoomID)
}

func TestUpdateAssignmentRequiresID(t *testing.T) {
	svc := NewService(newMemoryDirectoryRepo())
	_, err := svc.UpdateAssignment(context.Background(), 0, validInput(t))
	require.Error(t, err)
}

func TestListAssignmentsScopesToTenant(t *testing.T) {
	repo := newMemoryDirectoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := validInput(t)
	_, err := svc.CreateAssignment(ctx, first)
	require.NoError(t, err)

	second := validInput(t)
	second.TenantID = 2
	_, err = svc.CreateAssignment(ctx, second)
	require.NoError(t, err)

	scoped, err := svc.ListAssignments(ctx, 2)
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	all, err := svc.ListAssignments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestTerminateStaff(t *testing.T) {
	repo := newMemoryDirectoryRepo()
	repo.staff[7] = &Staff{
		ID:               7,
		FirstName:        "Ama",
		LastName:         "Mensah",
		EmploymentStatus: StatusActive,
		HireDate:         datePtr(t, "2025-03-01"),
	}
	svc := NewService(repo)
	ctx := context.Background()

	staff, err := svc.TerminateStaff(ctx, 7, *datePtr(t, "2025-08-14"))
	require.NoError(t, err)
	require.Equal(t, StatusTerminated, staff.EmploymentStatus)
	require.NotNil(t, staff.TerminationDate)
	require.Equal(t, StatusTerminated, repo.staff[7].EmploymentStatus)
}

func TestTerminateStaffBeforeHireRejected(t *testing.T) {
	repo := newMemoryDirectoryRepo()
	repo.staff[7] = &Staff{ID: 7, EmploymentStatus: StatusActive, HireDate: datePtr(t, "2025-03-01")}
	svc := NewService(repo)

	_, err := svc.TerminateStaff(context.Background(), 7, *datePtr(t, "2025-02-01"))
	require.Error(t, err)
	require.Nil(t, repo.staff[7].TerminationDate)
}
