package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus values recognised on staff rows. Other values are data
// quality issues the billing engine tolerates and logs.
const (
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusTerminated = "terminated"
)

// Staff is a directory entry with the employment fields billing needs.
type Staff struct {
	ID               int64
	FirstName        string
	LastName         string
	EmploymentStatus string
	HireDate         *time.Time
	TerminationDate  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Assignment links a staff member (as tenant) to a property/room with the
// per-charge-type agreement flags billing filters on.
type Assignment struct {
	ID         int64
	TenantID   int64
	PropertyID int64
	RoomID     *int64

	BaseAmount *decimal.Decimal

	StartDate *time.Time
	EndDate   *time.Time

	HasHousingAgreement   bool
	HasTransportAgreement bool
	HasBusCard            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignmentInput carries the writable assignment fields.
type AssignmentInput struct {
	TenantID   int64
	PropertyID int64
	RoomID     *int64

	BaseAmount *decimal.Decimal

	StartDate *time.Time
	EndDate   *time.Time

	HasHousingAgreement   bool
	HasTransportAgreement bool
	HasBusCard            bool
}
