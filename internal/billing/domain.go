package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeType enumerates billable charge categories.
type ChargeType string

const (
	ChargeHousing         ChargeType = "HOUSING"
	ChargeTransportation  ChargeType = "TRANSPORTATION"
	ChargeSecurityDeposit ChargeType = "SECURITY_DEPOSIT"
	ChargeBusCard         ChargeType = "BUS_CARD"
)

// AllChargeTypes lists every charge type in generation order.
var AllChargeTypes = []ChargeType{ChargeHousing, ChargeTransportation, ChargeSecurityDeposit, ChargeBusCard}

// Valid reports whether the charge type is known.
func (c ChargeType) Valid() bool {
	switch c {
	case ChargeHousing, ChargeTransportation, ChargeSecurityDeposit, ChargeBusCard:
		return true
	}
	return false
}

// PaymentStatus enumerates billing record payment states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// DeductionStatus enumerates deduction runtime states. The payroll
// collaborator moves deductions out of PENDING; this engine only moves them
// to CANCELLED alongside their parent record.
type DeductionStatus string

const (
	DeductionPending   DeductionStatus = "PENDING"
	DeductionProcessed DeductionStatus = "PROCESSED"
	DeductionFailed    DeductionStatus = "FAILED"
	DeductionCancelled DeductionStatus = "CANCELLED"
)

// PeriodSelector restricts a run to one or both half-month windows.
type PeriodSelector string

const (
	PeriodFirst  PeriodSelector = "first"
	PeriodSecond PeriodSelector = "second"
	PeriodBoth   PeriodSelector = "both"
)

// Valid reports whether the selector is known.
func (p PeriodSelector) Valid() bool {
	switch p {
	case PeriodFirst, PeriodSecond, PeriodBoth:
		return true
	}
	return false
}

// Window is one inclusive half-month billing window.
type Window struct {
	Start time.Time
	End   time.Time
}

// Inclusion reports which of a month's windows an employment interval touches.
type Inclusion struct {
	FirstWindow  bool
	SecondWindow bool
}

// ChargeAssignment is one billable relationship, read from the directory.
type ChargeAssignment struct {
	TenantID   int64
	PropertyID int64
	RoomID     *int64

	// BaseAmount overrides the charge-type default rate when set.
	BaseAmount *decimal.Decimal

	AssignmentStart *time.Time
	AssignmentEnd   *time.Time

	HireDate         *time.Time
	TerminationDate  *time.Time
	EmploymentStatus string
}

// BillingRecord is the persisted output of a generation run. At most one
// record exists per (tenant, period start, period end, charge type).
type BillingRecord struct {
	ID              int64
	TenantID        int64
	PropertyID      int64
	RoomID          *int64
	Amount          decimal.Decimal
	PaymentStatus   PaymentStatus
	ChargeType      ChargeType
	PeriodStart     time.Time
	PeriodEnd       time.Time
	AssignmentStart time.Time
	AssignmentEnd   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecordInput carries the fields written by an upsert.
type RecordInput struct {
	TenantID        int64
	PropertyID      int64
	RoomID          *int64
	Amount          decimal.Decimal
	ChargeType      ChargeType
	PeriodStart     time.Time
	PeriodEnd       time.Time
	AssignmentStart time.Time
	AssignmentEnd   *time.Time
}

// ScheduleItem is one planned installment of a multi-installment charge.
type ScheduleItem struct {
	Sequence        int
	PayrollPeriod   string
	DeductionDate   time.Time
	ScheduledAmount decimal.Decimal
}

// Deduction is a persisted schedule item plus payroll runtime state.
type Deduction struct {
	ID               int64
	BillingRecordID  int64
	Sequence         int
	PayrollPeriod    string
	DeductionDate    time.Time
	ScheduledAmount  decimal.Decimal
	Status           DeductionStatus
	ActualAmount     *decimal.Decimal
	ProcessedAt      *time.Time
	PayrollReference *string
	FailureReason    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	TenantID    int64
	ChargeType  ChargeType
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Limit       int
	Offset      int
}
