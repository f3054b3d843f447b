package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentDTO is the JSON body for creating or updating an assignment.
type AssignmentDTO struct {
	TenantID   int64  `json:"tenant_id" validate:"required,gt=0"`
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	RoomID     *int64 `json:"room_id" validate:"omitempty,gt=0"`

	BaseAmount *string `json:"base_amount" validate:"omitempty"`

	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`

	HasHousingAgreement   bool `json:"has_housing_agreement"`
	HasTransportAgreement bool `json:"has_transport_agreement"`
	HasBusCard            bool `json:"has_bus_card"`
}

// TerminationDTO is the JSON body for recording a termination.
type TerminationDTO struct {
	TerminationDate string `json:"termination_date" validate:"required,datetime=2006-01-02"`
}

// ToInput converts the DTO into a domain input. Dates are interpreted in
// the billing timezone at day granularity.
func (d AssignmentDTO) ToInput(loc *time.Location) (AssignmentInput, error) {
	input := AssignmentInput{
		TenantID:              d.TenantID,
		PropertyID:            d.PropertyID,
		RoomID:                d.RoomID,
		HasHousingAgreement:   d.HasHousingAgreement,
		HasTransportAgreement: d.HasTransportAgreement,
		HasBusCard:            d.HasBusCard,
	}
	if d.BaseAmount != nil {
		amount, err := decimal.NewFromString(*d.BaseAmount)
		if err != nil {
			return AssignmentInput{}, err
		}
		input.BaseAmount = &amount
	}
	if d.StartDate != nil {
		t, err := time.ParseInLocation("2006-01-02", *d.StartDate, loc)
		if err != nil {
			return AssignmentInput{}, err
		}
		input.StartDate = &t
	}
	if d.EndDate != nil {
		t, err := time.ParseInLocation("2006-01-02", *d.EndDate, loc)
		if err != nil {
			return AssignmentInput{}, err
		}
		input.EndDate = &t
	}
	return input, nil
}
