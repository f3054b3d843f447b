package billing

// GenerateRequestDTO is the JSON body of a generation request. An empty
// charge type runs every type for the month.
type GenerateRequestDTO struct {
	Year       int    `json:"year" validate:"required,gte=1970,lte=9999"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
	ChargeType string `json:"charge_type" validate:"omitempty,oneof=HOUSING TRANSPORTATION SECURITY_DEPOSIT BUS_CARD"`
	Period     string `json:"period" validate:"omitempty,oneof=first second both"`
}

// CancelResponseDTO acknowledges a record cancellation.
type CancelResponseDTO struct {
	ID        int64 `json:"id"`
	Cancelled bool  `json:"cancelled"`
}
