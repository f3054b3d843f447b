package billing

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches billing endpoints to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/generate", h.Generate)
	r.Get("/summary", h.LatestSummary)
	r.Get("/records", h.ListRecords)
	r.Get("/records/{id}", h.GetRecord)
	r.Get("/records/{id}/deductions", h.ListDeductions)
	r.Post("/records/{id}/cancel", h.CancelRecord)
}
