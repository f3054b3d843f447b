package directory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HLomotey/homa-suite-sub003/internal/platform/httpx"
)

// Handler exposes directory maintenance over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	loc      *time.Location
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{logger: logger, service: service, validate: validator.New(), loc: loc}
}

// MountRoutes attaches directory endpoints to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/assignments", h.CreateAssignment)
	r.Get("/assignments", h.ListAssignments)
	r.Get("/assignments/{id}", h.GetAssignment)
	r.Put("/assignments/{id}", h.UpdateAssignment)
	r.Post("/staff/{id}/terminate", h.TerminateStaff)
}

// CreateAssignment stores a new charge assignment.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeAssignment(w, r)
	if !ok {
		return
	}
	assignment, err := h.service.CreateAssignment(r.Context(), input)
	if err != nil {
		h.respondError(w, err, "create assignment")
		return
	}
	httpx.JSON(w, http.StatusCreated, assignment)
}

// UpdateAssignment rewrites an existing assignment.
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeAssignment(w, r)
	if !ok {
		return
	}
	assignment, err := h.service.UpdateAssignment(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err, "update assignment")
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

// GetAssignment returns one assignment.
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	assignment, err := h.service.GetAssignment(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get assignment")
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

// ListAssignments returns assignments, optionally filtered by tenant_id.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	var tenantID int64
	if raw := r.URL.Query().Get("tenant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id must be an integer")
			return
		}
		tenantID = id
	}
	assignments, err := h.service.ListAssignments(r.Context(), tenantID)
	if err != nil {
		h.respondError(w, err, "list assignments")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": assignments, "count": len(assignments)})
}

// TerminateStaff records a termination date for a staff member.
func (h *Handler) TerminateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var dto TerminationDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	when, err := time.ParseInLocation("2006-01-02", dto.TerminationDate, h.loc)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "termination_date must be YYYY-MM-DD")
		return
	}
	staff, err := h.service.TerminateStaff(r.Context(), id, when)
	if err != nil {
		h.respondError(w, err, "terminate staff")
		return
	}
	httpx.JSON(w, http.StatusOK, staff)
}

func (h *Handler) decodeAssignment(w http.ResponseWriter, r *http.Request) (AssignmentInput, bool) {
	var dto AssignmentDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return AssignmentInput{}, false
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return AssignmentInput{}, false
	}
	input, err := dto.ToInput(h.loc)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return AssignmentInput{}, false
	}
	return input, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
