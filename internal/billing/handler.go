package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HLomotey/homa-suite-sub003/internal/platform/httpx"
	"github.com/HLomotey/homa-suite-sub003/internal/shared"
)

// Handler exposes the billing engine over HTTP.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validate    *validator.Validate
	idempotency *shared.IdempotencyStore
	summaries   *SummaryCache
}

// NewHandler builds the handler. Idempotency store and summary cache are
// optional.
func NewHandler(logger *slog.Logger, service *Service, idempotency *shared.IdempotencyStore, summaries *SummaryCache) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		validate:    validator.New(),
		idempotency: idempotency,
		summaries:   summaries,
	}
}

// Generate runs billing generation for a month. With a charge type it runs
// one orchestrator; without, it composes all four.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto GenerateRequestDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "billing"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Duplicate Request", "this generation request was already processed")
				return
			}
			h.logger.Error("idempotency check failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
	}

	selector := PeriodSelector(dto.Period)
	month := time.Month(dto.Month)

	if dto.ChargeType == "" {
		summary, err := h.service.GenerateAll(r.Context(), dto.Year, month, selector, 0)
		if err != nil {
			h.respondRunError(w, err)
			return
		}
		if h.summaries != nil {
			if err := h.summaries.Store(r.Context(), summary); err != nil {
				h.logger.Warn("summary cache store failed", slog.Any("error", err))
			}
		}
		httpx.JSON(w, http.StatusOK, summary)
		return
	}

	result, err := h.service.GenerateForMonth(r.Context(), RunRequest{
		Year:       dto.Year,
		Month:      month,
		ChargeType: ChargeType(dto.ChargeType),
		Selector:   selector,
	})
	if err != nil {
		h.respondRunError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownCharge), errors.Is(err, ErrInvalidSelector), errors.Is(err, shared.ErrInvalidArgument):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, ErrNoAssignments), errors.Is(err, ErrNoneInMonth):
		httpx.Problem(w, http.StatusUnprocessableEntity, "No Eligible Assignments", err.Error())
	default:
		h.logger.Error("billing generation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// ListRecords returns billing records filtered by query parameters.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := RecordFilter{}
	q := r.URL.Query()
	if raw := q.Get("tenant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "tenant_id must be an integer")
			return
		}
		filter.TenantID = id
	}
	if raw := q.Get("charge_type"); raw != "" {
		ct := ChargeType(raw)
		if !ct.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "unknown charge_type")
			return
		}
		filter.ChargeType = ct
	}
	page := queryInt(q.Get("page"), 1)
	perPage := queryInt(q.Get("per_page"), 50)
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	total, err := h.service.CountRecords(r.Context(), filter)
	if err != nil {
		h.logger.Error("count records failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	records, err := h.service.ListRecords(r.Context(), filter)
	if err != nil {
		h.logger.Error("list records failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"records":    records,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

// GetRecord returns one billing record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	record, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "billing record not found")
			return
		}
		h.logger.Error("get record failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

// ListDeductions returns the installment rows of a record.
func (h *Handler) ListDeductions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	deductions, err := h.service.ListDeductions(r.Context(), id)
	if err != nil {
		h.logger.Error("list deductions failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deductions": deductions, "count": len(deductions)})
}

// CancelRecord cancels a record and its pending deductions.
func (h *Handler) CancelRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	if err := h.service.CancelRecord(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "billing record not found")
			return
		}
		h.logger.Error("cancel record failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, CancelResponseDTO{ID: id, Cancelled: true})
}

// LatestSummary returns the cached summary of the most recent run.
func (h *Handler) LatestSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.Latest(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoSummary) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no generation run recorded yet")
			return
		}
		h.logger.Error("summary cache read failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "record id must be a positive integer")
		return 0, false
	}
	return id, true
}
