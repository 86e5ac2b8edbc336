package payout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rashedq/marketpay/internal/earnings/fees"
	"github.com/rashedq/marketpay/pkg/middleware"
	"github.com/rashedq/marketpay/pkg/response"
)

// Handler handles HTTP requests for payout operations
type Handler struct {
	service *Service
}

// NewHandler creates a new payout handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for payout endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/processing", h.MarkProcessing)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/fail", h.Fail)
	r.Post("/{id}/cancel", h.Cancel)

	return r
}

// Create handles POST /payouts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	var req CreatePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payout, err := h.service.CreatePayout(r.Context(), businessID, &req)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.ErrorWithDetails(w, http.StatusBadRequest, "INVALID_EARNINGS",
				"One or more selected earnings cannot be paid out", validationErr.Details())
		case errors.Is(err, ErrAmountMismatch):
			response.Error(w, http.StatusBadRequest, "AMOUNT_MISMATCH", err.Error())
		case errors.Is(err, ErrAmountExceedsAvailable):
			response.Error(w, http.StatusBadRequest, "AMOUNT_EXCEEDS_AVAILABLE", err.Error())
		case errors.Is(err, ErrNoAvailableBalance):
			response.Error(w, http.StatusBadRequest, "NO_AVAILABLE_BALANCE", err.Error())
		case errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrNoDestinationAccount):
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		case errors.Is(err, fees.ErrUnsafeSplit):
			response.Error(w, http.StatusUnprocessableEntity, "UNSAFE_SPLIT", err.Error())
		case errors.Is(err, ErrBusinessNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create payout")
		}
		return
	}

	response.JSON(w, http.StatusCreated, payout.ToResponse())
}

// List handles GET /payouts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	payouts, total, err := h.service.List(r.Context(), businessID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list payouts")
		return
	}

	responses := make([]*PayoutResponse, len(payouts))
	for i, p := range payouts {
		responses[i] = p.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, responses, meta)
}

// GetByID handles GET /payouts/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, businessID, ok := h.idAndBusiness(w, r)
	if !ok {
		return
	}

	payout, err := h.service.GetByID(r.Context(), id, businessID)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to get payout")
		return
	}

	response.JSON(w, http.StatusOK, payout.ToResponse())
}

// MarkProcessing handles POST /payouts/{id}/processing
func (h *Handler) MarkProcessing(w http.ResponseWriter, r *http.Request) {
	id, businessID, ok := h.idAndBusiness(w, r)
	if !ok {
		return
	}

	payout, err := h.service.MarkProcessing(r.Context(), id, businessID)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to mark payout processing")
		return
	}

	response.JSON(w, http.StatusOK, payout.ToResponse())
}

// Complete handles POST /payouts/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, businessID, ok := h.idAndBusiness(w, r)
	if !ok {
		return
	}

	var req CompletePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.TransactionID == "" {
		response.BadRequest(w, "transaction_id is required")
		return
	}

	payout, err := h.service.Complete(r.Context(), id, businessID, req.TransactionID)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to complete payout")
		return
	}

	response.JSON(w, http.StatusOK, payout.ToResponse())
}

// Fail handles POST /payouts/{id}/fail
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	id, businessID, ok := h.idAndBusiness(w, r)
	if !ok {
		return
	}

	var req FailPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Reason == "" {
		response.BadRequest(w, "reason is required")
		return
	}

	payout, err := h.service.Fail(r.Context(), id, businessID, req.Reason)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to fail payout")
		return
	}

	response.JSON(w, http.StatusOK, payout.ToResponse())
}

// Cancel handles POST /payouts/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, businessID, ok := h.idAndBusiness(w, r)
	if !ok {
		return
	}

	payout, err := h.service.Cancel(r.Context(), id, businessID)
	if err != nil {
		h.writeLifecycleError(w, err, "Failed to cancel payout")
		return
	}

	response.JSON(w, http.StatusOK, payout.ToResponse())
}

func (h *Handler) idAndBusiness(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payout ID")
		return 0, 0, false
	}

	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	return id, businessID, true
}

func (h *Handler) writeLifecycleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPayoutNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotPayoutOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
