package earnings

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

// Handler handles HTTP requests for earnings operations
type Handler struct {
	service *Service
}

// NewHandler creates a new earnings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for earnings endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/orders", h.RecordOrder)
	r.Post("/orders/{orderID}/available", h.MakeOrderAvailable)
	r.Post("/orders/{orderID}/cancel", h.CancelOrder)
	r.Post("/consultations", h.RecordConsultation)
	r.Post("/consultations/{consultationID}/approve", h.ApproveConsultation)
	r.Get("/", h.List)
	r.Get("/balance", h.Balance)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	return r
}

// RecordOrder handles POST /earnings/orders
func (h *Handler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	var req RecordOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	entries, err := h.service.RecordOrderEarnings(r.Context(), businessID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidOrder) || errors.Is(err, fees.ErrNegativeAmount) {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		if errors.Is(err, ErrBusinessNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrOrderAlreadyRecorded) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to record order earnings")
		return
	}

	response.JSON(w, http.StatusCreated, toResponses(entries))
}

// RecordConsultation handles POST /earnings/consultations
func (h *Handler) RecordConsultation(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	var req RecordConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	entries, err := h.service.RecordConsultationEarnings(r.Context(), businessID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidConsultation) || errors.Is(err, fees.ErrNegativeAmount) {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		if errors.Is(err, ErrBusinessNotFound) || errors.Is(err, ErrClinicianNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrConsultationAlreadyRecorded) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to record consultation earnings")
		return
	}

	response.JSON(w, http.StatusCreated, toResponses(entries))
}

// MakeOrderAvailable handles POST /earnings/orders/{orderID}/available
func (h *Handler) MakeOrderAvailable(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	count, err := h.service.MakeAvailableForOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNoEarningsForOrder) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to make earnings available")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int64{"updated": count})
}

// CancelOrder handles POST /earnings/orders/{orderID}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	count, err := h.service.CancelForOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNoEarningsForOrder) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to cancel earnings")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int64{"reversed": count})
}

// ApproveConsultation handles POST /earnings/consultations/{consultationID}/approve
func (h *Handler) ApproveConsultation(w http.ResponseWriter, r *http.Request) {
	consultationID := chi.URLParam(r, "consultationID")

	count, err := h.service.ApproveConsultation(r.Context(), consultationID)
	if err != nil {
		if errors.Is(err, ErrNoEarningsForConsultation) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to approve consultation earnings")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int64{"updated": count})
}

// List handles GET /earnings
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

	criteria := ListCriteria{
		BusinessID:     businessID,
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
		Limit:          perPage,
		Offset:         (page - 1) * perPage,
	}
	for _, s := range r.URL.Query()["status"] {
		criteria.Statuses = append(criteria.Statuses, EntryStatus(s))
	}
	if orderID := r.URL.Query().Get("order_id"); orderID != "" {
		criteria.OrderID = &orderID
	}
	if consultationID := r.URL.Query().Get("consultation_id"); consultationID != "" {
		criteria.ConsultationID = &consultationID
	}

	entries, total, err := h.service.List(r.Context(), criteria)
	if err != nil {
		response.InternalError(w, "Failed to list earnings")
		return
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, toResponses(entries), meta)
}

// Balance handles GET /earnings/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	summary, err := h.service.Balance(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, ErrBusinessNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GetByID handles GET /earnings/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid earning entry ID")
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	entry, err := h.service.GetByID(r.Context(), id, includeDeleted)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get earning entry")
		return
	}

	response.JSON(w, http.StatusOK, entry.ToResponse())
}

// Delete handles DELETE /earnings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid earning entry ID")
		return
	}

	businessID, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		businessID = 1
	}

	if err := h.service.Delete(r.Context(), id, businessID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrEntryLocked) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete earning entry")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func toResponses(entries []*EarningEntry) []*EarningResponse {
	responses := make([]*EarningResponse, len(entries))
	for i, e := range entries {
		responses[i] = e.ToResponse()
	}
	return responses
}
