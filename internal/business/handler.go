package business

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rashedq/marketpay/pkg/response"
)

// Handler handles HTTP requests for business operations
type Handler struct {
	service *Service
}

// NewHandler creates a new business handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for business endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)

	return r
}

// Create handles POST /businesses
// @Summary      Create a new business
// @Description  Register a payee account (business or clinician) with payout settings
// @Tags         businesses
// @Accept       json
// @Produce      json
// @Param        request body CreateBusinessRequest true "Business creation request"
// @Success      201 {object} response.APIResponse{data=BusinessResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /businesses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" {
		response.BadRequest(w, "Name and email are required")
		return
	}

	business, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create business")
		return
	}

	response.JSON(w, http.StatusCreated, business.ToResponse())
}

// GetByID handles GET /businesses/{id}
// @Summary      Get business by ID
// @Tags         businesses
// @Produce      json
// @Param        id path int true "Business ID"
// @Success      200 {object} response.APIResponse{data=BusinessResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /businesses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid business ID")
		return
	}

	business, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBusinessNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get business")
		return
	}

	response.JSON(w, http.StatusOK, business.ToResponse())
}

// List handles GET /businesses
// @Summary      List all businesses
// @Tags         businesses
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]BusinessResponse}
// @Router       /businesses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	businesses, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list businesses")
		return
	}

	businessResponses := make([]*BusinessResponse, len(businesses))
	for i, b := range businesses {
		businessResponses[i] = b.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, businessResponses, meta)
}

// Update handles PUT /businesses/{id}
// @Summary      Update a business
// @Description  Change name, payout hold period or destination account
// @Tags         businesses
// @Accept       json
// @Produce      json
// @Param        id path int true "Business ID"
// @Param        request body UpdateBusinessRequest true "Business update request"
// @Success      200 {object} response.APIResponse{data=BusinessResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /businesses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid business ID")
		return
	}

	var req UpdateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	business, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrBusinessNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update business")
		return
	}

	response.JSON(w, http.StatusOK, business.ToResponse())
}
