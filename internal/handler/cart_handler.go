package handler

import (
	"net/http"

	"elegance/internal/middleware"
	"elegance/internal/model"
	"elegance/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req model.AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), user.ID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/cart/items/{perfumeId} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	perfumeID, err := uuid.Parse(r.PathValue("perfumeId"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid perfume id"), h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), user.ID, perfumeID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{perfumeId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	perfumeID, err := uuid.Parse(r.PathValue("perfumeId"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid perfume id"), h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), user.ID, perfumeID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := h.service.Clear(r.Context(), user.ID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
