package handler

import (
	"errors"
	"io"
	"net/http"

	"elegance/internal/middleware"
	"elegance/internal/model"
	"elegance/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and order HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// CreatePaymentIntent handles POST /api/orders/create-payment-intent requests.
// It opens a payment with the provider and records a pending order.
func (h *OrderHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.InitiateCheckout(r.Context(), user, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/orders/confirm requests. The client calls this
// after the provider reports the payment as complete; the service re-verifies
// with the provider before settling the order.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req model.ConfirmOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if req.PaymentIntentID == "" {
		writeError(w, model.NewValidationError("paymentIntentId is required"), h.logger)
		return
	}

	order, err := h.service.ConfirmCheckout(r.Context(), user.ID, req.PaymentIntentID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListMine handles GET /api/orders/myorders requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	orders, err := h.service.ListOrders(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.OrderView{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests. Orders are only visible to
// their owner.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid order id"), h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetPaymentIntent handles GET /api/orders/payment-intent/{id} requests,
// proxying the provider's current view of the payment.
func (h *OrderHandler) GetPaymentIntent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, model.NewValidationError("payment intent id is required"), h.logger)
		return
	}

	intent, err := h.service.GetPaymentIntent(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

// Webhook handles POST /api/orders/webhook requests from the payment
// provider. The body must be read raw for signature verification. Processing
// failures after a valid signature are still acknowledged with 200 so the
// provider does not retry events we have already reconciled.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, model.NewValidationError("unable to read request body"), h.logger)
		return
	}

	err = h.service.HandleWebhookEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidSignature) {
			writeError(w, err, h.logger)
			return
		}
		h.logger.Error().Err(err).Msg("webhook processing failed")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
