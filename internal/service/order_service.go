package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"elegance/internal/model"
	"elegance/internal/payment"
	"elegance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. Correctness of the confirm/webhook
// race rests entirely on the order repository's conditional status update;
// no in-process locking is used.
type orderService struct {
	orderRepo     repository.OrderRepository
	perfumeRepo   repository.PerfumeRepository
	gateway       payment.Gateway
	currency      string
	webhookSecret string
	logger        zerolog.Logger
}

// NewOrderService creates a new order service. webhookSecret may be empty, in
// which case provider notifications are acknowledged without acting.
func NewOrderService(
	orderRepo repository.OrderRepository,
	perfumeRepo repository.PerfumeRepository,
	gateway payment.Gateway,
	currency string,
	webhookSecret string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		perfumeRepo:   perfumeRepo,
		gateway:       gateway,
		currency:      currency,
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// InitiateCheckout creates a payment intent with the provider and a pending
// order referencing it. The gateway call happens first; if the local write
// fails afterwards the intent is left dangling, which is accepted.
func (s *orderService) InitiateCheckout(ctx context.Context, user *model.User, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil || req.Amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if len(req.Items) == 0 {
		return nil, model.ErrEmptyCart
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
		if item.Price < 0 {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: price cannot be negative", i))
		}
	}

	intent, err := s.gateway.CreateIntent(ctx, req.Amount, checkoutDescription(req.Items), map[string]string{
		"userId":    user.ID.String(),
		"userEmail": user.Email,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", req.Amount).Msg("payment intent creation failed")
		return nil, model.ErrGateway
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		OrderNumber:     generateOrderNumber(),
		Shipping:        req.Shipping,
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		Total:           req.Amount,
		Currency:        s.currency,
		Status:          model.OrderStatusPending,
		PaymentIntentID: intent.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			PerfumeID: item.PerfumeID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.orderRepo.CreatePending(ctx, order); err != nil {
		// The provider intent exists but no local order references it. The
		// webhook path cannot recover this order either, so surface it.
		s.logger.Error().
			Err(err).
			Str("payment_intent_id", intent.ID).
			Msg("payment intent created but pending order could not be persisted")
		return nil, fmt.Errorf("failed to persist pending order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("payment_intent_id", intent.ID).
		Int64("amount", req.Amount).
		Msg("checkout initiated")

	return &model.CheckoutResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
	}, nil
}

// ConfirmCheckout verifies payment success with the provider and moves the
// order to paid. The provider is always consulted; a client-asserted success
// is never trusted. Re-confirming an already paid order is a no-op success
// and does not decrement stock again.
func (s *orderService) ConfirmCheckout(ctx context.Context, userID uuid.UUID, paymentIntentID string) (*model.OrderView, error) {
	order, err := s.orderRepo.GetByPaymentIntent(ctx, paymentIntentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("payment intent retrieval failed")
		return nil, model.ErrGateway
	}
	if intent.Status != payment.StatusSucceeded {
		s.logger.Warn().
			Str("payment_intent_id", paymentIntentID).
			Str("provider_status", intent.Status).
			Msg("confirmation rejected, payment not succeeded")
		return nil, model.NewPaymentNotSucceededError(intent.Status)
	}

	if order.Status == model.OrderStatusPaid {
		view := order.PublicView()
		return &view, nil
	}

	updated, err := s.orderRepo.TransitionStatus(ctx, paymentIntentID, model.OrderStatusPending, model.OrderStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	if updated == nil {
		// Lost the race, typically to the webhook. Re-read and report the
		// current state without touching stock.
		current, err := s.orderRepo.GetByPaymentIntent(ctx, paymentIntentID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read order: %w", err)
		}
		if current == nil {
			return nil, model.ErrOrderNotFound
		}
		view := current.PublicView()
		return &view, nil
	}

	s.decrementStock(ctx, updated)

	s.logger.Info().
		Str("order_id", updated.ID.String()).
		Str("payment_intent_id", paymentIntentID).
		Msg("order confirmed as paid")

	view := updated.PublicView()
	return &view, nil
}

// HandleWebhookEvent processes an asynchronous provider notification. Only a
// signature failure is surfaced; every other outcome is acknowledged so the
// provider does not retry indefinitely.
func (s *orderService) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		s.logger.Debug().Msg("webhook secret not configured, acknowledging without acting")
		return nil
	}

	event, err := s.gateway.VerifyEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return model.ErrInvalidSignature
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		updated, err := s.orderRepo.TransitionStatus(ctx, event.IntentID, model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			s.logger.Error().Err(err).Str("payment_intent_id", event.IntentID).Msg("webhook transition failed")
			return nil
		}
		if updated == nil {
			// Already paid via ConfirmCheckout, or unknown reference.
			s.logger.Debug().Str("payment_intent_id", event.IntentID).Msg("webhook success event was a no-op")
			return nil
		}
		s.decrementStock(ctx, updated)
		s.logger.Info().
			Str("order_id", updated.ID.String()).
			Str("payment_intent_id", event.IntentID).
			Msg("order marked paid via webhook")

	case payment.EventPaymentFailed:
		updated, err := s.orderRepo.SetStatus(ctx, event.IntentID, model.OrderStatusFailed)
		if err != nil {
			s.logger.Error().Err(err).Str("payment_intent_id", event.IntentID).Msg("webhook failure update failed")
			return nil
		}
		if updated != nil {
			s.logger.Warn().
				Str("order_id", updated.ID.String()).
				Str("payment_intent_id", event.IntentID).
				Msg("order marked failed via webhook")
		}

	default:
		s.logger.Debug().Str("event_type", event.Type).Msg("ignoring webhook event")
	}

	return nil
}

// ListOrders retrieves the user's orders, most recent first.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderView, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	views := make([]model.OrderView, len(orders))
	for i := range orders {
		views[i] = orders[i].PublicView()
	}
	return views, nil
}

// GetOrder retrieves a single order owned by the user.
func (s *orderService) GetOrder(ctx context.Context, id, userID uuid.UUID) (*model.OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	view := order.PublicView()
	return &view, nil
}

// GetPaymentIntent proxies the provider-side status of an intent.
func (s *orderService) GetPaymentIntent(ctx context.Context, id string) (*payment.Intent, error) {
	intent, err := s.gateway.GetIntent(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_intent_id", id).Msg("payment intent retrieval failed")
		return nil, model.ErrGateway
	}
	return intent, nil
}

// decrementStock applies the order's line-item quantities to the catalog.
// Runs only after this caller won the pending→paid transition. Failures are
// logged and not rolled back.
func (s *orderService) decrementStock(ctx context.Context, order *model.Order) {
	decrements := make([]model.StockDecrement, 0, len(order.Items))
	for _, item := range order.Items {
		decrements = append(decrements, model.StockDecrement{
			PerfumeID: item.PerfumeID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.perfumeRepo.DecrementStockBatch(ctx, decrements); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("stock decrement failed after paid transition")
	}
}

// checkoutDescription builds the human-readable charge description shown in
// the provider dashboard, e.g. "2x Dior Sauvage, 1x Bleu de Chanel".
func checkoutDescription(items []model.CheckoutItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Perfume"
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, name))
	}
	return strings.Join(parts, ", ")
}

// generateOrderNumber produces a short human-facing code, ELG- plus six
// digits.
func generateOrderNumber() string {
	return fmt.Sprintf("ELG-%06d", 100000+rand.IntN(900000))
}
