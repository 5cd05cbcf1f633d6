package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeGateway implements Gateway against the Stripe API.
type stripeGateway struct {
	api      *client.API
	currency string
	logger   zerolog.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway. All intents are
// created in the given currency.
func NewStripeGateway(secretKey, currency string, logger zerolog.Logger) Gateway {
	return &stripeGateway{
		api:      client.New(secretKey, nil),
		currency: currency,
		logger:   logger.With().Str("gateway", "stripe").Logger(),
	}
}

// CreateIntent creates a payment intent for the given amount.
func (g *stripeGateway) CreateIntent(ctx context.Context, amount int64, description string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(g.currency),
		Description: stripe.String(description),
	}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error().Err(err).Int64("amount", amount).Msg("failed to create payment intent")
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	g.logger.Debug().
		Str("payment_intent_id", pi.ID).
		Int64("amount", pi.Amount).
		Msg("payment intent created")

	return intentFromStripe(pi), nil
}

// GetIntent fetches the current provider-side state of an intent.
func (g *stripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		g.logger.Error().Err(err).Str("payment_intent_id", id).Msg("failed to retrieve payment intent")
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}

	return intentFromStripe(pi), nil
}

// VerifyEvent authenticates a raw webhook payload and parses it.
func (g *stripeGateway) VerifyEvent(payload []byte, signature, secret string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook event: %w", err)
	}

	event := &Event{Type: string(stripeEvent.Type)}

	switch event.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(stripeEvent.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("parse payment intent from event: %w", err)
		}
		event.IntentID = pi.ID
		event.Status = string(pi.Status)
		event.Amount = pi.Amount
	}

	return event, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
