package payment

import "context"

// Provider-side payment intent statuses the reconciliation flow cares about.
const (
	StatusSucceeded = "succeeded"
)

// Event types emitted by the provider's notification channel.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Intent is a provider-side record of an attempted charge. Amount is in the
// deployment currency, which is zero-decimal, so no scaling applies.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Event is a verified notification from the provider.
type Event struct {
	Type     string
	IntentID string
	Status   string
	Amount   int64
}

// Gateway abstracts the payment provider. Calls are synchronous and
// single-attempt; failures surface to the caller.
type Gateway interface {
	// CreateIntent creates a payment intent for the given amount.
	CreateIntent(ctx context.Context, amount int64, description string, metadata map[string]string) (*Intent, error)

	// GetIntent fetches the current provider-side state of an intent.
	GetIntent(ctx context.Context, id string) (*Intent, error)

	// VerifyEvent authenticates a raw notification payload against the
	// signature header and parses it. Verification operates over the exact
	// payload bytes.
	VerifyEvent(payload []byte, signature, secret string) (*Event, error)
}
