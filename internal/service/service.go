package service

import (
	"context"

	"elegance/internal/model"
	"elegance/internal/payment"

	"github.com/google/uuid"
)

// UserService defines operations for account management.
type UserService interface {
	// Register creates a new account and returns it with a fresh token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and returns the account with a fresh token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// RefreshToken re-issues a token for an authenticated user.
	RefreshToken(ctx context.Context, user *model.User) (*model.AuthResponse, error)

	// UpdateProfile updates name, email or password. Password changes
	// require the current password.
	UpdateProfile(ctx context.Context, user *model.User, req *model.UpdateUserRequest) (*model.AuthResponse, error)
}

// PerfumeService defines operations for catalog management.
type PerfumeService interface {
	// Create adds a perfume to the catalog.
	Create(ctx context.Context, user *model.User, req *model.PerfumeRequest) (*model.Perfume, error)

	// GetAll retrieves active perfumes matching the filter.
	GetAll(ctx context.Context, filter model.PerfumeFilter) ([]model.Perfume, error)

	// GetByID retrieves a single active perfume.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Perfume, error)

	// Update modifies a perfume. Only the creator or a catalog manager may
	// update it.
	Update(ctx context.Context, user *model.User, id uuid.UUID, req *model.PerfumeRequest) (*model.Perfume, error)

	// Delete soft-deletes a perfume. Only the creator or a catalog manager
	// may delete it.
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
}

// CartService defines operations for the shopping cart.
type CartService interface {
	// GetCart retrieves the user's cart, creating it on first access.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error)

	// AddItem adds a perfume to the cart after checking stock.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddCartItemRequest) (*model.CartView, error)

	// UpdateItem replaces the quantity of a cart item.
	UpdateItem(ctx context.Context, userID, perfumeID uuid.UUID, quantity int) (*model.CartView, error)

	// RemoveItem removes a perfume from the cart.
	RemoveItem(ctx context.Context, userID, perfumeID uuid.UUID) (*model.CartView, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines checkout and order reconciliation operations.
type OrderService interface {
	// InitiateCheckout creates a payment intent with the provider and a
	// pending order referencing it.
	InitiateCheckout(ctx context.Context, user *model.User, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// ConfirmCheckout verifies payment success with the provider and moves
	// the order to paid. Idempotent for already-paid orders.
	ConfirmCheckout(ctx context.Context, userID uuid.UUID, paymentIntentID string) (*model.OrderView, error)

	// HandleWebhookEvent processes an asynchronous provider notification.
	// Returns model.ErrInvalidSignature when verification fails; all other
	// processing outcomes are acknowledged.
	HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error

	// ListOrders retrieves the user's orders, most recent first.
	ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderView, error)

	// GetOrder retrieves a single order owned by the user.
	GetOrder(ctx context.Context, id, userID uuid.UUID) (*model.OrderView, error)

	// GetPaymentIntent proxies the provider-side status of an intent.
	GetPaymentIntent(ctx context.Context, id string) (*payment.Intent, error)
}
