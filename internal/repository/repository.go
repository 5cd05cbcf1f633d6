package repository

import (
	"context"

	"elegance/internal/model"

	"github.com/google/uuid"
)

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user. Fails if the email is already taken.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by email, including the password hash.
	// Returns nil if no user exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by id. Returns nil if no user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// Update persists changes to name, email, password hash and active flag.
	Update(ctx context.Context, user *model.User) error
}

// PerfumeRepository defines the interface for catalog data access operations.
type PerfumeRepository interface {
	// Create inserts a new perfume.
	Create(ctx context.Context, perfume *model.Perfume) error

	// GetAll retrieves active perfumes matching the filter, newest first.
	GetAll(ctx context.Context, filter model.PerfumeFilter) ([]model.Perfume, error)

	// GetByID retrieves a single perfume by id. Returns nil if no perfume
	// exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Perfume, error)

	// GetByIDs retrieves multiple perfumes by their ids.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Perfume, error)

	// Update persists changes to a perfume.
	Update(ctx context.Context, perfume *model.Perfume) error

	// Deactivate soft-deletes a perfume.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// DecrementStockBatch applies all decrements in a single batch. Each
	// individual decrement is atomic with respect to concurrent decrements
	// of the same perfume; there is no cross-item atomicity.
	DecrementStockBatch(ctx context.Context, decrements []model.StockDecrement) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetByUser retrieves a user's cart with its items. Returns nil if the
	// user has no cart yet.
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Create inserts an empty cart for a user.
	Create(ctx context.Context, cart *model.Cart) error

	// AddItem adds a perfume to the cart, merging quantities if the perfume
	// is already present.
	AddItem(ctx context.Context, cartID, perfumeID uuid.UUID, quantity int) error

	// SetItemQuantity replaces the quantity of an existing item. Returns
	// model.ErrCartItemNotFound if the perfume is not in the cart.
	SetItemQuantity(ctx context.Context, cartID, perfumeID uuid.UUID, quantity int) error

	// RemoveItem removes a perfume from the cart. Returns
	// model.ErrCartItemNotFound if the perfume is not in the cart.
	RemoveItem(ctx context.Context, cartID, perfumeID uuid.UUID) error

	// Clear removes all items from the cart.
	Clear(ctx context.Context, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
// Orders are never deleted.
type OrderRepository interface {
	// CreatePending inserts a new pending order and its line items in a
	// single transaction.
	CreatePending(ctx context.Context, order *model.Order) error

	// GetByPaymentIntent retrieves an order by payment reference, scoped to
	// its owner. Returns nil if no matching order exists.
	GetByPaymentIntent(ctx context.Context, paymentIntentID string, userID uuid.UUID) (*model.Order, error)

	// TransitionStatus atomically moves an order from one status to another
	// (compare-and-swap at the storage layer). Returns the updated order
	// with its items, or nil if the order was not in the expected status.
	TransitionStatus(ctx context.Context, paymentIntentID string, from, to model.OrderStatus) (*model.Order, error)

	// SetStatus unconditionally sets an order's status. Returns the updated
	// order, or nil if no order exists for the reference.
	SetStatus(ctx context.Context, paymentIntentID string, status model.OrderStatus) (*model.Order, error)

	// ListByUser retrieves a user's orders, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetByID retrieves an order by id, scoped to its owner. Returns nil if
	// no matching order exists.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Order, error)
}
