package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's pending selection. Each user has at most one cart.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is a single perfume selection in a cart.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	PerfumeID uuid.UUID `json:"perfumeId" db:"perfume_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// AddCartItemRequest is the payload for POST /api/cart/items.
type AddCartItemRequest struct {
	PerfumeID uuid.UUID `json:"perfumeId"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest is the payload for PUT /api/cart/items/{perfumeId}.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart representation returned by the API, with current
// perfume records alongside the raw item rows.
type CartView struct {
	ID       uuid.UUID  `json:"id"`
	Items    []CartItem `json:"items"`
	Perfumes []Perfume  `json:"perfumes"`
}
