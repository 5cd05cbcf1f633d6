package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of perfume categories.
type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryUnisex Category = "unisex"
)

// Valid reports whether the category is a known category.
func (c Category) Valid() bool {
	return c == CategoryMen || c == CategoryWomen || c == CategoryUnisex
}

// Perfume represents a catalog entry. Prices are in CLP, a zero-decimal
// currency, so int64 holds the exact amount.
type Perfume struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Brand       string    `json:"brand" db:"brand"`
	Description string    `json:"description" db:"description"`
	Price       int64     `json:"price" db:"price"`
	Stock       int       `json:"stock" db:"stock"`
	Category    Category  `json:"category" db:"category"`
	Image       string    `json:"image" db:"image"`
	CreatedBy   uuid.UUID `json:"createdBy" db:"created_by"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PerfumeFilter narrows catalog listings.
type PerfumeFilter struct {
	Category Category
	MinPrice *int64
	MaxPrice *int64
	Search   string // matches name or brand, case-insensitive
}

// PerfumeRequest is the payload for creating or updating a perfume.
type PerfumeRequest struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Price       *int64   `json:"price"`
	Stock       *int     `json:"stock"`
	Category    Category `json:"category"`
	Image       string   `json:"image,omitempty"`
}

// StockDecrement describes a single stock mutation applied after a paid order.
type StockDecrement struct {
	PerfumeID uuid.UUID
	Quantity  int
}
