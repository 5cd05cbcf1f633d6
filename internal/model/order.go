package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the closed set of order states. Pending is the sole entry
// state; paid, failed and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a customer order. Monetary fields are CLP (zero-decimal),
// so amounts are exact integers. Item name and price are snapshots taken at
// checkout time; later catalog changes do not alter historical orders.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"userId" db:"user_id"`
	OrderNumber     string      `json:"orderNumber" db:"order_number"`
	Items           []OrderItem `json:"items"`
	Shipping        Shipping    `json:"shipping"`
	Subtotal        int64       `json:"subtotal" db:"subtotal"`
	ShippingCost    int64       `json:"shippingCost" db:"shipping_cost"`
	Total           int64       `json:"total" db:"total"`
	Currency        string      `json:"currency" db:"currency"`
	Status          OrderStatus `json:"status" db:"status"`
	PaymentIntentID string      `json:"paymentIntentId" db:"payment_intent_id"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshot within an order.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	PerfumeID uuid.UUID `json:"perfumeId" db:"perfume_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     int64     `json:"price" db:"price"`
}

// Shipping holds recipient contact and address details.
type Shipping struct {
	FirstName string `json:"firstName" db:"shipping_first_name"`
	LastName  string `json:"lastName" db:"shipping_last_name"`
	Email     string `json:"email" db:"shipping_email"`
	Phone     string `json:"phone" db:"shipping_phone"`
	Address   string `json:"address" db:"shipping_address"`
	City      string `json:"city" db:"shipping_city"`
	Region    string `json:"region" db:"shipping_region"`
	Zip       string `json:"zip" db:"shipping_zip"`
}

// OrderView is the order representation exposed to the owning caller.
type OrderView struct {
	ID              uuid.UUID   `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Items           []OrderItem `json:"items"`
	Shipping        Shipping    `json:"shipping"`
	Subtotal        int64       `json:"subtotal"`
	ShippingCost    int64       `json:"shippingCost"`
	Total           int64       `json:"total"`
	Currency        string      `json:"currency"`
	Status          OrderStatus `json:"status"`
	PaymentIntentID string      `json:"paymentIntentId"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// PublicView returns the order representation exposed by the API.
func (o *Order) PublicView() OrderView {
	return OrderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Items:           o.Items,
		Shipping:        o.Shipping,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		Currency:        o.Currency,
		Status:          o.Status,
		PaymentIntentID: o.PaymentIntentID,
		CreatedAt:       o.CreatedAt,
	}
}

// CheckoutItem is a cart line submitted at checkout. Name and price are
// captured as snapshots on the resulting order.
type CheckoutItem struct {
	PerfumeID uuid.UUID `json:"perfumeId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
}

// CheckoutRequest is the payload for POST /api/orders/create-payment-intent.
// Amount is the order total in CLP.
type CheckoutRequest struct {
	Amount       int64          `json:"amount"`
	Items        []CheckoutItem `json:"items"`
	Shipping     Shipping       `json:"shipping"`
	Subtotal     int64          `json:"subtotal"`
	ShippingCost int64          `json:"shippingCost"`
}

// CheckoutResponse is returned once the payment intent and pending order
// exist. ClientSecret lets the frontend complete the payment with the
// provider directly.
type CheckoutResponse struct {
	ClientSecret    string    `json:"clientSecret"`
	PaymentIntentID string    `json:"paymentIntentId"`
	OrderID         uuid.UUID `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
}

// ConfirmOrderRequest is the payload for POST /api/orders/confirm.
type ConfirmOrderRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}
