package model

import "net/http"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeGateway             = "GATEWAY_ERROR"
	ErrCodePaymentNotSucceeded = "PAYMENT_NOT_SUCCEEDED"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodePerfumeNotFound     = "PERFUME_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeEmailInUse          = "EMAIL_IN_USE"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeCartItemNotFound    = "CART_ITEM_NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a stable machine-readable code, a human message and the
// HTTP status the API should respond with.
type DomainError struct {
	Status  int
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(status int, code, message string) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a 400 validation error with a custom message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(http.StatusBadRequest, ErrCodeValidation, message)
}

// NewPaymentNotSucceededError reports the provider status that blocked the
// confirmation.
func NewPaymentNotSucceededError(providerStatus string) *DomainError {
	return NewDomainError(
		http.StatusBadRequest,
		ErrCodePaymentNotSucceeded,
		"payment has not succeeded, current status: "+providerStatus,
	)
}

// Common domain errors
var (
	ErrInvalidAmount      = NewDomainError(http.StatusBadRequest, ErrCodeInvalidAmount, "Amount must be greater than 0")
	ErrEmptyCart          = NewDomainError(http.StatusBadRequest, ErrCodeEmptyCart, "Order must contain at least one item")
	ErrGateway            = NewDomainError(http.StatusBadGateway, ErrCodeGateway, "Payment provider request failed")
	ErrOrderNotFound      = NewDomainError(http.StatusNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrInvalidSignature   = NewDomainError(http.StatusBadRequest, ErrCodeInvalidSignature, "Webhook signature verification failed")
	ErrUnauthorised       = NewDomainError(http.StatusUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(http.StatusForbidden, ErrCodeForbidden, "Insufficient permissions")
	ErrPerfumeNotFound    = NewDomainError(http.StatusNotFound, ErrCodePerfumeNotFound, "Perfume not found")
	ErrUserNotFound       = NewDomainError(http.StatusNotFound, ErrCodeUserNotFound, "User not found")
	ErrEmailInUse         = NewDomainError(http.StatusBadRequest, ErrCodeEmailInUse, "Email is already in use")
	ErrInvalidCredentials = NewDomainError(http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
	ErrInsufficientStock  = NewDomainError(http.StatusBadRequest, ErrCodeInsufficientStock, "Insufficient stock")
	ErrCartItemNotFound   = NewDomainError(http.StatusNotFound, ErrCodeCartItemNotFound, "Item not found in cart")
)
