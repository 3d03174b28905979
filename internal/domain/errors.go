package domain

import "errors"

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrMissingOrderID       = errors.New("order id is required")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
)
