package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories. Handlers map
// these onto HTTP status codes with errors.Is.
var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAmountMismatch    = errors.New("total amount mismatch")
	ErrOverpayment       = errors.New("paid amount cannot exceed the total amount")
	ErrProductExists     = errors.New("product already exists")
	ErrEmailExists       = errors.New("user already exists")
	ErrAuthFailed        = errors.New("auth failed email or password is wrong")
)

// InsufficientStockError reports which product fell short and by how much,
// so the caller can reduce the quantity or restock.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough quantity for product %s: requested %d, available %d",
		e.Product, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// AmountMismatchError reports a disagreement between the client-claimed
// total and the server-computed total beyond the rounding tolerance.
type AmountMismatchError struct {
	Claimed  float64
	Computed float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("total amount mismatch: claimed %.2f, computed %.2f", e.Claimed, e.Computed)
}

func (e *AmountMismatchError) Unwrap() error { return ErrAmountMismatch }
