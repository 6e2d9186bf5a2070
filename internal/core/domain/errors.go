package domain

import "errors"

var (
	// ErrNotFound means no item exists for the requested id.
	ErrNotFound = errors.New("book not found")

	// ErrInsufficientFunds means the offered amount is below the unit cost.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientStock means the quantity was exhausted at decrement time,
	// including exhaustion by a concurrent purchase.
	ErrInsufficientStock = errors.New("insufficient stock")
)
