package domain

import "errors"

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("line not found")
	ErrInvalidCriteria = errors.New("invalid filter criteria")
	ErrEmptyCart       = errors.New("cart is empty")
)
