package models

import "errors"

// Domain error taxonomy. Controllers translate these to HTTP statuses;
// everything else wraps them with %w so errors.Is keeps working.
var (
	// ErrNotFound: the target product id (or name) does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrNameTaken: a product with the same name (case-insensitive) exists.
	ErrNameTaken = errors.New("product name already taken")

	// ErrImageRequired: create was called without an image file.
	ErrImageRequired = errors.New("image file is required")

	// ErrInvalidInput: malformed fields (negative price, empty name, ...).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock: a quantity adjustment would drive qty below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrMediaStore: the hosted media store failed to upload or delete.
	ErrMediaStore = errors.New("media store failure")
)
