package item

import "errors"

var (
	// ErrItemNotFound indicates the item doesn't exist on the list.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidName indicates an empty or whitespace-only name.
	ErrInvalidName = errors.New("item name must not be empty")
	// ErrInvalidQuantity indicates a quantity below one.
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	// ErrInvalidClaimant indicates an empty claimant name.
	ErrInvalidClaimant = errors.New("claimant name must not be empty")
	// ErrInvalidInput indicates a malformed request.
	ErrInvalidInput = errors.New("invalid item input")
)
