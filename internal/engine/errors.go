package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName indicates an empty or whitespace-only item name.
	ErrEmptyName = errors.New("item name must not be empty")
	// ErrEmptyClaimant indicates an empty or whitespace-only claimant.
	ErrEmptyClaimant = errors.New("claimant name must not be empty")
	// ErrInvalidQuantity indicates a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrItemNotFound indicates the item is not in the local view.
	ErrItemNotFound = errors.New("item not found")
	// ErrItemProvisional indicates the item has not been created by the
	// store yet.
	ErrItemProvisional = errors.New("item is still being created")
	// ErrOrphanedTimer is reported for every pending deletion discarded by
	// Close.
	ErrOrphanedTimer = errors.New("pending deletion discarded on close")
	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine closed")
)

// Store operations named in StoreError.
const (
	OpCreate   = "create"
	OpRename   = "rename"
	OpQuantity = "quantity"
	OpClaim    = "claim"
	OpUnclaim  = "unclaim"
	OpDelete   = "delete"
	OpRefresh  = "refresh"
)

// StoreError is a store failure that was rolled back locally.
type StoreError struct {
	Op     string
	ItemID string
	Err    error
}

func (e *StoreError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
