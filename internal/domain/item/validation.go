package item

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and applies NFC so names typed
// on different devices compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateCreateInput validates fields required to create an item.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.ListID) == "" {
		return ErrInvalidInput
	}
	if NormalizeName(req.Name) == "" {
		return ErrInvalidName
	}
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// ValidateUpdateInput validates the optional fields of an update.
func ValidateUpdateInput(req UpdateRequest) error {
	if strings.TrimSpace(req.ListID) == "" || strings.TrimSpace(req.ID) == "" {
		return ErrInvalidInput
	}
	if req.Name != nil && NormalizeName(*req.Name) == "" {
		return ErrInvalidName
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if req.Name == nil && req.Quantity == nil && req.Claimant == nil {
		return ErrInvalidInput
	}
	return nil
}
