package rpc

import (
	"errors"
	"fmt"

	"github.com/ganot/sharedlist/internal/domain/activity"
	"github.com/ganot/sharedlist/internal/domain/item"
	"github.com/ganot/sharedlist/internal/domain/list"
)

var (
	// ErrMethodNotFound indicates an unknown RPC method.
	ErrMethodNotFound = errors.New("method not found")
	// ErrInvalidParams indicates params that could not be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// Stable error codes shared by the server and its clients.
const (
	CodeListNotFound      = "LIST_NOT_FOUND"
	CodeListNotActive     = "LIST_NOT_ACTIVE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeInvalidName       = "INVALID_NAME"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeInvalidClaimant   = "INVALID_CLAIMANT"
	CodeInvalidInput      = "INVALID_INPUT"
)

// APIError represents an application error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to API error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, list.ErrListNotFound):
		return &APIError{Code: CodeListNotFound, Message: "list not found", RecoveryHint: "Check the share link"}
	case errors.Is(err, list.ErrListNotActive):
		return &APIError{Code: CodeListNotActive, Message: "list is not active", RecoveryHint: "Reopen the list first"}
	case errors.Is(err, list.ErrInvalidTransition):
		return &APIError{Code: CodeInvalidTransition, Message: "invalid status transition"}
	case errors.Is(err, item.ErrItemNotFound):
		return &APIError{Code: CodeItemNotFound, Message: "item not found", RecoveryHint: "Refresh the list"}
	case errors.Is(err, item.ErrInvalidName):
		return &APIError{Code: CodeInvalidName, Message: "item name must not be empty"}
	case errors.Is(err, item.ErrInvalidQuantity):
		return &APIError{Code: CodeInvalidQuantity, Message: "quantity must be at least 1"}
	case errors.Is(err, item.ErrInvalidClaimant):
		return &APIError{Code: CodeInvalidClaimant, Message: "claimant name must not be empty"}
	case errors.Is(err, list.ErrInvalidInput), errors.Is(err, item.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: "invalid input"}
	default:
		return nil
	}
}

// DomainError maps an API error code back to the domain sentinel it came
// from. Unknown codes return nil.
func DomainError(code string) error {
	switch code {
	case CodeListNotFound:
		return list.ErrListNotFound
	case CodeListNotActive:
		return list.ErrListNotActive
	case CodeInvalidTransition:
		return list.ErrInvalidTransition
	case CodeItemNotFound:
		return item.ErrItemNotFound
	case CodeInvalidName:
		return item.ErrInvalidName
	case CodeInvalidQuantity:
		return item.ErrInvalidQuantity
	case CodeInvalidClaimant:
		return item.ErrInvalidClaimant
	case CodeInvalidInput:
		return item.ErrInvalidInput
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
