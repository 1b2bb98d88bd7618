package list

import "errors"

var (
	// ErrListNotFound indicates no list exists for the given token or ID.
	ErrListNotFound = errors.New("list not found")
	// ErrListNotActive indicates the list is completed or archived.
	ErrListNotActive = errors.New("list is not active")
	// ErrInvalidTransition indicates an illegal status change.
	ErrInvalidTransition = errors.New("invalid list status transition")
	// ErrInvalidInput indicates invalid list input.
	ErrInvalidInput = errors.New("invalid list input")
)
