// Package apperr defines the error kinds shared by the book and its adapters.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
	ErrPersist  = errors.New("persist failed")
)

// ValidationError is returned for input the caller should re-prompt for.
// Its message is meant to be shown to the user verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is reports ErrInvalid as a match so callers can branch on the kind alone.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }
