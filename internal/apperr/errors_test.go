package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("book: add: %w", &ValidationError{Msg: "duplicate phone"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("wrapped validation error should match ErrInvalid")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error should not match ErrNotFound")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should find *ValidationError")
	}
	if err.Error() != "book: add: duplicate phone" || ve.Msg != "duplicate phone" {
		t.Errorf("error = %q, msg = %q", err.Error(), ve.Msg)
	}
}
