// internal/menuparse/errors.go
package menuparse

import (
	"errors"
	"fmt"
)

var (
	// Structural errors: the page does not have the expected shape.
	ErrDuplicateField   = errors.New("duplicate field")
	ErrIncompleteRecord = errors.New("incomplete record at end of input")
	ErrArguments        = errors.New("details arguments do not match")

	// Validation errors: the page has the expected shape but carries bad values.
	ErrInvalidRecord   = errors.New("invalid record")
	ErrMalformedNumber = errors.New("malformed number")
)

// FieldError ties a parse failure to the field and fragment that caused it.
type FieldError struct {
	Field    Field
	Fragment string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (fragment %q)", e.Field, e.Err, e.Fragment)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Kind returns a short, stable label for err, suitable for metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateField):
		return "duplicate_field"
	case errors.Is(err, ErrIncompleteRecord):
		return "incomplete_record"
	case errors.Is(err, ErrArguments):
		return "arguments"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, ErrMalformedNumber):
		return "malformed_number"
	default:
		return "other"
	}
}
