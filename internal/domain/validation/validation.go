// Package validation holds the error type returned for malformed or missing
// client input.
package validation

import "fmt"

// Error reports a single invalid input field. It is the caller's fault and
// is never retried.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// New returns an *Error for the given field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Required returns an *Error for a missing field.
func Required(field string) *Error {
	return &Error{Field: field, Message: "is required"}
}

// MaxLen returns an *Error when s is longer than limit characters.
func MaxLen(field, s string, limit int) error {
	if len([]rune(s)) > limit {
		return &Error{Field: field, Message: fmt.Sprintf("cannot exceed %d characters", limit)}
	}
	return nil
}
