package patient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced patient ID does not exist.
	ErrNotFound = errors.New("patient not found")
	// ErrConflict is returned when creating an ID that already exists.
	ErrConflict = errors.New("patient already exists")
	// ErrBadQuery is returned for an unknown sort field or order.
	ErrBadQuery = errors.New("invalid query")
	// ErrStorageUnavailable is returned when the collection cannot be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError lists every field constraint a payload violates.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewTypeError reports a field whose JSON value has the wrong type.
func NewTypeError(field, expected string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{
		Field:      field,
		Constraint: "type=" + expected,
		Message:    fmt.Sprintf("%s must be of type %s", field, expected),
	}}}
}
