// Package validate carries field-scoped validation failures across the
// service boundary so handlers can attribute errors to form fields.
package validate

import (
	"fmt"
	"strings"
)

// FieldError is a validation failure attributed to a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors accumulates field errors for one logical operation.
type Errors struct {
	Fields []FieldError `json:"fields"`
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *Errors) Add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge folds another validation error into the accumulator. Non-validation
// errors are recorded under a generic field.
func (e *Errors) Merge(err error) {
	switch v := err.(type) {
	case nil:
	case *Errors:
		e.Fields = append(e.Fields, v.Fields...)
	case FieldError:
		e.Fields = append(e.Fields, v)
	default:
		e.Fields = append(e.Fields, FieldError{Field: "_", Message: err.Error()})
	}
}

// Has reports whether any error was recorded.
func (e *Errors) Has() bool { return len(e.Fields) > 0 }

// Err returns the accumulated errors, or nil when none were recorded.
func (e *Errors) Err() error {
	if e.Has() {
		return e
	}
	return nil
}

// Field builds a single-field validation error.
func Field(field, format string, args ...interface{}) error {
	return &Errors{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Truncate caps s at max runes. Values already within the cap pass through
// unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
