package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrThrottled = errors.New("too many submissions")
)

// DataAccessError is any store failure other than a missing record.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *DataAccessError) Unwrap() error { return e.Err }

// FieldError names one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is returned before any store call when input is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil returns e when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "invalid input: " + strings.Join(parts, ", ")
}
