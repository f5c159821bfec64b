package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/todotofu/todotofu/backend/internal/repository"
)

var (
	// ErrUnauthenticated is returned when the context carries no identity
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when a record does not exist or is not owned by the caller
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing record
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Violation codes carried by ValidationError fields
const (
	CodeRequired    = "required"
	CodeInvalid     = "invalid"
	CodeInvalidDate = "invalid_date"
	CodeOutOfRange  = "out_of_range"
)

// FieldViolation is one rejected input field
type FieldViolation struct {
	Field   string
	Message string
	Code    string
	Value   string
}

// ValidationError reports rejected input
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records a violation and returns e for chaining
func (e *ValidationError) add(field, code, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldViolation{Field: field, Code: code, Message: message})
	return e
}

// orNil returns nil when no violation was recorded
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, code, message string) *ValidationError {
	return (&ValidationError{}).add(field, code, message)
}

func invalidDate(field, value string) *ValidationError {
	return &ValidationError{Fields: []FieldViolation{{
		Field:   field,
		Code:    CodeInvalidDate,
		Message: "must be a calendar date in YYYY-MM-DD format",
		Value:   value,
	}}}
}

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is reports whether target is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// lookupError converts repository misses into NotFoundError and wraps anything else
func lookupError(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
