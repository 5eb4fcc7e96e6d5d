package domain

import (
	"errors"
	"strings"
)

var ErrUnauthenticated = errors.New("authentication required")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")
var ErrNotFound = errors.New("not found")
var ErrUserExists = errors.New("user already exists")
var ErrSelfDelete = errors.New("cannot delete your own account")
var ErrIncorrectPassword = errors.New("current password is incorrect")
var ErrDuplicateMember = errors.New("user is already in the project team")
var ErrUnsupportedFormat = errors.New("unsupported report format")
var ErrPayloadTooLarge = errors.New("payload too large")
var ErrUnsupportedFileType = errors.New("only document files are allowed")
var ErrFileRequired = errors.New("please upload a file")

// FieldError describes a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure of one input.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no failures were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
