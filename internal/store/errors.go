package store

import (
	"errors"
	"fmt"

	"invoicer/pkg/models"
)

// Common store errors
var (
	// ErrNotFound is returned when no invoice or client has the requested ID.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is matched by every *ValidationError.
	ErrInvalidRecord = errors.New("record failed validation")

	// ErrInvalidImport is returned when an import document has the wrong shape
	// or cannot be decoded.
	ErrInvalidImport = errors.New("import document is malformed")

	// ErrUnreadableDocument is returned when the encoded state would not load
	// back; nothing is written.
	ErrUnreadableDocument = errors.New("document would not decode after saving")

	// ErrClientInUse is returned by callers refusing to delete a client that
	// invoices still reference. The store itself does not enforce it.
	ErrClientInUse = errors.New("client is referenced by invoices")
)

// Error wraps errors with the store operation that produced them.
type Error struct {
	// Op is the operation that failed (e.g., "GetInvoice", "ImportJSON").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("store: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("store: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the specified operation and underlying error.
func NewError(op string, err error, details string) *Error {
	return &Error{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapError wraps an error as an Error if it isn't already one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}

	return NewError(op, err, details)
}

func notFound(op, kind, id string) error {
	return NewError(op, ErrNotFound, fmt.Sprintf("%s %q", kind, id))
}

// ValidationError reports a record rejected by its own validation rules.
type ValidationError struct {
	Op     string
	Result models.ValidationResult
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: %s: %s", e.Op, e.Result.Error())
}

// Unwrap lets errors.Is match ErrInvalidRecord.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}
