// Package errors provides standardized error types and helpers for the
// Rootline codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a record or resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecode indicates a byte buffer could not be interpreted as text
	ErrDecode = errors.New("failed to decode")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// DecodeError represents a failure to interpret a byte buffer as text
// under the detected encoding scheme. It is fatal: the parse orchestrator
// never falls back past a decode failure.
type DecodeError struct {
	Encoding string // Encoding selected by BOM detection (e.g., "UTF-8")
	Err      error  // Underlying error, if any
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode %s input: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("failed to decode %s input", e.Encoding)
}

func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDecode
}

// ParseError represents a structural parsing failure in one normalizer
// strategy.
type ParseError struct {
	Strategy string // Strategy that failed (e.g., "record-tree", "object-graph")
	Message  string // Error details
	Err      error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("%s parse failed: %s", e.Strategy, e.Message)
	}
	return fmt.Sprintf("parse failed: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotFoundError represents a missing record or resource. ID carries the
// identifier exactly as the caller supplied it, pre-canonicalization, so
// error messages echo the caller's spelling.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "person", "dataset")
	ID       string // Identifier as originally requested
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents a missing or malformed argument, raised
// before any parsing or traversal work begins.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an input acquisition failure with context.
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "fetch")
	Source    string // File path or URL involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported feature or format.
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewDecode creates a DecodeError
func NewDecode(encoding string, err error) *DecodeError {
	return &DecodeError{
		Encoding: encoding,
		Err:      err,
	}
}

// NewParse creates a ParseError
func NewParse(strategy, message string) *ParseError {
	return &ParseError{
		Strategy: strategy,
		Message:  message,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, source string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Source:    source,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
