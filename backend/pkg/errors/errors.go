package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a referenced user, post or comment that does not exist
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a write that would break a graph invariant
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents a missing or malformed input field
	ErrorTypeValidation ErrorType = "validation_failed"
	// ErrorTypeUnauthenticated represents a request with no resolvable actor
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	// ErrorTypeForbidden represents an actor mutating something it does not own
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeStore represents graph store connectivity, timeout or constraint errors
	ErrorTypeStore ErrorType = "store_failure"
	// ErrorTypeStorage represents media upload errors
	ErrorTypeStorage ErrorType = "storage_failure"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the category of the error. Typed errors embedding
// *BaseError inherit it, which is what TypeOf relies on.
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Lookup errors

// ErrNotFound is returned when a referenced node is absent from the graph
type ErrNotFound struct {
	*BaseError
	Entity string
	ID     string
}

func NewNotFound(entity, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", entity, id), nil),
		Entity:    entity,
		ID:        id,
	}
}

// Invariant errors

// ErrConflict is returned when a write would duplicate a unique node or edge
type ErrConflict struct {
	*BaseError
	Reason string
}

func NewConflict(reason string) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, reason, nil),
		Reason:    reason,
	}
}

// ErrValidationFailed is returned when a required field is missing or malformed
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Actor errors

// ErrUnauthenticated is returned when a token does not resolve to a user
type ErrUnauthenticated struct {
	*BaseError
}

func NewUnauthenticated(reason string, err error) *ErrUnauthenticated {
	return &ErrUnauthenticated{
		BaseError: NewBaseError(ErrorTypeUnauthenticated, reason, err),
	}
}

// ErrForbidden is returned when the actor is neither the owner nor an admin
type ErrForbidden struct {
	*BaseError
	ActorID string
}

func NewForbidden(actorID, action string) *ErrForbidden {
	return &ErrForbidden{
		BaseError: NewBaseError(ErrorTypeForbidden, fmt.Sprintf("not allowed to %s", action), nil),
		ActorID:   actorID,
	}
}

// Store Errors

// StoreFailureKind distinguishes the ways the graph store can fail
type StoreFailureKind string

const (
	StoreNotConnected        StoreFailureKind = "not_connected"
	StoreTimeout             StoreFailureKind = "timeout"
	StoreConstraintViolation StoreFailureKind = "constraint_violation"
	StoreQueryFailed         StoreFailureKind = "query_failed"
)

// ErrStoreFailure is returned when the graph store cannot complete a unit of work.
// It is surfaced to the caller as a transient failure and never retried here.
type ErrStoreFailure struct {
	*BaseError
	Kind StoreFailureKind
}

func NewStoreFailure(kind StoreFailureKind, operation string, err error) *ErrStoreFailure {
	return &ErrStoreFailure{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("%s (%s)", operation, kind), err),
		Kind:      kind,
	}
}

// ErrStorageFailure is returned when an uploaded file cannot be stored
type ErrStorageFailure struct {
	*BaseError
	Backend string
}

func NewStorageFailure(backend, message string, err error) *ErrStorageFailure {
	return &ErrStorageFailure{
		BaseError: NewBaseError(ErrorTypeStorage, message, err),
		Backend:   backend,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	ErrorType() ErrorType
}

// TypeOf returns the category of the first typed error in err's chain,
// or an empty ErrorType for foreign errors.
func TypeOf(err error) ErrorType {
	var t typed
	if stderrors.As(err, &t) {
		return t.ErrorType()
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// IsStoreFailure reports whether err is a store failure of the given kind
func IsStoreFailure(err error, kind StoreFailureKind) bool {
	var sf *ErrStoreFailure
	return stderrors.As(err, &sf) && sf.Kind == kind
}

// IsRetryable reports whether a caller may reasonably try the request again.
// Only connectivity and timeout failures qualify; nothing in this module retries on its own.
func IsRetryable(err error) bool {
	return IsStoreFailure(err, StoreNotConnected) || IsStoreFailure(err, StoreTimeout)
}
