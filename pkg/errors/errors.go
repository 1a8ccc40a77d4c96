package errors

import (
	"errors"
	"fmt"
)

// Error codes surfaced to consuming screens.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeStorage            = "STORAGE_ERROR"
	CodeInsertFailed       = "INSERT_FAILED"
	CodeWorkFailure        = "WORK_FAILURE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInactiveAccount    = "ACCOUNT_INACTIVE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeCacheMiss          = "CACHE_MISS"
)

// Error represents a typed domain error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors carrying the same code, so errors.Is(err, ErrStorage)
// holds for any storage failure regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New(CodeNotFound, "record not found")
	ErrStorage            = New(CodeStorage, "storage error")
	ErrInsertFailed       = New(CodeInsertFailed, "insert failed, no generated key obtained")
	ErrWorkFailure        = New(CodeWorkFailure, "task work failed")
	ErrValidation         = New(CodeValidation, "validation failed")
	ErrConflict           = New(CodeConflict, "conflict")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid email or password")
	ErrInactiveAccount    = New(CodeInactiveAccount, "account is inactive")
	ErrInternal           = New(CodeInternal, "internal error")
	ErrCacheMiss          = New(CodeCacheMiss, "cache miss")
)

// Storage wraps a driver error as a StorageError.
func Storage(err error, message string) *Error {
	return Wrap(err, CodeStorage, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return FromError(err).Code
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
