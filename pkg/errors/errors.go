// Package errors provides coded application errors shared across layers.
package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidArg(msg string) error {
	return New(CodeInvalidArgument, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func Unauthorized(msg string) error {
	return New(CodeUnauthenticated, msg)
}

func Forbidden(msg string) error {
	return New(CodePermission, msg)
}

func Conflict(msg string) error {
	return New(CodeConflict, msg)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// Unavailable marks a failed call to an external collaborator. The API
// surfaces it as a generic retryable error.
func Unavailable(msg string, cause error) error {
	return Wrap(CodeUnavailable, msg, cause)
}

// BadResponse marks a structurally invalid response from an external
// collaborator. Surfaced identically to Unavailable.
func BadResponse(msg string, cause error) error {
	return Wrap(CodeBadResponse, msg, cause)
}

// SyncFailed marks a remote store error during hydration. These are logged
// and swallowed, never surfaced to the client.
func SyncFailed(msg string, cause error) error {
	return Wrap(CodeSyncFailed, msg, cause)
}

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}
