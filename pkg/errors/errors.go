// Package errors defines the coded errors shared by the growth library, the
// CLI and the HTTP API. A Code survives wrapping, so callers branch on it
// with Is instead of matching message text.
//
// # Error Codes
//
// Codes map onto the failure taxonomy of a growth run:
//   - CONFIGURATION: invalid parameter combinations, rejected before seeding
//   - RESOURCE_UNAVAILABLE: an attractor source cannot supply geometry
//   - INVALID_GEOMETRY: degenerate masks, meshes or voxelisations
//   - EMPTY_ATTRACTOR_FIELD: label for runs whose field started empty
//   - INVALID_*: request/flag validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "step size must be positive, got %g", step)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    return err
//	}
//
//	err = errors.Wrap(errors.ErrCodeResourceUnavailable, origErr, "load mask %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error. The HTTP layer maps codes onto status codes.
type Code string

const (
	// Raised before the first tick of a run.
	ErrCodeConfiguration       Code = "CONFIGURATION"
	ErrCodeResourceUnavailable Code = "RESOURCE_UNAVAILABLE"
	ErrCodeInvalidGeometry     Code = "INVALID_GEOMETRY"
	ErrCodeEmptyAttractorField Code = "EMPTY_ATTRACTOR_FIELD"

	// Flag and request validation.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidSource Code = "INVALID_SOURCE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a Code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error whose cause is err.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix and cause from coded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err belongs to the classes that abort a run before
// its first tick: configuration, resource and geometry failures.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfiguration, ErrCodeResourceUnavailable, ErrCodeInvalidGeometry:
		return true
	}
	return false
}
