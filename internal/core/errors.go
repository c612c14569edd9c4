package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Indicator errors
	ErrEmptySeries      = &Error{Code: "EMPTY_SERIES", Message: "price series is empty"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for calculation"}

	// Dispatch errors
	ErrUnknownFunction = &Error{Code: "UNKNOWN_FUNCTION", Message: "unknown function"}
	ErrMissingArgument = &Error{Code: "MISSING_ARGUMENT", Message: "missing required argument"}
	ErrTypeMismatch    = &Error{Code: "TYPE_MISMATCH", Message: "argument has wrong type"}
	ErrNotImplemented  = &Error{Code: "NOT_IMPLEMENTED", Message: "operation not supported yet"}

	// Provider errors
	ErrUnknownTicker       = &Error{Code: "UNKNOWN_TICKER", Message: "unknown ticker"}
	ErrProviderUnavailable = &Error{Code: "PROVIDER_UNAVAILABLE", Message: "market data provider unavailable"}

	// Completion errors
	ErrCompletionService = &Error{Code: "COMPLETION_SERVICE_ERROR", Message: "completion service request failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrUnauthorized    = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found"}
	ErrChartNotFound   = &Error{Code: "CHART_NOT_FOUND", Message: "chart not found"}
	ErrBadRequest      = &Error{Code: "BAD_REQUEST", Message: "malformed request"}
)

// ArgumentError carries the argument name and, for type mismatches, the
// expected and actual types.
type ArgumentError struct {
	Arg      string
	Expected string
	Actual   string
}

func (e *ArgumentError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("argument %q", e.Arg)
	}
	return fmt.Sprintf("argument %q: expected %s, got %s", e.Arg, e.Expected, e.Actual)
}

// MissingArgument reports that a required argument is absent.
func MissingArgument(name string) *Error {
	return WrapError(ErrMissingArgument, &ArgumentError{Arg: name})
}

// TypeMismatch reports that an argument cannot be coerced to its declared type.
func TypeMismatch(name, expected, actual string) *Error {
	return WrapError(ErrTypeMismatch, &ArgumentError{Arg: name, Expected: expected, Actual: actual})
}

// UserMessage renders err as the single line shown to the chat user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var argErr *ArgumentError
	switch {
	case errors.Is(err, ErrUnknownFunction):
		return "Sorry, I tried to use an operation that does not exist. Please rephrase your question."
	case errors.Is(err, ErrMissingArgument) && errors.As(err, &argErr):
		return fmt.Sprintf("Sorry, I could not work out the %s for that request.", argErr.Arg)
	case errors.Is(err, ErrTypeMismatch) && errors.As(err, &argErr):
		return fmt.Sprintf("Sorry, the %s must be a %s.", argErr.Arg, argErr.Expected)
	case errors.Is(err, ErrNotImplemented):
		return "Sorry, that feature is not supported yet."
	case errors.Is(err, ErrUnknownTicker):
		return "Sorry, I could not find that ticker symbol."
	case errors.Is(err, ErrProviderUnavailable):
		return "Market data is unavailable right now. Please try again later."
	case errors.Is(err, ErrInsufficientData), errors.Is(err, ErrEmptySeries):
		return "There is not enough price history to calculate that."
	case errors.Is(err, ErrCompletionService):
		return "The assistant is unavailable right now. Please try again later."
	}
	return fmt.Sprintf("Error: %v", err)
}
