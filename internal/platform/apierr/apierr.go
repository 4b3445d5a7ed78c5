package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput         = "invalid_input"
	CodeUpstreamFailure      = "upstream_failure"
	CodeConfiguration        = "configuration_error"
	CodeKnowledgeUnavailable = "knowledge_unavailable"
)

// Error carries an HTTP status, a stable code and a caller-safe message.
// Err is the underlying cause; it is logged, never sent to callers.
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func InvalidInput(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, message, nil)
}

func UpstreamFailure(details string, err error) *Error {
	e := New(http.StatusInternalServerError, CodeUpstreamFailure, "The assistant could not answer right now. Please try again.", err)
	e.Details = details
	return e
}

func Configuration(err error) *Error {
	return New(http.StatusInternalServerError, CodeConfiguration, "The assistant is not configured on the server.", err)
}

// As extracts an *Error from err. Unknown errors become an upstream failure
// so their text never reaches a caller.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return UpstreamFailure("", err)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
