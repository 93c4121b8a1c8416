package apierrors

import (
	"errors"
	"net/http"
)

// Code represents an error category independent of the transport layer.
// Client-facing codes mirror the messages the login screen is allowed to
// show; server-side codes map onto HTTP statuses.
type Code string

const (
	// Local validation failures. These never reach the network.
	CodeValidation Code = "validation_failed"

	// CodeCredentials covers every 401 from login. Unknown user and wrong
	// password collapse into this single class so callers cannot enumerate
	// accounts.
	CodeCredentials Code = "invalid_credentials"

	CodeBadRequest Code = "bad_request"

	// CodeNetwork marks transport failures where no HTTP response arrived.
	CodeNetwork Code = "network_error"

	// CodeToken marks refresh/validate failures. Never surfaced directly;
	// the session ends and the caller is redirected to login.
	CodeToken Code = "token_invalid"

	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates an error wrapping an existing one. If the wrapped error is
// already a coded error, the original code is preserved.
func Wrap(code Code, msg string, err error) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not coded.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the status the transport layer writes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeCredentials, CodeUnauthorized, CodeToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
