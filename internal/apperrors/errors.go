package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for HTTP mapping.
type Code string

const (
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation"
	CodeUpstream     Code = "upstream"
)

// Error carries a classification code and a caller-safe message.
// The wrapped cause is for logs only and never reaches a response body.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Unauthorized(message string) error { return New(CodeUnauthorized, message) }
func Forbidden(message string) error    { return New(CodeForbidden, message) }
func NotFound(message string) error     { return New(CodeNotFound, message) }
func Validation(message string) error   { return New(CodeValidation, message) }

// Upstream wraps a backing-store or gateway failure. The message shown to
// callers stays generic.
func Upstream(err error) error {
	return &Error{Code: CodeUpstream, Message: "internal server error", Err: err}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus maps an error to its response status. Anything unclassified
// is a 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to put in a response body.
// Upstream and unclassified errors collapse to a generic message so no
// internal detail leaks.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code == CodeUpstream {
		return "internal server error"
	}
	return appErr.Message
}
