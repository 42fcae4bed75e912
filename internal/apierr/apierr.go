package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an operation failure. Codes are part of the tool and HTTP
// contracts and must stay stable.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeNotFound             Code = "NOT_FOUND"
	CodeAccessDenied         Code = "ACCESS_DENIED"
	CodeAuth                 Code = "AUTH_ERROR"
	CodeConfirmationRequired Code = "CONFIRMATION_REQUIRED"
	CodeExecution            Code = "EXECUTION_ERROR"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to
// CodeExecution for anything untyped.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeExecution
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeConfirmationRequired:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
