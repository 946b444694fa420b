package apierr

import (
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine-readable code from the
// service layer up to the handlers, which unwrap it with errors.As.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
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

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Constructors for the failure taxonomy used across the service layer.

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func Unprocessable(code string, err error) *Error {
	return New(http.StatusUnprocessableEntity, code, err)
}

func PayloadTooLarge(code string, err error) *Error {
	return New(http.StatusRequestEntityTooLarge, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Store(err error) *Error {
	return New(http.StatusInternalServerError, "store_failed", err)
}
