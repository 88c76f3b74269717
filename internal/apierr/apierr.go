package apierr

import (
	"fmt"
	"net/http"
)

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

func NotFound(code string, format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf(format, args...))
}

func Forbidden(code string, format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, code, fmt.Errorf(format, args...))
}

func BadRequest(code string, format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf(format, args...))
}
