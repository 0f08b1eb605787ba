package apperror

import "fmt"

// AppError is what services return when the failure has a meaning for the
// client. Code and Message end up in the response envelope; Err stays in
// the logs.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetails returns a copy of e carrying details for the envelope. The
// receiver, usually a package-level sentinel, is left untouched.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap attaches cause to a client-facing error. A nil cause yields nil.
func Wrap(cause error, code, message string, httpStatus int) *AppError {
	if cause == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: cause}
}
