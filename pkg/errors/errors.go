// Package errors provides structured error types for lanechart.
//
// Errors carry a machine-readable [Code] next to a human-readable message so
// the CLI can print friendly text and the HTTP server can map failures to
// status codes without string matching.
//
// # Error Codes
//
// INVALID_* codes are caller mistakes ([IsValidation]), *_NOT_FOUND codes
// are missing resources ([IsNotFound]). Everything else is a backend or
// internal failure.
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "link %s: unknown item %q", id, to)
//	err = errors.Wrap(errors.ErrCodeStorage, err, "save chart %s", id)
//	errors.GetCode(err) // STORAGE_ERROR
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Bad input: HTTP 400.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType  Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidID       Code = "INVALID_ID"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Missing resources: HTTP 404.
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeChartNotFound Code = "CHART_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Backend failures.
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Message is safe to show to users; Cause, if set,
// carries the underlying failure and is reachable through errors.Unwrap.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "" if there is none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error without its
// code or cause, falling back to err.Error().
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

type class uint8

const (
	classOther class = iota
	classValidation
	classNotFound
)

var classes = map[Code]class{
	ErrCodeInvalidInput:    classValidation,
	ErrCodeInvalidDocument: classValidation,
	ErrCodeInvalidFormat:   classValidation,
	ErrCodeInvalidVizType:  classValidation,
	ErrCodeInvalidID:       classValidation,
	ErrCodeInvalidPath:     classValidation,
	ErrCodeNotFound:        classNotFound,
	ErrCodeChartNotFound:   classNotFound,
	ErrCodeFileNotFound:    classNotFound,
}

// IsValidation reports whether err carries one of the INVALID_* codes.
func IsValidation(err error) bool { return classes[GetCode(err)] == classValidation }

// IsNotFound reports whether err carries one of the *_NOT_FOUND codes.
func IsNotFound(err error) bool { return classes[GetCode(err)] == classNotFound }
