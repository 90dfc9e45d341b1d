// Package errors provides the coded errors shared by the lineage packages.
//
// Every error that crosses a package boundary carries a [Code]. Codes fall
// into three groups:
//   - Input records (MALFORMED_INPUT, DUPLICATE_*, DANGLING_EDGE,
//     UNKNOWN_ATTRIBUTE): the builder drops or degrades the record and
//     carries on. [IsRecoverable] reports this group.
//   - Lookups (UNKNOWN_NODE, UNKNOWN_EDGE) and caller mistakes (INVALID_*):
//     returned to the caller, mapped to 404 and 400 by [Code.HTTPStatus].
//   - Conditions (LAYOUT_TIMEOUT) and internal failures.
//
//	err := errors.New(errors.ErrCodeDanglingEdge, "link %s: unknown target %s", id, target)
//	if errors.Is(err, errors.ErrCodeDanglingEdge) {
//	    // drop and continue
//	}
//
// A bare *Error with only a code works as a sentinel for the standard
// library's errors.Is:
//
//	stderrors.Is(err, &errors.Error{Code: errors.ErrCodeUnknownNode})
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeMalformedInput   Code = "MALFORMED_INPUT"
	ErrCodeDuplicateNode    Code = "DUPLICATE_NODE"
	ErrCodeDuplicateEdge    Code = "DUPLICATE_EDGE"
	ErrCodeDanglingEdge     Code = "DANGLING_EDGE"
	ErrCodeUnknownAttribute Code = "UNKNOWN_ATTRIBUTE"
	ErrCodeReservedName     Code = "RESERVED_NAME"

	ErrCodeUnknownNode Code = "UNKNOWN_NODE"
	ErrCodeUnknownEdge Code = "UNKNOWN_EDGE"

	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"

	ErrCodeLayoutTimeout Code = "LAYOUT_TIMEOUT"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
)

type codeInfo struct {
	recoverable bool
	status      int
}

var codeTable = map[Code]codeInfo{
	ErrCodeMalformedInput:   {recoverable: true, status: http.StatusBadRequest},
	ErrCodeDuplicateNode:    {recoverable: true, status: http.StatusBadRequest},
	ErrCodeDuplicateEdge:    {recoverable: true, status: http.StatusBadRequest},
	ErrCodeDanglingEdge:     {recoverable: true, status: http.StatusBadRequest},
	ErrCodeUnknownAttribute: {recoverable: true, status: http.StatusBadRequest},
	ErrCodeReservedName:     {recoverable: true, status: http.StatusBadRequest},

	ErrCodeUnknownNode: {status: http.StatusNotFound},
	ErrCodeUnknownEdge: {status: http.StatusNotFound},

	ErrCodeInvalidOrientation: {status: http.StatusBadRequest},
	ErrCodeInvalidConfig:      {status: http.StatusBadRequest},
	ErrCodeInvalidFormat:      {status: http.StatusBadRequest},
	ErrCodeInvalidInput:       {status: http.StatusBadRequest},

	ErrCodeLayoutTimeout: {status: http.StatusServiceUnavailable},
	ErrCodeUnsupported:   {status: http.StatusNotImplemented},
}

// Recoverable reports whether the builder drops records with this code and
// continues.
func (c Code) Recoverable() bool { return codeTable[c].recoverable }

// HTTPStatus maps the code to a response status; unknown codes and
// ErrCodeInternal are 500.
func (c Code) HTTPStatus() int {
	if info, ok := codeTable[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional cause.
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

// Is matches a target *Error that only sets Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsRecoverable reports whether err describes an input record that the
// builder drops while continuing with the rest of the data.
func IsRecoverable(err error) bool {
	return GetCode(err).Recoverable()
}
