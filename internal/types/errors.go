package types

import (
	"errors"
	"fmt"
)

// Code identifies a class of recoverable failure
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeDuplicateID       Code = "DUPLICATE_ID"
	CodeOutOfRange        Code = "OUT_OF_RANGE"
	CodeInvalid           Code = "INVALID"
)

// Error carries a failure code plus context about the rejected operation.
// None of these are fatal; state is left untouched when one is returned.
type Error struct {
	Code     Code
	Message  string
	ID       string
	Internal error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is matches any *Error with the same code, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is
var (
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrDuplicateID       = &Error{Code: CodeDuplicateID}
	ErrOutOfRange        = &Error{Code: CodeOutOfRange}
	ErrInvalid           = &Error{Code: CodeInvalid}
)

// NotFound reports an operation on an unknown id
func NotFound(kind, id string) *Error {
	return &Error{Code: CodeNotFound, ID: id, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// InvalidTransition reports a status change outside the linear lifecycle
func InvalidTransition(id string, from, to AlertStatus) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		ID:      id,
		Message: fmt.Sprintf("alert %s cannot move from %s to %s", id, from, to),
	}
}

// DuplicateID reports an ingest collision
func DuplicateID(kind, id string) *Error {
	return &Error{Code: CodeDuplicateID, ID: id, Message: fmt.Sprintf("%s %s already exists", kind, id)}
}

// OutOfRange reports a violated numeric precondition
func OutOfRange(format string, args ...any) *Error {
	return &Error{Code: CodeOutOfRange, Message: fmt.Sprintf(format, args...)}
}

// Invalidf reports a rejected input value
func Invalidf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// Invalid wraps a validation failure for the record with the given id
func Invalid(kind, id string, err error) *Error {
	return &Error{Code: CodeInvalid, ID: id, Message: fmt.Sprintf("invalid %s %s", kind, id), Internal: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
