// Package ledgererr defines the structured error returned by every failed instruction.
package ledgererr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

const (
	Authorization Kind = "authorization"
	State         Kind = "state"
	Capacity      Kind = "capacity"
	Validation    Kind = "validation"
	Duplication   Kind = "duplication"
	Arithmetic    Kind = "arithmetic"
	NotFound      Kind = "not_found"
)

// Error is a domain error with a stable numeric code.
type Error struct {
	Code    uint32 `json:"code"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// New declares a domain error. Call it from package-level var blocks only.
func New(code uint32, kind Kind, name, message string) *Error {
	return &Error{Code: code, Name: name, Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

// Is matches on code so wrapped copies compare equal to the declared sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrapf returns a copy of e with extra detail appended to the message.
func (e *Error) Wrapf(format string, args ...any) *Error {
	c := *e
	c.Message = e.Message + ": " + fmt.Sprintf(format, args...)
	return &c
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
