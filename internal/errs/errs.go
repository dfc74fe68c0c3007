// Package errs defines the error kinds returned by the flux engine.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrRange = errors.New("range error")
	ErrShape = errors.New("shape error")
	ErrValue = errors.New("value error")
	ErrIndex = errors.New("index error")
)

// Error carries a kind sentinel and a human readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

// Unwrap exposes the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Range reports a degree or size above the supported maximum.
func Range(format string, args ...interface{}) error {
	return &Error{Kind: ErrRange, Msg: fmt.Sprintf(format, args...)}
}

// Shape reports inconsistent input dimensions.
func Shape(format string, args ...interface{}) error {
	return &Error{Kind: ErrShape, Msg: fmt.Sprintf(format, args...)}
}

// Value reports a parameter outside its valid domain.
func Value(format string, args ...interface{}) error {
	return &Error{Kind: ErrValue, Msg: fmt.Sprintf(format, args...)}
}

// Index reports an invalid (l, m) component.
func Index(format string, args ...interface{}) error {
	return &Error{Kind: ErrIndex, Msg: fmt.Sprintf(format, args...)}
}
