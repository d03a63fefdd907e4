package expect

import (
	"errors"
	"fmt"
)

// AssertionFailure is raised by a failing matcher. It carries enough data for
// reporters to render an expected/received comparison.
type AssertionFailure struct {
	Message  string `json:"message"`
	Matcher  string `json:"matcher"`
	Expected any    `json:"expected,omitempty"`
	Received any    `json:"received,omitempty"`
	// Stack is the goroutine stack captured when the assertion failed.
	Stack string `json:"-"`
}

func (f *AssertionFailure) Error() string {
	return f.Message
}

// Precondition errors signal matcher misuse rather than a false predicate.
// They are raised regardless of negation.
var (
	ErrNotMock        = errors.New("expected function is not a mock function")
	ErrNotObject      = errors.New("value is not an object")
	ErrNotString      = errors.New("expected value is not a string")
	ErrNotFunction    = errors.New("value is not a function")
	ErrNotAwaitable   = errors.New("value is not awaitable")
	ErrNotRenderable  = errors.New("value cannot be rendered")
	ErrUnknownMatcher = errors.New("unknown matcher")
	ErrBadArgument    = errors.New("invalid matcher argument")
)

// PreconditionError wraps one of the precondition sentinels with the matcher
// that raised it.
type PreconditionError struct {
	Matcher  string
	Received any
	Expected any
	Err      error
	Stack    string
}

func (e *PreconditionError) Error() string {
	if e.Matcher == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Matcher, e.Err.Error())
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Details extracts the message, expected and received values from a failure
// produced by this package. ok is false for any other error.
func Details(err error) (message string, expected, received any, ok bool) {
	var af *AssertionFailure
	if errors.As(err, &af) {
		return af.Message, af.Expected, af.Received, true
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Error(), pe.Expected, pe.Received, true
	}
	return "", nil, nil, false
}

// StackOf returns the captured stack of a failure produced by this package.
func StackOf(err error) string {
	var af *AssertionFailure
	if errors.As(err, &af) {
		return af.Stack
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Stack
	}
	return ""
}

// Catch runs fn and converts an assertion panic into an error. Panics that
// did not originate from a matcher are re-raised.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := AsFailure(r); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// AsFailure reports whether a recovered panic value is an assertion or
// precondition failure.
func AsFailure(r any) (error, bool) {
	switch v := r.(type) {
	case *AssertionFailure:
		return v, true
	case *PreconditionError:
		return v, true
	}
	return nil, false
}
