package expect

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// invoke calls a function value and reports whether it failed. A panic and
// a non-nil error return both count as a throw.
func invoke(ctx context.Context, fn any) (thrown error, ok bool) {
	call, ok := callable(ctx, fn)
	if !ok {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			if err, isErr := r.(error); isErr {
				thrown = err
				return
			}
			thrown = fmt.Errorf("%v", r)
		}
	}()
	return call(), true
}

func callable(ctx context.Context, fn any) (func() error, bool) {
	switch f := fn.(type) {
	case func():
		return func() error { f(); return nil }, f != nil
	case func() error:
		return f, f != nil
	case func() (any, error):
		return func() error { _, err := f(); return err }, f != nil
	case func(context.Context) error:
		return func() error { return f(ctx) }, f != nil
	}
	return nil, false
}

// ToThrow calls the received function and asserts that it panics or returns
// an error. Accepted shapes are func(), func() error, func() (any, error)
// and func(context.Context) error.
func (e *Expectation) ToThrow(msg ...string) *Expectation {
	thrown, ok := invoke(e.ctx, e.received)
	if !ok {
		e.Fail("toThrow", ErrNotFunction, nil)
	}
	var received any
	if thrown != nil {
		received = thrown.Error()
	}
	return e.Assert(thrown != nil, msg, "toThrow", nil, received)
}

// ToThrowError asserts that the received function fails with a matching
// error. expected may be a pattern string, a *regexp.Regexp, or an error
// compared with errors.Is and then by message.
func (e *Expectation) ToThrowError(expected any, msg ...string) *Expectation {
	thrown, ok := invoke(e.ctx, e.received)
	if !ok {
		e.Fail("toThrowError", ErrNotFunction, expected)
	}
	result := false
	message := ""
	if thrown != nil {
		message = thrown.Error()
		switch want := expected.(type) {
		case *regexp.Regexp:
			result = want != nil && want.MatchString(message)
		case string:
			if re, ok := compilePattern(want); ok {
				result = re.MatchString(message)
			} else {
				result = strings.Contains(message, want)
			}
		case error:
			result = errors.Is(thrown, want) || message == want.Error()
		default:
			e.Fail("toThrowError", ErrBadArgument, expected)
		}
	}
	return e.Assert(result, msg, "toThrowError", expected, message)
}
