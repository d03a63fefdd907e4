// Package expect implements the assertion engine: an Expectation wraps a
// received value and exposes matchers that panic with an *AssertionFailure
// when their predicate does not hold.
//
// A matcher call looks like
//
//	expect.Expect(sum(1, 2)).ToBe(3)
//	expect.Expect(list).Not().ToContain(4)
//
// Negation applies to the next matcher only through the Expectation returned
// by Not. Every matcher returns its receiver so calls can be chained.
package expect

import (
	"context"
	"runtime/debug"
	"strings"
)

// Expectation wraps a received value. The zero value is not usable; create
// one with New or Expect.
type Expectation struct {
	received any
	control  bool
	messages Messages
	matchers *Matchers
	renderer Renderer
	ctx      context.Context
}

// Option configures an Expectation.
type Option func(*Expectation)

// WithMessages overlays msgs on top of the default message table.
func WithMessages(msgs Messages) Option {
	return func(e *Expectation) {
		e.messages = e.messages.Merge(msgs)
	}
}

// WithMatchers sets the registry used by Use.
func WithMatchers(m *Matchers) Option {
	return func(e *Expectation) {
		e.matchers = m
	}
}

// WithContext sets the context used by asynchronous and render matchers.
func WithContext(ctx context.Context) Option {
	return func(e *Expectation) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// New creates an Expectation for received.
func New(received any, opts ...Option) *Expectation {
	e := &Expectation{
		received: received,
		control:  true,
		messages: defaultMessages,
		matchers: builtins,
		renderer: HTMLRenderer{},
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expect is shorthand for New with no options.
func Expect(received any) *Expectation {
	return New(received)
}

// Not returns a negated copy of e. The original is left untouched, so
//
//	x := Expect(v)
//	x.Not().ToBe(1)
//	x.ToBe(2)
//
// asserts v != 1 and then v == 2.
func (e *Expectation) Not() *Expectation {
	n := *e
	n.control = !e.control
	return &n
}

// Received returns the wrapped value.
func (e *Expectation) Received() any {
	return e.received
}

// Negated reports whether matchers are currently inverted.
func (e *Expectation) Negated() bool {
	return !e.control
}

// Context returns the context used by asynchronous matchers.
func (e *Expectation) Context() context.Context {
	return e.ctx
}

// Messages returns the message table in effect.
func (e *Expectation) Messages() Messages {
	return e.messages
}

// Check evaluates a matcher outcome. result is the raw predicate; it is
// compared against the negation flag and a failure is returned when they
// differ. values[0] is the expected value and values[1], when present,
// replaces the received value in the failure and message.
func (e *Expectation) Check(result bool, msg []string, matcher string, values ...any) *AssertionFailure {
	if result == e.control {
		return nil
	}
	var expected any
	received := e.received
	if len(values) > 0 {
		expected = values[0]
	}
	if len(values) > 1 {
		received = values[1]
	}
	return &AssertionFailure{
		Message:  e.message(msg, matcher, expected, received),
		Matcher:  matcher,
		Expected: expected,
		Received: received,
		Stack:    string(debug.Stack()),
	}
}

// Assert is Check that panics with the failure. It is the primitive every
// matcher is built on, and custom matchers should call it as well.
func (e *Expectation) Assert(result bool, msg []string, matcher string, values ...any) *Expectation {
	if f := e.Check(result, msg, matcher, values...); f != nil {
		panic(f)
	}
	return e
}

// Fail raises a precondition error for matcher. It ignores negation.
func (e *Expectation) Fail(matcher string, err error, expected any) {
	panic(&PreconditionError{
		Matcher:  matcher,
		Received: e.received,
		Expected: expected,
		Err:      err,
		Stack:    string(debug.Stack()),
	})
}

// failAlways raises an assertion failure regardless of negation.
func (e *Expectation) failAlways(message, matcher string, expected, received any) {
	panic(&AssertionFailure{
		Message:  message,
		Matcher:  matcher,
		Expected: expected,
		Received: received,
		Stack:    string(debug.Stack()),
	})
}

func (e *Expectation) message(msg []string, matcher string, expected, received any) string {
	var text string
	if len(msg) > 0 && msg[0] != "" {
		text = msg[0]
	} else {
		positive, negative := e.messages.lookup(matcher)
		if e.control {
			text = positive
		} else {
			text = negative
		}
	}
	return Interpolate(text, expected, received)
}

// Interpolate substitutes {expected} and {received} in text. Missing values
// are replaced with the empty string.
func Interpolate(text string, expected, received any) string {
	if !strings.Contains(text, "{") {
		return text
	}
	r := strings.NewReplacer("{expected}", token(expected), "{received}", token(received))
	return r.Replace(text)
}
