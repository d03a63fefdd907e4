package expect

import (
	"errors"

	"latte/pkg/future"
)

// settle waits for the received awaitable. Plain func() (any, error) values
// are run in place.
func (e *Expectation) settle(matcher string, expected any) (any, error) {
	switch v := e.received.(type) {
	case future.Awaitable:
		if isNil(v) {
			break
		}
		return v.Await(e.ctx)
	case func() (any, error):
		if v != nil {
			return v()
		}
	}
	e.Fail(matcher, ErrNotAwaitable, expected)
	return nil, nil
}

// ToBeResolvedWith awaits the received value and compares the resolution
// with expected by identity. A rejection fails even when negated.
func (e *Expectation) ToBeResolvedWith(expected any, msg ...string) *Expectation {
	value, err := e.settle("toBeResolvedWith", expected)
	if err != nil {
		text := "Promise was rejected"
		if len(msg) > 0 && msg[0] != "" {
			text = msg[0]
		}
		e.failAlways(text, "toBeResolvedWith", expected, err.Error())
	}
	return e.Assert(sameValue(value, expected), msg, "toBeResolvedWith", expected, value)
}

// ToBeRejectedWith awaits the received value and compares the rejection
// with expected. An error is matched with errors.Is, a string against the
// error message. A resolution fails even when negated.
func (e *Expectation) ToBeRejectedWith(expected any, msg ...string) *Expectation {
	value, err := e.settle("toBeRejectedWith", expected)
	if err == nil {
		text := "Promise was resolved"
		if len(msg) > 0 && msg[0] != "" {
			text = msg[0]
		}
		e.failAlways(text, "toBeRejectedWith", expected, value)
	}
	var result bool
	switch want := expected.(type) {
	case error:
		result = errors.Is(err, want)
	case string:
		result = err.Error() == want
	default:
		result = sameValue(err, expected)
	}
	return e.Assert(result, msg, "toBeRejectedWith", expected, err.Error())
}
