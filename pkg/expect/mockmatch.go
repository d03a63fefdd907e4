package expect

// Mocked is implemented by mock functions and spies. MockCalls returns the
// recorded argument lists in call order.
type Mocked interface {
	MockCalls() [][]any
}

func (e *Expectation) mockCalls(matcher string) [][]any {
	m, ok := e.received.(Mocked)
	if !ok || isNil(e.received) {
		e.Fail(matcher, ErrNotMock, nil)
	}
	return m.MockCalls()
}

func (e *Expectation) ToHaveBeenCalled(msg ...string) *Expectation {
	calls := e.mockCalls("toHaveBeenCalled")
	return e.Assert(len(calls) > 0, msg, "toHaveBeenCalled", nil, len(calls))
}

func (e *Expectation) ToHaveBeenCalledTimes(expected int, msg ...string) *Expectation {
	calls := e.mockCalls("toHaveBeenCalledTimes")
	return e.Assert(len(calls) == expected, msg, "toHaveBeenCalledTimes", expected, len(calls))
}

// ToHaveBeenCalledWith passes when any recorded call deep-equals args.
func (e *Expectation) ToHaveBeenCalledWith(args []any, msg ...string) *Expectation {
	calls := e.mockCalls("toHaveBeenCalledWith")
	result := false
	for _, call := range calls {
		if deepEqual(normalizeArgs(call), normalizeArgs(args)) {
			result = true
			break
		}
	}
	return e.Assert(result, msg, "toHaveBeenCalledWith", args, calls)
}

// ToHaveBeenLastCalledWith compares only the most recent call.
func (e *Expectation) ToHaveBeenLastCalledWith(args []any, msg ...string) *Expectation {
	calls := e.mockCalls("toHaveBeenLastCalledWith")
	result := len(calls) > 0 && deepEqual(normalizeArgs(calls[len(calls)-1]), normalizeArgs(args))
	return e.Assert(result, msg, "toHaveBeenLastCalledWith", args, calls)
}

// normalizeArgs treats a nil argument list like an empty one.
func normalizeArgs(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
