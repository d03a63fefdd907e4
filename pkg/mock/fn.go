package mock

import (
	"fmt"
	"sync"

	"latte/pkg/future"
)

// Func is the shape of every function a mock can wrap or run.
type Func func(args ...any) (any, error)

// ResultType tells a returned result from a thrown one.
type ResultType string

const (
	ResultReturn ResultType = "return"
	ResultThrow  ResultType = "throw"
)

// Result is the outcome of one call. For thrown results Value holds the
// error message.
type Result struct {
	Type  ResultType `json:"type"`
	Value any        `json:"value"`
}

// Fn is a mock function. The zero value is not usable; call New.
type Fn struct {
	name string
	fn   Func

	mu             sync.Mutex
	calls          [][]any
	contexts       []any
	results        []Result
	returnValues   []any
	once           []Func
	implementation Func
}

// New returns a mock wrapping fn. A nil fn behaves as a function returning
// (nil, nil). The name defaults to "mockFn".
func New(fn Func, name ...string) *Fn {
	f := &Fn{name: "mockFn", fn: fn}
	if len(name) > 0 && name[0] != "" {
		f.name = name[0]
	}
	return f
}

func (f *Fn) Name() string {
	return f.name
}

// Call invokes the mock without a receiver context.
func (f *Fn) Call(args ...any) (any, error) {
	return f.CallWith(nil, args...)
}

// CallWith invokes the mock and records this as the call's context.
func (f *Fn) CallWith(this any, args ...any) (value any, err error) {
	if args == nil {
		args = []any{}
	}
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.contexts = append(f.contexts, this)
	run, queued, hasQueued := f.next()
	f.mu.Unlock()

	if hasQueued {
		f.record(Result{Type: ResultReturn, Value: queued})
		return queued, nil
	}

	defer func() {
		if p := recover(); p != nil {
			f.record(Result{Type: ResultThrow, Value: panicMessage(p)})
			panic(p)
		}
	}()
	value, err = run(args...)
	if err != nil {
		f.record(Result{Type: ResultThrow, Value: err.Error()})
		return nil, err
	}
	f.record(Result{Type: ResultReturn, Value: value})
	return value, nil
}

// next picks what answers the current call. It must run with mu held.
func (f *Fn) next() (run Func, value any, isValue bool) {
	switch {
	case len(f.returnValues) > 0:
		value = f.returnValues[0]
		f.returnValues = f.returnValues[1:]
		return nil, value, true
	case len(f.once) > 0:
		run = f.once[0]
		f.once = f.once[1:]
	case f.implementation != nil:
		run = f.implementation
	case f.fn != nil:
		run = f.fn
	default:
		run = func(...any) (any, error) { return nil, nil }
	}
	return run, nil, false
}

func (f *Fn) record(r Result) {
	f.mu.Lock()
	f.results = append(f.results, r)
	f.mu.Unlock()
}

func panicMessage(p any) string {
	if err, ok := p.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p)
}

// Func adapts the mock to a plain function value.
func (f *Fn) Func() Func {
	return f.Call
}

// MockReturnValue queues a value returned by exactly one future call.
func (f *Fn) MockReturnValue(value any) *Fn {
	f.mu.Lock()
	f.returnValues = append(f.returnValues, value)
	f.mu.Unlock()
	return f
}

// MockImplementation sets the implementation used once the one-shot queues
// are empty.
func (f *Fn) MockImplementation(impl Func) *Fn {
	f.mu.Lock()
	f.implementation = impl
	f.mu.Unlock()
	return f
}

// MockImplementationOnce queues an implementation for exactly one call.
func (f *Fn) MockImplementationOnce(impl Func) *Fn {
	f.mu.Lock()
	f.once = append(f.once, impl)
	f.mu.Unlock()
	return f
}

// MockResolvedValue makes every call return a future resolved with value.
func (f *Fn) MockResolvedValue(value any) *Fn {
	return f.MockImplementation(func(...any) (any, error) {
		return future.Resolved(value), nil
	})
}

// MockRejectedValue makes every call return a future rejected with err.
func (f *Fn) MockRejectedValue(err error) *Fn {
	return f.MockImplementation(func(...any) (any, error) {
		return future.Rejected(err), nil
	})
}

// MockThrow makes every call fail with err.
func (f *Fn) MockThrow(err error) *Fn {
	return f.MockImplementation(func(...any) (any, error) {
		return nil, err
	})
}

// MockReset clears the recorded calls, contexts and results, the one-shot
// queues and the implementation. The wrapped function stays.
func (f *Fn) MockReset() *Fn {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.contexts = nil
	f.results = nil
	f.returnValues = nil
	f.once = nil
	f.implementation = nil
	return f
}

// MockCalls returns a copy of the argument lists, oldest first.
func (f *Fn) MockCalls() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fn) MockContexts() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.contexts))
	copy(out, f.contexts)
	return out
}

func (f *Fn) MockResults() []Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Result, len(f.results))
	copy(out, f.results)
	return out
}
