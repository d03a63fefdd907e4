package mock

import (
	"encoding/json"
	"sync"
	"time"
)

// Call is one recorded spy invocation.
type Call struct {
	Args      []any     `json:"args"`
	Timestamp time.Time `json:"timestamp"`
	Result    any       `json:"result"`
	Err       error     `json:"-"`
}

// Spy calls through to a wrapped function and records every call.
type Spy struct {
	original Func
	clock    Clock

	mu      sync.Mutex
	current Func
	history []Call
}

// SpyOption configures a Spy.
type SpyOption func(*Spy)

// WithClock sets the clock used for call timestamps.
func WithClock(c Clock) SpyOption {
	return func(s *Spy) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewSpy wraps fn. A nil fn behaves as a function returning (nil, nil).
func NewSpy(fn Func, opts ...SpyOption) *Spy {
	if fn == nil {
		fn = func(...any) (any, error) { return nil, nil }
	}
	s := &Spy{original: fn, current: fn, clock: RealClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call invokes the current behaviour and records the call once it returns.
// A panicking call is not recorded.
func (s *Spy) Call(args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	s.mu.Lock()
	fn := s.current
	s.mu.Unlock()

	at := s.clock.Now()
	result, err := fn(args...)

	s.mu.Lock()
	s.history = append(s.history, Call{Args: args, Timestamp: at, Result: result, Err: err})
	s.mu.Unlock()
	return result, err
}

// Func adapts the spy to a plain function value.
func (s *Spy) Func() Func {
	return s.Call
}

// Calls returns a copy of the call history.
func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Spy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// LastCall returns the most recent call, or nil before the first one.
func (s *Spy) LastCall() *Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	c := s.history[len(s.history)-1]
	return &c
}

// CalledWith reports whether some call had exactly args, comparing each
// argument by its JSON encoding.
func (s *Spy) CalledWith(args ...any) bool {
	want, ok := encodeAll(args)
	if !ok {
		return false
	}
	for _, c := range s.Calls() {
		if len(c.Args) != len(want) {
			continue
		}
		got, ok := encodeAll(c.Args)
		if !ok {
			continue
		}
		match := true
		for i := range want {
			if got[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func encodeAll(args []any) ([]string, bool) {
	out := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, false
		}
		out[i] = string(b)
	}
	return out, true
}

// MockReturnValue makes the spy return value until RestoreBehaviour.
func (s *Spy) MockReturnValue(value any) *Spy {
	s.mu.Lock()
	s.current = func(...any) (any, error) { return value, nil }
	s.mu.Unlock()
	return s
}

// RestoreBehaviour goes back to calling the wrapped function.
func (s *Spy) RestoreBehaviour() *Spy {
	s.mu.Lock()
	s.current = s.original
	s.mu.Unlock()
	return s
}

// Reset clears the call history.
func (s *Spy) Reset() *Spy {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	return s
}

// Original returns the wrapped function.
func (s *Spy) Original() Func {
	return s.original
}

// MockCalls lets the mock-call matchers inspect a spy.
func (s *Spy) MockCalls() [][]any {
	calls := s.Calls()
	out := make([][]any, len(calls))
	for i, c := range calls {
		out[i] = c.Args
	}
	return out
}
