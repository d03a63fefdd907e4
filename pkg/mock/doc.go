// Package mock provides call-recording stand-ins for functions and HTTP
// endpoints.
//
// # Mock functions
//
// New wraps an optional function and records every invocation:
//
//	fetchUser := mock.New(nil, "fetchUser").
//		MockReturnValue(map[string]any{"id": 1}).
//		MockImplementation(func(args ...any) (any, error) {
//			return nil, errors.New("offline")
//		})
//
//	v, err := fetchUser.Call(1) // {"id": 1}, nil
//	v, err = fetchUser.Call(2)  // nil, "offline"
//
//	expect.Expect(fetchUser).ToHaveBeenCalledTimes(2)
//
// Each call resolves its result from, in order: the queued one-shot return
// values, the queued one-shot implementations, the persistent
// implementation, and finally the wrapped function. A returned error or a
// panic is recorded as a "throw" result and passed on to the caller.
//
// # Spies
//
// NewSpy always calls through to the wrapped function and records the
// arguments, timestamp and result of each call. MockReturnValue replaces
// the behaviour until RestoreBehaviour is called.
//
// # HTTP interception
//
// Intercept stands in for remote HTTP endpoints. In fetch mode it replaces
// http.DefaultTransport; in ajax mode it also starts an in-process server
// routed with chi. Only one interception can be active at a time:
//
//	h, err := mock.Intercept(mock.ModeFetch, mock.Route{
//		URL:          "https://api.example.com/users/*",
//		ResponseData: []any{map[string]any{"id": 1}},
//	})
//	if err != nil {
//		return err
//	}
//	defer h.Reset()
package mock
