package testfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"latte/pkg/expect"
	"latte/pkg/logging"
	"latte/pkg/mock"
	"latte/pkg/registry"
)

// fileRun executes the declarations of one file against a shared scope.
// Hooks write to the file scope; each test works on a copy of it.
type fileRun struct {
	file     *File
	scope    *Scope
	matchers *expect.Matchers
	client   *http.Client
}

func (r *fileRun) hook(steps []Step) registry.Body {
	return func(ctx context.Context) error {
		for i, step := range steps {
			if err := runStep(ctx, r.client, r.scope, step); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		return nil
	}
}

func (r *fileRun) test(t Test) registry.Body {
	return func(ctx context.Context) error {
		scope := r.scope.Clone()

		var handle *mock.Handle
		if t.Intercept != nil {
			h, err := startIntercept(scope, t.Intercept)
			if err != nil {
				return err
			}
			defer h.Reset()
			handle = h
			if u := h.URL(); u != "" {
				scope.Set("interceptURL", u)
			}
		}

		steps := t.Steps
		if t.Request != nil {
			steps = append([]Step{{Request: t.Request}}, steps...)
		}
		for i, step := range steps {
			if err := runStep(ctx, r.client, scope, step); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		if handle != nil {
			scope.Set("calls", callsValue(handle.Calls()))
		}
		for _, a := range t.Expect {
			if err := a.check(ctx, scope, r.matchers); err != nil {
				return err
			}
		}
		return nil
	}
}

func runStep(ctx context.Context, client *http.Client, scope *Scope, step Step) error {
	if step.Set != nil {
		for name, v := range step.Set {
			rendered, err := scope.Render(v)
			if err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
			scope.Set(name, rendered)
		}
	}
	if step.Request != nil {
		return doRequest(ctx, client, scope, step.Request)
	}
	return nil
}

func doRequest(ctx context.Context, client *http.Client, scope *Scope, req *Request) error {
	url, err := scope.RenderString(req.URL)
	if err != nil {
		return err
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := ""
	if req.Body != nil {
		rendered, err := scope.Render(req.Body)
		if err != nil {
			return err
		}
		if s, ok := rendered.(string); ok {
			body = strings.NewReader(s)
		} else {
			data, err := json.Marshal(rendered)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			body = bytes.NewReader(data)
			contentType = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		rendered, err := scope.RenderString(v)
		if err != nil {
			return err
		}
		httpReq.Header.Set(k, rendered)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response of %s %s: %w", method, url, err)
	}
	logging.Debug("Testfile", "%s %s -> %d", method, url, resp.StatusCode)

	headers := make(map[string]any, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		decoded = nil
	}
	name := req.As
	if name == "" {
		name = DefaultResponseVar
	}
	scope.Set(name, map[string]any{
		"status":  resp.StatusCode,
		"headers": headers,
		"body":    decoded,
		"text":    string(data),
	})
	return nil
}

func startIntercept(scope *Scope, in *Intercept) (*mock.Handle, error) {
	mode := in.Mode
	if mode == "" {
		mode = mock.ModeFetch
	}
	routes := make([]mock.Route, len(in.Routes))
	for i, route := range in.Routes {
		var err error
		if route.URL, err = scope.RenderString(route.URL); err != nil {
			return nil, err
		}
		if route.ResponseText, err = scope.RenderString(route.ResponseText); err != nil {
			return nil, err
		}
		if route.ResponseData, err = scope.Render(route.ResponseData); err != nil {
			return nil, err
		}
		routes[i] = route
	}
	h, err := mock.Intercept(mode, routes...)
	if err != nil {
		return nil, fmt.Errorf("failed to intercept requests: %w", err)
	}
	return h, nil
}

// callsValue turns recorded calls into plain maps so refs can walk them.
func callsValue(calls []mock.InterceptedCall) []any {
	out := make([]any, len(calls))
	for i, c := range calls {
		headers := make(map[string]any, len(c.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		out[i] = map[string]any{
			"url":     c.URL,
			"method":  c.Method,
			"headers": headers,
			"body":    c.Body,
			"time":    c.Time,
		}
	}
	return out
}

// received resolves the value under test.
func (a Assertion) received(scope *Scope) (any, error) {
	switch {
	case a.Ref != "":
		return scope.Lookup(a.Ref)
	case a.HTML != "":
		src, err := scope.RenderString(a.HTML)
		if err != nil {
			return nil, err
		}
		doc, err := expect.ParseHTML(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		if a.Select == "" {
			return doc, nil
		}
		if a.All {
			return expect.SelectAll(doc, a.Select), nil
		}
		if n := expect.Select(doc, a.Select); n != nil {
			return n, nil
		}
		return nil, nil
	case a.Render != "":
		return scope.RenderString(a.Render)
	default:
		return scope.Render(a.Value)
	}
}

// check runs the matcher. A failed match panics with the assertion
// failure like any other expectation; the error return is for values that
// could not be resolved.
func (a Assertion) check(ctx context.Context, scope *Scope, matchers *expect.Matchers) error {
	received, err := a.received(scope)
	if err != nil {
		return err
	}
	args := make([]any, len(a.Args))
	for i, arg := range a.Args {
		if args[i], err = scope.Render(arg); err != nil {
			return err
		}
	}
	e := expect.New(received, expect.WithContext(ctx), expect.WithMatchers(matchers))
	if a.Not {
		e = e.Not()
	}
	e.UseMessage(a.Matcher, a.Message, args...)
	return nil
}
