package expect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

// Renderer mounts a component and returns its rendered tree.
type Renderer interface {
	Render(ctx context.Context, component any) (*Rendered, error)
}

// Component is anything that can produce markup.
type Component interface {
	Render() (string, error)
}

// EventListener receives events fired on a node or one of its descendants.
type EventListener func(target *html.Node, data any)

// Rendered is a mounted component.
type Rendered struct {
	// Container is the detached <div> the markup was mounted into.
	Container *html.Node

	mu        sync.Mutex
	listeners map[*html.Node]map[string][]EventListener
	unmount   func()
	rerender  func() (*html.Node, error)
}

// NewRendered wraps an already built container. unmount and rerender may be
// nil.
func NewRendered(container *html.Node, unmount func(), rerender func() (*html.Node, error)) *Rendered {
	return &Rendered{
		Container: container,
		listeners: map[*html.Node]map[string][]EventListener{},
		unmount:   unmount,
		rerender:  rerender,
	}
}

// Unmount detaches the container and drops all listeners.
func (r *Rendered) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unmount != nil {
		r.unmount()
	}
	r.listeners = map[*html.Node]map[string][]EventListener{}
	r.Container = nil
}

// Rerender renders the component again and replaces the container.
// Listeners are dropped since their nodes no longer exist.
func (r *Rendered) Rerender() error {
	if r.rerender == nil {
		return nil
	}
	c, err := r.rerender()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.Container = c
	r.listeners = map[*html.Node]map[string][]EventListener{}
	r.mu.Unlock()
	return nil
}

func (r *Rendered) Query(selector string) *html.Node {
	return Select(r.Container, selector)
}

func (r *Rendered) QueryAll(selector string) []*html.Node {
	return SelectAll(r.Container, selector)
}

// GetByText returns the innermost element whose text contains text.
func (r *Rendered) GetByText(text string) *html.Node {
	var found *html.Node
	for _, n := range descendants(r.Container) {
		if strings.Contains(TextContent(n), text) {
			found = n
		}
	}
	return found
}

// AddEventListener registers fn for event on node.
func (r *Rendered) AddEventListener(node *html.Node, event string, fn EventListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listeners[node] == nil {
		r.listeners[node] = map[string][]EventListener{}
	}
	r.listeners[node][event] = append(r.listeners[node][event], fn)
}

// FireEvent dispatches event on node and bubbles it through the ancestors.
// It reports whether any listener ran.
func (r *Rendered) FireEvent(node *html.Node, event string, data any) bool {
	var chain []EventListener
	r.mu.Lock()
	for n := node; n != nil; n = n.Parent {
		chain = append(chain, r.listeners[n][event]...)
	}
	r.mu.Unlock()
	for _, fn := range chain {
		fn(node, data)
	}
	return len(chain) > 0
}

// HTMLRenderer renders strings, func() (string, error) values and
// Components into a detached container.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(ctx context.Context, component any) (*Rendered, error) {
	build := func() (*html.Node, error) {
		markup, err := markupOf(component)
		if err != nil {
			return nil, err
		}
		return ParseFragment(markup)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	container, err := build()
	if err != nil {
		return nil, err
	}
	return NewRendered(container, nil, build), nil
}

func markupOf(component any) (string, error) {
	switch c := component.(type) {
	case string:
		return c, nil
	case []byte:
		return string(c), nil
	case func() (string, error):
		if c == nil {
			break
		}
		return c()
	case func() string:
		if c == nil {
			break
		}
		return c(), nil
	case Component:
		if isNil(c) {
			break
		}
		return c.Render()
	}
	return "", fmt.Errorf("%w: %T", ErrNotRenderable, component)
}

// WithRenderer sets the renderer used by the render matchers.
func WithRenderer(r Renderer) Option {
	return func(e *Expectation) {
		if r != nil {
			e.renderer = r
		}
	}
}

// render mounts the received component or raises a precondition error.
func (e *Expectation) render(matcher string) *Rendered {
	r, err := e.renderer.Render(e.ctx, e.received)
	if err != nil {
		e.Fail(matcher, err, nil)
	}
	return r
}

// ToRenderWithoutError asserts that rendering the received component does
// not fail.
func (e *Expectation) ToRenderWithoutError(msg ...string) *Expectation {
	var message any
	r, err := e.safeRender()
	if err == nil {
		r.Unmount()
	} else {
		message = err.Error()
	}
	return e.Assert(err == nil, msg, "toRenderWithoutError", nil, message)
}

func (e *Expectation) safeRender() (r *Rendered, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return e.renderer.Render(e.ctx, e.received)
}

func (e *Expectation) ToRenderText(text string, msg ...string) *Expectation {
	r := e.render("toRenderText")
	defer r.Unmount()
	return e.Assert(r.GetByText(text) != nil, msg, "toRenderText", text, nil)
}

func (e *Expectation) ToContainElement(selector string, msg ...string) *Expectation {
	e.selector("toContainElement", selector)
	r := e.render("toContainElement")
	defer r.Unmount()
	return e.Assert(r.Query(selector) != nil, msg, "toContainElement", selector, nil)
}

func (e *Expectation) ToHaveElementCount(selector string, count int, msg ...string) *Expectation {
	e.selector("toHaveElementCount", selector)
	r := e.render("toHaveElementCount")
	defer r.Unmount()
	actual := len(r.QueryAll(selector))
	return e.Assert(actual == count, msg, "toHaveElementCount",
		fmt.Sprintf("Expected %d elements", count), fmt.Sprintf("Found %d elements", actual))
}

// ToTriggerEvent mounts the component, attaches callback to the first node
// matching selector, fires event with data and asserts that the listener
// ran. callback may be nil.
func (e *Expectation) ToTriggerEvent(selector, event string, callback EventListener, data any, msg ...string) *Expectation {
	e.selector("toTriggerEvent", selector)
	r := e.render("toTriggerEvent")
	defer r.Unmount()
	node := r.Query(selector)
	if node == nil {
		e.failAlways(fmt.Sprintf("Element by selector %q not found", selector), "toTriggerEvent", event, nil)
	}
	called := false
	r.AddEventListener(node, event, func(target *html.Node, data any) {
		called = true
		if callback != nil {
			callback(target, data)
		}
	})
	r.FireEvent(node, event, data)
	return e.Assert(called, msg, "toTriggerEvent", event, nil)
}

// Polling defaults for ToEventuallyContainText.
const (
	DefaultEventuallyTimeout  = time.Second
	DefaultEventuallyInterval = 50 * time.Millisecond
)

// ToEventuallyContainText re-renders the component until its text contains
// text or the timeout elapses. A zero timeout uses the default.
func (e *Expectation) ToEventuallyContainText(text string, timeout time.Duration, msg ...string) *Expectation {
	if timeout <= 0 {
		timeout = DefaultEventuallyTimeout
	}
	r := e.render("toEventuallyContainText")
	defer r.Unmount()

	ctx, cancel := context.WithTimeout(e.ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(DefaultEventuallyInterval)
	defer ticker.Stop()

	found := strings.Contains(TextContent(r.Container), text)
	for !found {
		select {
		case <-ctx.Done():
			return e.Assert(false, msg, "toEventuallyContainText", text, TextContent(r.Container))
		case <-ticker.C:
			if err := r.Rerender(); err != nil {
				e.Fail("toEventuallyContainText", err, text)
			}
			found = strings.Contains(TextContent(r.Container), text)
		}
	}
	return e.Assert(true, msg, "toEventuallyContainText", text)
}
