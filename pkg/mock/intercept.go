package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gobwas/glob"

	"latte/pkg/logging"
)

// Mode selects how requests are intercepted.
type Mode string

const (
	// ModeFetch answers matching requests from http.DefaultTransport.
	ModeFetch Mode = "fetch"
	// ModeAjax serves matching requests from an in-process HTTP server.
	ModeAjax Mode = "ajax"
)

var (
	ErrInterceptActive = errors.New("an interception is already active")
	ErrUnknownMode     = errors.New("unknown interception mode")
)

// originalURLHeader carries the requested URL when ajax mode redirects a
// request to the stand-in server.
const originalURLHeader = "X-Latte-Original-Url"

// Route is one canned response.
type Route struct {
	// URL is an exact URL or path, a wildcard pattern such as
	// https://api.example.com/users/*, or a /regexp/.
	URL string `yaml:"url" json:"url"`
	// Regexp takes precedence over URL when set.
	Regexp       *regexp.Regexp    `yaml:"-" json:"-"`
	Method       string            `yaml:"method,omitempty" json:"method,omitempty"`
	Status       int               `yaml:"status,omitempty" json:"status,omitempty"`
	ResponseData any               `yaml:"responseData,omitempty" json:"responseData,omitempty"`
	ResponseText string            `yaml:"responseText,omitempty" json:"responseText,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	// Error fails the request instead of answering it.
	Error string        `yaml:"error,omitempty" json:"error,omitempty"`
	Delay time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
}

// InterceptedCall is a recorded request.
type InterceptedCall struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
	Time    time.Time         `json:"time"`
}

type compiledRoute struct {
	Route
	match func(string) bool
}

func compileRoute(r Route) (*compiledRoute, error) {
	c := &compiledRoute{Route: r}
	switch {
	case r.Regexp != nil:
		c.match = r.Regexp.MatchString
	case isRegexpLiteral(r.URL):
		re, err := regexp.Compile(r.URL[1 : len(r.URL)-1])
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.URL, err)
		}
		c.match = re.MatchString
	case strings.ContainsAny(r.URL, "*?[{"):
		g, err := glob.Compile(r.URL, '/')
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.URL, err)
		}
		c.match = g.Match
	case r.URL == "":
		return nil, fmt.Errorf("route without url")
	default:
		want := r.URL
		c.match = func(s string) bool { return s == want }
	}
	return c, nil
}

// isRegexpLiteral tells /api/v[0-9]+/ from a plain path like /users/.
func isRegexpLiteral(s string) bool {
	return len(s) > 2 && s[0] == '/' && s[len(s)-1] == '/' &&
		strings.ContainsAny(s[1:len(s)-1], `^$.+?()[]{}|\`)
}

func (c *compiledRoute) accepts(method string, u *url.URL) bool {
	if c.Method != "" && !strings.EqualFold(c.Method, method) {
		return false
	}
	return c.match(u.String()) || c.match(u.RequestURI()) || c.match(u.Path)
}

func (c *compiledRoute) write(w http.ResponseWriter) {
	for k, v := range c.Headers {
		w.Header().Set(k, v)
	}
	var body []byte
	if c.ResponseData != nil {
		b, err := json.Marshal(c.ResponseData)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body = b
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
	} else {
		body = []byte(c.ResponseText)
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
	}
	status := c.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Handle controls an active interception.
type Handle struct {
	mode     Mode
	routes   []*compiledRoute
	clock    Clock
	original http.RoundTripper
	server   *httptest.Server

	mu    sync.Mutex
	calls []InterceptedCall
	reset bool
}

var active struct {
	sync.Mutex
	handle *Handle
}

// Intercept installs routes for the given mode. It fails with
// ErrInterceptActive while another handle has not been Reset.
func Intercept(mode Mode, routes ...Route) (*Handle, error) {
	if mode != ModeFetch && mode != ModeAjax {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	h := &Handle{mode: mode, clock: RealClock{}}
	for _, r := range routes {
		c, err := compileRoute(r)
		if err != nil {
			return nil, err
		}
		h.routes = append(h.routes, c)
	}

	active.Lock()
	defer active.Unlock()
	if active.handle != nil {
		return nil, ErrInterceptActive
	}

	h.original = http.DefaultTransport
	if mode == ModeAjax {
		h.server = httptest.NewServer(h.router())
	}
	http.DefaultTransport = h
	active.handle = h
	logging.Debug("Intercept", "installed %d routes in %s mode", len(h.routes), mode)
	return h, nil
}

func (h *Handle) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.HandleFunc("/*", h.serve)
	return r
}

func (h *Handle) serve(w http.ResponseWriter, req *http.Request) {
	u := h.requestedURL(req)
	route := h.find(req.Method, u)
	if route == nil {
		http.NotFound(w, req)
		return
	}
	h.record(req, u)
	if err := sleep(req, route.Delay); err != nil {
		return
	}
	if route.Error != "" {
		// drops the connection so the client sees a network error
		panic(http.ErrAbortHandler)
	}
	route.write(w)
}

func (h *Handle) requestedURL(req *http.Request) *url.URL {
	if raw := req.Header.Get(originalURLHeader); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			return u
		}
	}
	u := *req.URL
	u.Scheme = "http"
	u.Host = req.Host
	return &u
}

// RoundTrip answers matching requests and passes the rest to the transport
// that was installed before Intercept.
func (h *Handle) RoundTrip(req *http.Request) (*http.Response, error) {
	if h.server != nil {
		return h.redirect(req)
	}
	route := h.find(req.Method, req.URL)
	if route == nil {
		return h.original.RoundTrip(req)
	}
	h.record(req, req.URL)
	if err := sleep(req, route.Delay); err != nil {
		return nil, err
	}
	if route.Error != "" {
		return nil, errors.New(route.Error)
	}
	rec := httptest.NewRecorder()
	route.write(rec)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// redirect sends matching requests for other hosts to the stand-in server.
func (h *Handle) redirect(req *http.Request) (*http.Response, error) {
	server, _ := url.Parse(h.server.URL)
	if req.URL.Host == server.Host || h.find(req.Method, req.URL) == nil {
		return h.original.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.Header.Set(originalURLHeader, req.URL.String())
	out.URL.Scheme = server.Scheme
	out.URL.Host = server.Host
	out.Host = server.Host
	return h.original.RoundTrip(out)
}

func (h *Handle) find(method string, u *url.URL) *compiledRoute {
	for _, r := range h.routes {
		if r.accepts(method, u) {
			return r
		}
	}
	return nil
}

func (h *Handle) record(req *http.Request, u *url.URL) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	headers := make(map[string]string, len(req.Header))
	for k := range req.Header {
		if k != originalURLHeader {
			headers[k] = req.Header.Get(k)
		}
	}
	call := InterceptedCall{
		URL:     u.String(),
		Method:  req.Method,
		Headers: headers,
		Body:    string(body),
		Time:    h.clock.Now(),
	}
	h.mu.Lock()
	h.calls = append(h.calls, call)
	h.mu.Unlock()
	logging.Debug("Intercept", "%s %s", call.Method, call.URL)
}

func sleep(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

// Mode reports how the handle intercepts requests.
func (h *Handle) Mode() Mode {
	return h.mode
}

// URL is the stand-in server address in ajax mode and empty in fetch mode.
func (h *Handle) URL() string {
	if h.server == nil {
		return ""
	}
	return h.server.URL
}

// Calls returns the recorded requests, oldest first.
func (h *Handle) Calls() []InterceptedCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]InterceptedCall, len(h.calls))
	copy(out, h.calls)
	return out
}

// Clear forgets the recorded requests.
func (h *Handle) Clear() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// Reset restores the original transport and stops the stand-in server. It
// is safe to call more than once.
func (h *Handle) Reset() {
	active.Lock()
	defer active.Unlock()
	if h.reset {
		return
	}
	h.reset = true
	http.DefaultTransport = h.original
	if h.server != nil {
		h.server.Close()
	}
	if active.handle == h {
		active.handle = nil
	}
	logging.Debug("Intercept", "restored transport after %s mode", h.mode)
}
