package testfile

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"latte/pkg/logging"
)

// ErrUnknownRef is returned when a ref path does not resolve.
var ErrUnknownRef = errors.New("unknown reference")

// templates caches parsed templates by source text
var templates, _ = lru.New[string, *template.Template](1024)

// Scope holds the variables visible to templates and refs: file vars,
// command-line vars and values stored by steps.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewScope merges the given maps. Later maps win.
func NewScope(layers ...map[string]any) *Scope {
	s := &Scope{vars: map[string]any{}}
	for _, l := range layers {
		maps.Copy(s.vars, l)
	}
	return s
}

// Set stores a variable.
func (s *Scope) Set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
	logging.Debug("Testfile", "Stored variable '%s': %v", name, v)
}

// Get returns a top-level variable.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Snapshot returns a shallow copy of the variables.
func (s *Scope) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}

// Clone returns an independent scope with the same variables.
func (s *Scope) Clone() *Scope {
	return NewScope(s.Snapshot())
}

// Lookup resolves a dotted path such as resp.body.items.0.id. Map keys and
// slice indexes are both path segments.
func (s *Scope) Lookup(path string) (any, error) {
	segments := strings.Split(path, ".")
	cur, ok := s.Get(segments[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, path)
	}
	for i, seg := range segments[1:] {
		next, ok := child(cur, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s (at %s)", ErrUnknownRef, path, strings.Join(segments[:i+2], "."))
		}
		cur = next
	}
	return cur, nil
}

func child(v any, seg string) (any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		item := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !item.IsValid() {
			return nil, false
		}
		return item.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// Render expands templates in every string inside v. A string that holds
// a template is re-decoded as YAML after rendering, so "{{ add 1 1 }}"
// becomes the integer 2; results that decode to a map or a list stay
// strings.
func (s *Scope) Render(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return s.renderString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			r, err := s.Render(item)
			if err != nil {
				return nil, fmt.Errorf("error in key '%s': %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			r, err := s.Render(item)
			if err != nil {
				return nil, fmt.Errorf("error at index %d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// RenderString expands a template and always returns text.
func (s *Scope) RenderString(src string) (string, error) {
	if !strings.Contains(src, "{{") {
		return src, nil
	}
	tmpl, err := parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.Snapshot()); err != nil {
		return "", fmt.Errorf("failed to render %q: %w", src, err)
	}
	return buf.String(), nil
}

func (s *Scope) renderString(src string) (any, error) {
	if !strings.Contains(src, "{{") {
		return src, nil
	}
	text, err := s.RenderString(src)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
		return text, nil
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return text, nil
	case nil:
		if strings.TrimSpace(text) == "" {
			return text, nil
		}
	}
	return decoded, nil
}

func parse(src string) (*template.Template, error) {
	if tmpl, ok := templates.Get(src); ok {
		return tmpl, nil
	}
	tmpl, err := template.New("value").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", src, err)
	}
	templates.Add(src, tmpl)
	return tmpl, nil
}
