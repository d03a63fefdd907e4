package registry

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrNoCurrentFile is raised when a suite, test or hook is registered
// before SetCurrentFile.
var ErrNoCurrentFile = errors.New("no current file: call SetCurrentFile before registering tests")

// Body is a test or hook body. A returned error fails the test; so does a
// panic.
type Body func(ctx context.Context) error

// Location points at the declaration of a suite or test.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Hooks are the lifecycle hooks of a suite or of a file's flat tests, in
// declaration order.
type Hooks struct {
	BeforeAll  []Body
	AfterAll   []Body
	BeforeEach []Body
	AfterEach  []Body
}

// TestCase is one registered test.
type TestCase struct {
	Name     string
	Fn       Body
	Location Location
	// Timeout overrides the run's per-test timeout when positive.
	Timeout time.Duration

	owner *Hooks
}

// BeforeEach returns the beforeEach hooks of the suite or file the test
// belongs to, as they stand now.
func (t *TestCase) BeforeEach() []Body {
	if t.owner == nil {
		return nil
	}
	return t.owner.BeforeEach
}

// AfterEach returns the afterEach hooks of the owning suite or file.
func (t *TestCase) AfterEach() []Body {
	if t.owner == nil {
		return nil
	}
	return t.owner.AfterEach
}

// Suite is a named group of tests sharing hooks.
type Suite struct {
	Name     string
	Tests    []*TestCase
	Location Location
	Hooks
}

// FileEntry holds everything registered for one file.
type FileEntry struct {
	Key       string
	Path      string
	Describes []*Suite
	Tests     []*TestCase
	// Hooks declared outside any suite. They wrap the flat tests.
	Hooks
}

// Registry is the registration queue: an ordered mapping from file key to
// its entry, plus the current file and suite cursors used while
// declaring.
type Registry struct {
	mu           sync.Mutex
	order        []string
	entries      map[string]*FileEntry
	currentFile  *FileEntry
	currentSuite *Suite
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]*FileEntry{}}
}

// SetCurrentFile starts a fresh entry for file and resets the suite
// cursor. An existing entry with the same key is replaced in place, so a
// reloaded file keeps its position.
func (r *Registry) SetCurrentFile(file string, path ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := &FileEntry{Key: file, Path: file}
	if len(path) > 0 && path[0] != "" {
		entry.Path = path[0]
	}
	if _, ok := r.entries[file]; !ok {
		r.order = append(r.order, file)
	}
	r.entries[file] = entry
	r.currentFile = entry
	r.currentSuite = nil
}

// AddDescribe appends a suite to the current file. Its tests take their
// each-hooks from the suite.
func (r *Registry) AddDescribe(s *Suite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentFile == nil {
		return ErrNoCurrentFile
	}
	for _, t := range s.Tests {
		if t.owner == nil {
			t.owner = &s.Hooks
		}
	}
	r.currentFile.Describes = append(r.currentFile.Describes, s)
	return nil
}

// AddTest appends a flat test to the current file.
func (r *Registry) AddTest(t *TestCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentFile == nil {
		return ErrNoCurrentFile
	}
	if t.owner == nil {
		t.owner = &r.currentFile.Hooks
	}
	r.currentFile.Tests = append(r.currentFile.Tests, t)
	return nil
}

// ClearQueue drops every entry and both cursors.
func (r *Registry) ClearQueue() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.entries = map[string]*FileEntry{}
	r.currentFile = nil
	r.currentSuite = nil
}

// Remove drops the entry for file, if any.
func (r *Registry) Remove(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[file]; !ok {
		return
	}
	delete(r.entries, file)
	for i, k := range r.order {
		if k == file {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	if r.currentFile != nil && r.currentFile.Key == file {
		r.currentFile = nil
		r.currentSuite = nil
	}
}

// Queue returns the entries in insertion order. Runners must treat them as
// read-only.
func (r *Registry) Queue() []*FileEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FileEntry, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k])
	}
	return out
}

// Entry returns the entry registered for file.
func (r *Registry) Entry(file string) (*FileEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[file]
	return e, ok
}

// Len returns the number of file entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// File registers body's declarations under file.
func (r *Registry) File(file, path string, body func()) {
	r.SetCurrentFile(file, path)
	if body != nil {
		body()
	}
}

// Describe declares a suite. Tests and hooks declared inside body attach
// to it. A nested Describe registers a separate suite named after both
// levels; it shares no tests or hooks with the outer one.
func (r *Registry) Describe(name string, body func()) *Suite {
	return r.describe(name, body, 3)
}

// Suite is an alias of Describe.
func (r *Registry) Suite(name string, body func()) *Suite {
	return r.describe(name, body, 3)
}

func (r *Registry) describe(name string, body func(), skip int) *Suite {
	r.mu.Lock()
	if r.currentFile == nil {
		r.mu.Unlock()
		panic(ErrNoCurrentFile)
	}
	parent := r.currentSuite
	if parent != nil {
		name = strings.TrimSpace(parent.Name + " " + name)
	}
	s := &Suite{Name: name, Location: caller(skip)}
	r.currentFile.Describes = append(r.currentFile.Describes, s)
	r.currentSuite = s
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.currentSuite = parent
		r.mu.Unlock()
	}()
	if body != nil {
		body()
	}
	return s
}

// It declares a test in the current suite, or a flat test of the current
// file outside any suite.
func (r *Registry) It(name string, fn Body) *TestCase {
	return r.it(name, fn, 3)
}

// Test is an alias of It.
func (r *Registry) Test(name string, fn Body) *TestCase {
	return r.it(name, fn, 3)
}

func (r *Registry) it(name string, fn Body, skip int) *TestCase {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentFile == nil {
		panic(ErrNoCurrentFile)
	}
	t := &TestCase{Name: name, Fn: fn, Location: caller(skip)}
	if r.currentSuite != nil {
		t.owner = &r.currentSuite.Hooks
		r.currentSuite.Tests = append(r.currentSuite.Tests, t)
	} else {
		t.owner = &r.currentFile.Hooks
		r.currentFile.Tests = append(r.currentFile.Tests, t)
	}
	return t
}

func (r *Registry) BeforeAll(fn Body) {
	r.hook(func(h *Hooks) { h.BeforeAll = append(h.BeforeAll, fn) })
}

func (r *Registry) AfterAll(fn Body) {
	r.hook(func(h *Hooks) { h.AfterAll = append(h.AfterAll, fn) })
}

func (r *Registry) BeforeEach(fn Body) {
	r.hook(func(h *Hooks) { h.BeforeEach = append(h.BeforeEach, fn) })
}

func (r *Registry) AfterEach(fn Body) {
	r.hook(func(h *Hooks) { h.AfterEach = append(h.AfterEach, fn) })
}

func (r *Registry) hook(add func(*Hooks)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.currentSuite != nil:
		add(&r.currentSuite.Hooks)
	case r.currentFile != nil:
		add(&r.currentFile.Hooks)
	default:
		panic(ErrNoCurrentFile)
	}
}

func caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{}
	}
	return Location{File: file, Line: line, Column: 1}
}
