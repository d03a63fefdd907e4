package testfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"latte/pkg/expect"
	"latte/pkg/logging"
	"latte/pkg/registry"
)

// DefaultCacheSize bounds the number of parsed files kept between runs.
const DefaultCacheSize = 512

// Loader parses test files below a root directory and registers them.
// Parsed files are cached by resolved path until their modification time
// or size changes or they are invalidated.
type Loader struct {
	root     string
	vars     map[string]any
	matchers *expect.Matchers
	client   *http.Client
	cache    *lru.Cache[string, cachedFile]
}

type cachedFile struct {
	modTime time.Time
	size    int64
	file    *File
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithVars sets variables that override the vars of every file.
func WithVars(vars map[string]any) LoaderOption {
	return func(l *Loader) {
		l.vars = vars
	}
}

// WithMatchers sets the matcher registry assertions are resolved against.
func WithMatchers(m *expect.Matchers) LoaderOption {
	return func(l *Loader) {
		if m != nil {
			l.matchers = m
		}
	}
}

// WithHTTPClient sets the client used by request steps.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// NewLoader returns a loader for files below root.
func NewLoader(root string, opts ...LoaderOption) *Loader {
	cache, _ := lru.New[string, cachedFile](DefaultCacheSize)
	l := &Loader{
		root:     root,
		matchers: expect.Builtins(),
		client:   http.DefaultClient,
		cache:    cache,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, filepath.FromSlash(path))
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Parse reads and validates one file, given relative to the root or as an
// absolute path.
func (l *Loader) Parse(path string) (*File, error) {
	abs := l.resolve(path)
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file %s: %w", path, err)
	}
	if c, ok := l.cache.Get(abs); ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		logging.Debug("Testfile", "Using cached %s", path)
		return c.file, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file %s: %w", path, err)
	}
	f, err := Decode(data, l.matchers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = abs
	f.Key = f.Name
	if f.Key == "" {
		if rel, err := filepath.Rel(l.root, abs); err == nil && filepath.IsLocal(rel) {
			f.Key = filepath.ToSlash(rel)
		} else {
			f.Key = filepath.ToSlash(abs)
		}
	}
	l.cache.Add(abs, cachedFile{modTime: info.ModTime(), size: info.Size(), file: f})
	logging.Debug("Testfile", "Parsed %s: %d tests", path, f.TestCount())
	return f, nil
}

// Invalidate drops cached entries for the given paths.
func (l *Loader) Invalidate(paths ...string) {
	for _, p := range paths {
		if l.cache.Remove(l.resolve(p)) {
			logging.Debug("Testfile", "Invalidated %s", p)
		}
	}
}

// Load parses files concurrently and returns them in the given order.
func (l *Loader) Load(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := l.Parse(p)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(files))
	for _, f := range files {
		if prev, ok := seen[f.Key]; ok {
			return nil, fmt.Errorf("%w: %s and %s both use the name %q", ErrInvalid, prev, f.Path, f.Key)
		}
		seen[f.Key] = f.Path
	}
	return files, nil
}

// Register declares the files in reg. Each file gets a fresh variable
// scope, so registering again resets state left by an earlier run.
func (l *Loader) Register(reg *registry.Registry, files []*File) error {
	for _, f := range files {
		scope, err := l.fileScope(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
		run := &fileRun{file: f, scope: scope, matchers: l.matchers, client: l.client}

		reg.File(f.Key, f.Path, func() {
			addHooks(reg, run, f.BeforeAll, f.AfterAll, f.BeforeEach, f.AfterEach)
			for _, s := range f.Describe {
				suite := reg.Describe(s.Name, func() {
					addHooks(reg, run, s.BeforeAll, s.AfterAll, s.BeforeEach, s.AfterEach)
					for _, t := range s.Tests {
						declare(reg, run, t)
					}
				})
				suite.Location = run.location(s.Position)
			}
			for _, t := range f.Tests {
				declare(reg, run, t)
			}
		})
	}
	return nil
}

// fileScope renders the file's vars in key order. Command-line vars win
// over file vars and are visible while rendering them.
func (l *Loader) fileScope(f *File) (*Scope, error) {
	scope := NewScope(l.vars)
	keys := make([]string, 0, len(f.Vars))
	for k := range f.Vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := l.vars[k]; ok {
			continue
		}
		v, err := scope.Render(f.Vars[k])
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", k, err)
		}
		scope.Set(k, v)
	}
	return scope, nil
}

func addHooks(reg *registry.Registry, run *fileRun, beforeAll, afterAll, beforeEach, afterEach []Step) {
	if len(beforeAll) > 0 {
		reg.BeforeAll(run.hook(beforeAll))
	}
	if len(afterAll) > 0 {
		reg.AfterAll(run.hook(afterAll))
	}
	if len(beforeEach) > 0 {
		reg.BeforeEach(run.hook(beforeEach))
	}
	if len(afterEach) > 0 {
		reg.AfterEach(run.hook(afterEach))
	}
}

func declare(reg *registry.Registry, run *fileRun, t Test) {
	tc := reg.It(t.Name, run.test(t))
	tc.Location = run.location(t.Position)
	tc.Timeout = t.Timeout
}

func (r *fileRun) location(p Position) registry.Location {
	return registry.Location{File: r.file.Path, Line: p.Line, Column: p.Column}
}

// Decode parses and validates a test file.
func Decode(data []byte, matchers *expect.Matchers) (*File, error) {
	if matchers == nil {
		matchers = expect.Builtins()
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateFile(&f, matchers); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &f, nil
}
