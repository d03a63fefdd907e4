package testfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/runner"
	"latte/pkg/logging"
	"latte/pkg/mock"
	"latte/pkg/registry"
)

func TestMain(m *testing.M) {
	logging.InitSilent()
	os.Exit(m.Run())
}

const mathFile = `vars:
  a: 1
  b: "{{ add .a 1 }}"
describe:
  - name: Math
    beforeEach:
      - set:
          c: "{{ add .a .b }}"
    tests:
      - name: adds
        expect:
          - ref: c
            matcher: toBe
            args: [3]
      - name: fails
        timeout: 50ms
        expect:
          - value: "{{ .a }}"
            matcher: toBe
            args: [5]
tests:
  - name: flat
    expect:
      - value: null
        matcher: toBeUndefined
      - value: latte
        not: true
        matcher: toBe
        args: [espresso]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runFiles(t *testing.T, l *Loader, paths ...string) *runner.RunResult {
	t.Helper()
	files, err := l.Load(context.Background(), paths)
	require.NoError(t, err)
	reg := registry.New()
	require.NoError(t, l.Register(reg, files))
	res, err := runner.NewSequential(runner.Options{
		Progress: runner.ProgressNone,
		Out:      &bytes.Buffer{},
		Clock:    mock.NewManualClock(time.Time{}),
	}).Run(context.Background(), reg.Queue())
	require.NoError(t, err)
	return res
}

func fileResult(t *testing.T, res *runner.RunResult, key string) *runner.FileResult {
	t.Helper()
	fr, ok := res.File(key)
	require.True(t, ok, "no result for %s", key)
	return fr
}

func TestDecode(t *testing.T) {
	f, err := Decode([]byte(mathFile), nil)
	require.NoError(t, err)

	require.Len(t, f.Describe, 1)
	assert.Equal(t, "Math", f.Describe[0].Name)
	assert.Equal(t, 5, f.Describe[0].Line)
	assert.Equal(t, 5, f.Describe[0].Column)

	fails := f.Describe[0].Tests[1]
	assert.Equal(t, "fails", fails.Name)
	assert.Equal(t, 50*time.Millisecond, fails.Timeout)
	assert.Equal(t, 15, fails.Line)
	assert.Equal(t, 9, fails.Column)

	require.Len(t, f.Tests, 1)
	assert.True(t, f.Tests[0].Expect[0].hasValue)
	assert.Nil(t, f.Tests[0].Expect[0].Value)
	assert.Equal(t, 3, f.TestCount())
}

func TestDecodeEmpty(t *testing.T) {
	f, err := Decode(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, f.TestCount())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "syntax",
			content: "tests: [",
			want:    "failed to parse YAML",
		},
		{
			name:    "unknown top-level field",
			content: "test:\n  - name: x\n",
			want:    "field test not found",
		},
		{
			name:    "test without name",
			content: "tests:\n  - expect: []\n",
			want:    "name is required",
		},
		{
			name:    "unknown matcher",
			content: "tests:\n  - name: x\n    expect:\n      - value: 1\n        matcher: toBeSomething\n",
			want:    `unknown matcher "toBeSomething"`,
		},
		{
			name:    "no received value",
			content: "tests:\n  - name: x\n    expect:\n      - matcher: toBe\n",
			want:    "needs one of value, ref, html or render",
		},
		{
			name:    "two received values",
			content: "tests:\n  - name: x\n    expect:\n      - value: 1\n        ref: a\n        matcher: toBe\n",
			want:    "exclusive",
		},
		{
			name:    "select without html",
			content: "tests:\n  - name: x\n    expect:\n      - ref: a\n        select: p\n        matcher: hasText\n",
			want:    "select needs html",
		},
		{
			name:    "empty step",
			content: "beforeAll:\n  - {}\n",
			want:    "beforeAll step 1: needs set or request",
		},
		{
			name:    "request without url",
			content: "describe:\n  - name: s\n    afterEach:\n      - request: {method: GET}\n",
			want:    `describe "s": afterEach step 1: request url is required`,
		},
		{
			name:    "bad intercept mode",
			content: "tests:\n  - name: x\n    intercept:\n      mode: xhr\n      routes: []\n",
			want:    `unknown intercept mode "xhr"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.content), nil)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoaderCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.test.yaml", mathFile)
	l := NewLoader(dir)

	first, err := l.Parse("a.test.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a.test.yaml", first.Key)
	assert.Equal(t, filepath.Join(dir, "a.test.yaml"), first.Path)

	again, err := l.Parse(filepath.Join(dir, "a.test.yaml"))
	require.NoError(t, err)
	assert.Same(t, first, again)

	l.Invalidate("a.test.yaml")
	reparsed, err := l.Parse("a.test.yaml")
	require.NoError(t, err)
	assert.NotSame(t, first, reparsed)

	// a size change is noticed without invalidation
	writeFile(t, dir, "a.test.yaml", "name: renamed\n"+mathFile)
	changed, err := l.Parse("a.test.yaml")
	require.NoError(t, err)
	assert.Equal(t, "renamed", changed.Key)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.test.yaml", "tests:\n  - name: b\n")
	writeFile(t, dir, "a/a.test.yaml", "tests:\n  - name: a\n")
	l := NewLoader(dir)

	files, err := l.Load(context.Background(), []string{"b.test.yaml", "a/a.test.yaml"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.test.yaml", files[0].Key)
	assert.Equal(t, "a/a.test.yaml", files[1].Key)

	_, err = l.Load(context.Background(), []string{"b.test.yaml", "missing.test.yaml"})
	assert.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, dir, "c.test.yaml", "name: same\n")
	writeFile(t, dir, "d.test.yaml", "name: same\n")
	_, err = l.Load(context.Background(), []string{"c.test.yaml", "d.test.yaml"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRegisterAndRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "math.test.yaml", mathFile)
	l := NewLoader(dir)

	res := runFiles(t, l, "math.test.yaml")
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 1, res.Failed)

	file := fileResult(t, res, "math.test.yaml")
	require.Len(t, file.Describes, 1)
	failed := file.Describes[0].Tests[1]
	assert.Equal(t, "fails", failed.Name)
	assert.False(t, failed.Result)
	assert.Equal(t, "Values are not equal: expected 5, received 1", failed.Message)
	assert.Equal(t, 15, failed.Location.Line)
	assert.Equal(t, filepath.Join(dir, "math.test.yaml"), failed.Location.File)
}

func TestCommandLineVarsWin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vars.test.yaml", `vars:
  env: dev
  url: "https://{{ .env }}.example.com"
tests:
  - name: uses the override
    expect:
      - ref: url
        matcher: toBe
        args: ["https://prod.example.com"]
`)
	l := NewLoader(dir, WithVars(map[string]any{"env": "prod"}))
	res := runFiles(t, l, "vars.test.yaml")
	assert.Equal(t, 1, res.Passed)
}

func TestInterceptedRequest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "api.test.yaml", `vars:
  base: https://api.example.com
tests:
  - name: lists users
    intercept:
      routes:
        - url: "{{ .base }}/users"
          responseData:
            - id: 1
              name: ada
            - id: 2
              name: grace
    request:
      url: "{{ .base }}/users"
      headers:
        X-Token: secret
      as: users
    steps:
      - set:
          first: "{{ (index .users.body 0).name }}"
    expect:
      - ref: users.status
        matcher: toBe
        args: [200]
      - ref: users.body
        matcher: hasLength
        args: [2]
      - ref: first
        matcher: toBe
        args: [ada]
      - ref: calls
        matcher: hasLength
        args: [1]
      - ref: calls.0.headers.X-Token
        matcher: toBe
        args: [secret]
  - name: post body is json
    intercept:
      routes:
        - url: /items
          method: POST
          status: 201
          responseText: created
    request:
      method: post
      url: https://api.example.com/items
      body: {name: "{{ .base }}"}
    expect:
      - ref: response.status
        matcher: toBe
        args: [201]
      - ref: response.text
        matcher: toBe
        args: [created]
      - ref: calls.0.body
        matcher: toContain
        args: ['"name":"https://api.example.com"']
`)
	res := runFiles(t, NewLoader(dir), "api.test.yaml")
	for _, tr := range fileResult(t, res, "api.test.yaml").Tests {
		assert.True(t, tr.Result, "%s: %s", tr.Name, tr.Message)
	}
	assert.Equal(t, 2, res.Passed)

	// the interception is gone after the test
	h, err := mock.Intercept(mock.ModeFetch)
	require.NoError(t, err)
	h.Reset()
}

func TestHTMLAndRenderAssertions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dom.test.yaml", `vars:
  title: Hello
tests:
  - name: markup
    expect:
      - html: '<div id="app"><p class="lead">{{ .title }}</p><p>two</p></div>'
        select: "#app .lead"
        matcher: hasClass
        args: [lead]
      - html: '<p>a</p><p>b</p>'
        select: p
        all: true
        matcher: hasLength
        args: [2]
      - render: '<ul><li>{{ .title }}</li><li>x</li></ul>'
        matcher: toHaveElementCount
        args: [li, 2]
      - render: '<h1>{{ .title }}</h1>'
        matcher: toRenderText
        args: [Hello]
`)
	res := runFiles(t, NewLoader(dir), "dom.test.yaml")
	tr := fileResult(t, res, "dom.test.yaml").Tests[0]
	assert.True(t, tr.Result, tr.Message)
}

func TestUnresolvedRefFailsTest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ref.test.yaml", "tests:\n  - name: x\n    expect:\n      - ref: nope.deeper\n        matcher: toBeDefined\n")
	res := runFiles(t, NewLoader(dir), "ref.test.yaml")
	tr := fileResult(t, res, "ref.test.yaml").Tests[0]
	assert.False(t, tr.Result)
	assert.Contains(t, tr.Message, "unknown reference: nope.deeper")
}
