package testfile

import (
	"time"

	"gopkg.in/yaml.v3"

	"latte/pkg/mock"
)

// File is one declarative test file.
type File struct {
	// Name replaces the relative path as the file key when set
	Name string         `yaml:"name,omitempty"`
	Vars map[string]any `yaml:"vars,omitempty"`

	BeforeAll  []Step `yaml:"beforeAll,omitempty"`
	AfterAll   []Step `yaml:"afterAll,omitempty"`
	BeforeEach []Step `yaml:"beforeEach,omitempty"`
	AfterEach  []Step `yaml:"afterEach,omitempty"`

	Describe []Suite `yaml:"describe,omitempty"`
	Tests    []Test  `yaml:"tests,omitempty"`

	// Key is the registry key and Path the resolved file path. Both are set
	// by the loader.
	Key  string `yaml:"-"`
	Path string `yaml:"-"`
}

// TestCount is the number of tests declared in the file.
func (f *File) TestCount() int {
	n := len(f.Tests)
	for _, s := range f.Describe {
		n += len(s.Tests)
	}
	return n
}

// Suite is a describe block.
type Suite struct {
	Name       string `yaml:"name"`
	BeforeAll  []Step `yaml:"beforeAll,omitempty"`
	AfterAll   []Step `yaml:"afterAll,omitempty"`
	BeforeEach []Step `yaml:"beforeEach,omitempty"`
	AfterEach  []Step `yaml:"afterEach,omitempty"`
	Tests      []Test `yaml:"tests,omitempty"`

	Position `yaml:"-"`
}

func (s *Suite) UnmarshalYAML(node *yaml.Node) error {
	type plain Suite
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Position = positionOf(node)
	return nil
}

// Test is one declared test. Request runs before Steps, and the assertions
// run last.
type Test struct {
	Name      string        `yaml:"name"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Intercept *Intercept    `yaml:"intercept,omitempty"`
	Request   *Request      `yaml:"request,omitempty"`
	Steps     []Step        `yaml:"steps,omitempty"`
	Expect    []Assertion   `yaml:"expect,omitempty"`

	Position `yaml:"-"`
}

func (t *Test) UnmarshalYAML(node *yaml.Node) error {
	type plain Test
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.Position = positionOf(node)
	return nil
}

// Step is a hook or test step. Exactly one of Set and Request is used.
type Step struct {
	Set     map[string]any `yaml:"set,omitempty"`
	Request *Request       `yaml:"request,omitempty"`
}

// Request is an HTTP call. The response is stored under As as
// {status, headers, body, text}; body holds the decoded JSON when the
// response parses as JSON.
type Request struct {
	Method  string            `yaml:"method,omitempty"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	// Body is sent as is when it is a string and as JSON otherwise
	Body any    `yaml:"body,omitempty"`
	As   string `yaml:"as,omitempty"`
}

// DefaultResponseVar holds the last response when a request has no As.
const DefaultResponseVar = "response"

// Intercept installs canned HTTP responses for the duration of a test.
type Intercept struct {
	Mode   mock.Mode    `yaml:"mode,omitempty"`
	Routes []mock.Route `yaml:"routes"`
}

// Assertion checks one received value with a named matcher. The received
// value comes from exactly one of Value, Ref, HTML and Render.
type Assertion struct {
	Value any    `yaml:"value,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
	HTML  string `yaml:"html,omitempty"`
	// Select narrows HTML to the first matching element, or to every match
	// when All is set
	Select string `yaml:"select,omitempty"`
	All    bool   `yaml:"all,omitempty"`
	Render string `yaml:"render,omitempty"`

	Matcher string `yaml:"matcher"`
	Args    []any  `yaml:"args,omitempty"`
	Not     bool   `yaml:"not,omitempty"`
	Message string `yaml:"message,omitempty"`

	// hasValue tells an explicit `value: null` from a missing value
	hasValue bool
	Position `yaml:"-"`
}

func (a *Assertion) UnmarshalYAML(node *yaml.Node) error {
	type plain Assertion
	if err := node.Decode((*plain)(a)); err != nil {
		return err
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "value" {
				a.hasValue = true
			}
		}
	}
	a.Position = positionOf(node)
	return nil
}

// Position is where a declaration starts in its file.
type Position struct {
	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

func positionOf(node *yaml.Node) Position {
	return Position{Line: node.Line, Column: node.Column}
}
