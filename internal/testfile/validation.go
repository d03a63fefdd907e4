package testfile

import (
	"errors"
	"fmt"

	"latte/pkg/expect"
	"latte/pkg/mock"
)

// ErrInvalid marks a file that parsed but does not describe runnable tests.
var ErrInvalid = errors.New("invalid test file")

// validateFile checks that every declaration can run.
func validateFile(f *File, matchers *expect.Matchers) error {
	if err := validateHooks(f.BeforeAll, f.AfterAll, f.BeforeEach, f.AfterEach); err != nil {
		return err
	}

	for i, s := range f.Describe {
		if s.Name == "" {
			return fmt.Errorf("describe %d (line %d): name is required", i+1, s.Line)
		}
		if err := validateHooks(s.BeforeAll, s.AfterAll, s.BeforeEach, s.AfterEach); err != nil {
			return fmt.Errorf("describe %q: %w", s.Name, err)
		}
		for _, t := range s.Tests {
			if err := validateTest(t, matchers); err != nil {
				return fmt.Errorf("describe %q: %w", s.Name, err)
			}
		}
	}

	for _, t := range f.Tests {
		if err := validateTest(t, matchers); err != nil {
			return err
		}
	}
	return nil
}

func validateHooks(beforeAll, afterAll, beforeEach, afterEach []Step) error {
	hooks := []struct {
		kind  string
		steps []Step
	}{
		{"beforeAll", beforeAll},
		{"afterAll", afterAll},
		{"beforeEach", beforeEach},
		{"afterEach", afterEach},
	}
	for _, h := range hooks {
		if err := validateSteps(h.kind, h.steps); err != nil {
			return err
		}
	}
	return nil
}

func validateTest(t Test, matchers *expect.Matchers) error {
	if t.Name == "" {
		return fmt.Errorf("test at line %d: name is required", t.Line)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("test %q: timeout cannot be negative", t.Name)
	}
	if t.Intercept != nil {
		switch t.Intercept.Mode {
		case "", mock.ModeFetch, mock.ModeAjax:
		default:
			return fmt.Errorf("test %q: unknown intercept mode %q", t.Name, t.Intercept.Mode)
		}
	}
	if t.Request != nil {
		if err := validateRequest(t.Request); err != nil {
			return fmt.Errorf("test %q: %w", t.Name, err)
		}
	}
	if err := validateSteps("steps", t.Steps); err != nil {
		return fmt.Errorf("test %q: %w", t.Name, err)
	}
	for i, a := range t.Expect {
		if err := validateAssertion(a, matchers); err != nil {
			return fmt.Errorf("test %q: expect %d (line %d): %w", t.Name, i+1, a.Line, err)
		}
	}
	return nil
}

func validateSteps(kind string, steps []Step) error {
	for i, step := range steps {
		switch {
		case step.Set != nil && step.Request != nil:
			return fmt.Errorf("%s step %d: set and request are exclusive", kind, i+1)
		case step.Set == nil && step.Request == nil:
			return fmt.Errorf("%s step %d: needs set or request", kind, i+1)
		case step.Request != nil:
			if err := validateRequest(step.Request); err != nil {
				return fmt.Errorf("%s step %d: %w", kind, i+1, err)
			}
		}
	}
	return nil
}

func validateRequest(r *Request) error {
	if r.URL == "" {
		return errors.New("request url is required")
	}
	return nil
}

func validateAssertion(a Assertion, matchers *expect.Matchers) error {
	if a.Matcher == "" {
		return errors.New("matcher is required")
	}
	if _, ok := matchers.Lookup(a.Matcher); !ok {
		return fmt.Errorf("unknown matcher %q", a.Matcher)
	}
	sources := 0
	for _, set := range []bool{a.hasValue, a.Ref != "", a.HTML != "", a.Render != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return errors.New("needs one of value, ref, html or render")
	case sources > 1:
		return errors.New("value, ref, html and render are exclusive")
	}
	if a.Select != "" && a.HTML == "" {
		return errors.New("select needs html")
	}
	if a.Select != "" {
		if _, err := expect.ParseSelector(a.Select); err != nil {
			return err
		}
	}
	return nil
}
