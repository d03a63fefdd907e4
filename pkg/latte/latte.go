package latte

import (
	"context"
	"io"
	"testing"
	"time"

	"latte/internal/runner"
	"latte/pkg/expect"
	"latte/pkg/registry"
)

// Result types of a run.
type (
	Result      = runner.RunResult
	FileResult  = runner.FileResult
	SuiteResult = runner.SuiteResult
	TestResult  = runner.TestResult
)

type settings struct {
	opts     runner.Options
	parallel bool
}

// Option configures Run.
type Option func(*settings)

// WithParallel runs files on workers concurrent workers.
func WithParallel(workers int) Option {
	return func(s *settings) {
		s.parallel = true
		s.opts.MaxWorkers = workers
	}
}

// WithFilter runs only tests whose name contains test, in suites whose
// name contains suite, and skips tests whose name contains skip. Empty
// values do not filter.
func WithFilter(test, suite, skip string) Option {
	return func(s *settings) {
		s.opts.Test = test
		s.opts.Suite = suite
		s.opts.Skip = skip
	}
}

// WithOutput writes verbose runner output to w.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.opts.Out = w
		s.opts.Verbose = true
	}
}

// WithTestTimeout fails tests that run longer than d.
func WithTestTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.opts.TestTimeout = d
	}
}

// WithShowStack records failure stacks.
func WithShowStack() Option {
	return func(s *settings) {
		s.opts.ShowStack = true
	}
}

// Run executes every file queued in reg and returns the result tree with
// the number of failed tests. The error is non-nil only when ctx was
// cancelled before every file ran.
func Run(ctx context.Context, reg *registry.Registry, opts ...Option) (*Result, int, error) {
	s := settings{opts: runner.Options{Progress: runner.ProgressNone}}
	for _, opt := range opts {
		opt(&s)
	}
	res, err := runner.New(s.opts, false, s.parallel).Run(ctx, reg.Queue())
	if res == nil {
		return nil, 0, err
	}
	return res, res.Failed, err
}

// RunT runs reg and mirrors the result tree as subtests of t: one per
// file, suite and test. Failures are reported with their expected and
// received values; skipped tests are skipped.
func RunT(t *testing.T, reg *registry.Registry, opts ...Option) *Result {
	t.Helper()
	res, _, err := Run(t.Context(), reg, opts...)
	if err != nil {
		t.Fatalf("run interrupted: %v", err)
	}
	for _, fr := range res.Files {
		t.Run(fr.File, func(t *testing.T) {
			for _, sr := range fr.Describes {
				t.Run(sr.Name, func(t *testing.T) {
					for _, tr := range sr.Tests {
						report(t, tr)
					}
				})
			}
			for _, tr := range fr.Tests {
				report(t, tr)
			}
		})
	}
	return res
}

func report(t *testing.T, tr TestResult) {
	t.Run(tr.Name, func(t *testing.T) {
		switch {
		case tr.Skipped:
			t.Skip(tr.Message)
		case tr.Failed():
			if tr.Expected != nil || tr.Received != nil {
				t.Errorf("%s\n  at: %s\n  expected: %s\n  received: %s",
					tr.Message, tr.Location, expect.Format(tr.Expected), expect.Format(tr.Received))
				return
			}
			t.Errorf("%s\n  at: %s", tr.Message, tr.Location)
		}
	})
}
