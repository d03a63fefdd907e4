package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"latte/pkg/expect"
	"latte/pkg/logging"
	"latte/pkg/registry"
)

// Listener observes a file's traversal. suite is nil for flat tests.
// Implementations used by the parallel runner must be safe for concurrent
// use.
type Listener interface {
	FileStarted(entry *registry.FileEntry)
	SuiteStarted(entry *registry.FileEntry, suite *registry.Suite)
	SuiteFinished(entry *registry.FileEntry, suite *registry.Suite, result *SuiteResult)
	// SuiteSkipped fires for a suite excluded by the suite filter. Its
	// tests are not recorded.
	SuiteSkipped(entry *registry.FileEntry, suite *registry.Suite)
	// FlatTestsSkipped fires when the suite filter excludes a file's flat
	// tests.
	FlatTestsSkipped(entry *registry.FileEntry)
	TestStarted(entry *registry.FileEntry, suite *registry.Suite, tc *registry.TestCase)
	TestFinished(entry *registry.FileEntry, suite *registry.Suite, tc *registry.TestCase, result TestResult)
	TestIgnored(entry *registry.FileEntry, suite *registry.Suite, tc *registry.TestCase, result TestResult)
	FileFinished(entry *registry.FileEntry, result *FileResult)
}

// NopListener ignores every event. Embed it to handle a subset.
type NopListener struct{}

func (NopListener) FileStarted(*registry.FileEntry) {}
func (NopListener) SuiteStarted(*registry.FileEntry, *registry.Suite) {}
func (NopListener) SuiteFinished(*registry.FileEntry, *registry.Suite, *SuiteResult) {}
func (NopListener) SuiteSkipped(*registry.FileEntry, *registry.Suite) {}
func (NopListener) FlatTestsSkipped(*registry.FileEntry) {}
func (NopListener) TestStarted(*registry.FileEntry, *registry.Suite, *registry.TestCase) {}
func (NopListener) TestFinished(*registry.FileEntry, *registry.Suite, *registry.TestCase, TestResult) {}
func (NopListener) TestIgnored(*registry.FileEntry, *registry.Suite, *registry.TestCase, TestResult) {}
func (NopListener) FileFinished(*registry.FileEntry, *FileResult) {}

// executor runs one file at a time. It holds no state between files, so
// the parallel runner shares one across workers.
type executor struct {
	opts   Options
	events Listener
}

func (x *executor) runFile(ctx context.Context, entry *registry.FileEntry) *FileResult {
	start := x.opts.Clock.Now()
	fr := newFileResult(entry, start)
	x.events.FileStarted(entry)

	for _, s := range entry.Describes {
		if ctx.Err() != nil {
			break
		}
		if x.opts.Suite != "" && !strings.Contains(s.Name, x.opts.Suite) {
			fr.Skipped += len(s.Tests)
			x.events.SuiteSkipped(entry, s)
			continue
		}
		x.runSuite(ctx, entry, s, fr)
	}

	if len(entry.Tests) > 0 && ctx.Err() == nil {
		if x.opts.Suite != "" {
			fr.Skipped += len(entry.Tests)
			x.events.FlatTestsSkipped(entry)
		} else {
			x.runHooks(ctx, entry.BeforeAll, "beforeAll", entry.Key)
			for _, tc := range entry.Tests {
				if ctx.Err() != nil {
					break
				}
				fr.record(nil, x.runTest(ctx, entry, nil, tc))
			}
			x.runHooks(context.WithoutCancel(ctx), entry.AfterAll, "afterAll", entry.Key)
		}
	}

	fr.Duration = x.opts.Clock.Now().Sub(start)
	x.events.FileFinished(entry, fr)
	return fr
}

func (x *executor) runSuite(ctx context.Context, entry *registry.FileEntry, s *registry.Suite, fr *FileResult) {
	start := x.opts.Clock.Now()
	sr := &SuiteResult{Name: s.Name, Location: s.Location, Tests: []TestResult{}}
	fr.Describes = append(fr.Describes, sr)
	x.events.SuiteStarted(entry, s)

	x.runHooks(ctx, s.BeforeAll, "beforeAll", s.Name)
	for _, tc := range s.Tests {
		if ctx.Err() != nil {
			break
		}
		fr.record(sr, x.runTest(ctx, entry, s, tc))
	}
	x.runHooks(context.WithoutCancel(ctx), s.AfterAll, "afterAll", s.Name)

	sr.Duration = x.opts.Clock.Now().Sub(start)
	x.events.SuiteFinished(entry, s, sr)
}

// filtered reports whether the name or skip filter excludes a test.
func (x *executor) filtered(name string) bool {
	if x.opts.Test != "" && !strings.Contains(name, x.opts.Test) {
		return true
	}
	return x.opts.Skip != "" && strings.Contains(name, x.opts.Skip)
}

func (x *executor) runTest(ctx context.Context, entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase) TestResult {
	if x.filtered(tc.Name) {
		tr := TestResult{Name: tc.Name, Skipped: true, Message: SkippedByFilter, Location: tc.Location}
		x.events.TestIgnored(entry, s, tc, tr)
		return tr
	}

	x.events.TestStarted(entry, s, tc)
	start := x.opts.Clock.Now()

	// each-hooks come from the enclosing suite or file as they stand now
	hooks := &entry.Hooks
	if s != nil {
		hooks = &s.Hooks
	}
	x.runHooks(ctx, hooks.BeforeEach, "beforeEach", tc.Name)
	tr := x.runBody(ctx, tc)
	x.runHooks(context.WithoutCancel(ctx), hooks.AfterEach, "afterEach", tc.Name)

	tr.Duration = x.opts.Clock.Now().Sub(start)
	x.events.TestFinished(entry, s, tc, tr)
	return tr
}

func (x *executor) runBody(ctx context.Context, tc *registry.TestCase) TestResult {
	if tc.Fn == nil {
		return outcome(tc, nil)
	}
	timeout := x.opts.TestTimeout
	if tc.Timeout > 0 {
		timeout = tc.Timeout
	}
	if timeout <= 0 {
		return outcome(tc, invoke(ctx, tc.Fn))
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- invoke(tctx, tc.Fn)
	}()

	var err error
	select {
	case err = <-done:
	case <-tctx.Done():
		err = tctx.Err()
	}
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		logging.Debug("Runner", "test %q exceeded %s", tc.Name, timeout)
		tr := outcome(tc, err)
		tr.Message = fmt.Sprintf("Test timed out after %s", timeout)
		return tr
	}
	return outcome(tc, err)
}

func (x *executor) runHooks(ctx context.Context, hooks []registry.Body, kind, owner string) {
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if err := invoke(ctx, h); err != nil {
			logging.Warn("Hooks", "The %s function throw error with message: %s (%s)", kind, message(err), owner)
		}
	}
}

// panicError carries a recovered panic that did not come from a matcher.
type panicError struct {
	value any
	stack string
}

func (p *panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p.value)
}

// invoke runs fn and turns a panic into an error.
func invoke(ctx context.Context, fn registry.Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := expect.AsFailure(r); ok {
				err = f
				return
			}
			err = &panicError{value: r, stack: string(debug.Stack())}
		}
	}()
	return fn(ctx)
}

func message(err error) string {
	if msg, _, _, ok := expect.Details(err); ok {
		return msg
	}
	return err.Error()
}

func outcome(tc *registry.TestCase, err error) TestResult {
	tr := TestResult{Name: tc.Name, Location: tc.Location}
	if err == nil {
		tr.Result = true
		tr.Message = "OK"
		return tr
	}
	if msg, expected, received, ok := expect.Details(err); ok {
		tr.Message = msg
		tr.Expected = expected
		tr.Received = received
		tr.Stack = expect.StackOf(err)
	} else {
		tr.Message = err.Error()
		var pe *panicError
		if errors.As(err, &pe) {
			tr.Stack = pe.stack
		}
	}
	if tr.Message == "" {
		tr.Message = "Test failed"
	}
	return tr
}
