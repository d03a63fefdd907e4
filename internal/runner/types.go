package runner

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"latte/pkg/mock"
	"latte/pkg/registry"
)

// ProgressMode selects how progress is drawn while tests run.
type ProgressMode string

const (
	// ProgressDefault draws a progress tracker with a test count
	ProgressDefault ProgressMode = "default"
	// ProgressBar draws a progress bar
	ProgressBar ProgressMode = "bar"
	// ProgressDots draws a spinner
	ProgressDots ProgressMode = "dots"
	// ProgressNone prints a single "Processed" line per test
	ProgressNone ProgressMode = "none"
)

// Valid reports whether m is a known mode.
func (m ProgressMode) Valid() bool {
	switch m {
	case ProgressDefault, ProgressBar, ProgressDots, ProgressNone:
		return true
	}
	return false
}

// SkippedByFilter is the message recorded for tests excluded by the name or
// skip filter.
const SkippedByFilter = "Test skipped by name filter"

// Options control a run.
type Options struct {
	// Test runs only tests whose name contains it
	Test string
	// Suite runs only suites whose name contains it. Flat tests are skipped
	// while it is set.
	Suite string
	// Skip skips tests whose name contains it
	Skip string

	Verbose    bool
	SkipPassed bool
	ShowStack  bool
	Progress   ProgressMode

	// MaxWorkers bounds the parallel runner's file workers
	MaxWorkers int
	// TestTimeout fails a test that runs longer. Zero disables it.
	TestTimeout time.Duration

	// Out receives runner output. Defaults to io.Discard.
	Out io.Writer
	// Clock stamps results. Defaults to the real clock.
	Clock mock.Clock
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.Clock == nil {
		o.Clock = mock.RealClock{}
	}
	if o.Progress == "" {
		o.Progress = ProgressDefault
	}
	if o.MaxWorkers < 1 {
		o.MaxWorkers = 1
	}
	return o
}

// TestResult is the outcome of one test.
type TestResult struct {
	Name    string `json:"name"`
	Result  bool   `json:"result"`
	Skipped bool   `json:"skipped,omitempty"`
	// Message is "OK" for a passing test
	Message string `json:"message"`
	// Expected and Received are the raw values of an assertion failure.
	// Reporters format them.
	Expected any               `json:"-"`
	Received any               `json:"-"`
	Stack    string            `json:"stack,omitempty"`
	Location registry.Location `json:"location"`
	Duration time.Duration     `json:"duration"`
}

// Failed reports whether the test ran and failed.
func (t TestResult) Failed() bool {
	return !t.Result && !t.Skipped
}

// SuiteResult holds the results of one suite, in declaration order.
type SuiteResult struct {
	Name     string            `json:"name"`
	Location registry.Location `json:"location"`
	Tests    []TestResult      `json:"tests"`
	Duration time.Duration     `json:"duration"`
}

// Failed reports whether any test of the suite failed.
func (s *SuiteResult) Failed() bool {
	for _, t := range s.Tests {
		if t.Failed() {
			return true
		}
	}
	return false
}

// FileResult holds the results of one file.
type FileResult struct {
	File      string         `json:"file"`
	Path      string         `json:"path"`
	Describes []*SuiteResult `json:"describes"`
	Tests     []TestResult   `json:"tests"`
	// Completed turns false on the first failure and stays false
	Completed bool          `json:"completed"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

func newFileResult(entry *registry.FileEntry, start time.Time) *FileResult {
	return &FileResult{
		File:      entry.Key,
		Path:      entry.Path,
		Describes: []*SuiteResult{},
		Tests:     []TestResult{},
		Completed: true,
		StartTime: start,
	}
}

// record adds tr to suite, or to the flat tests when suite is nil.
func (f *FileResult) record(suite *SuiteResult, tr TestResult) {
	if suite != nil {
		suite.Tests = append(suite.Tests, tr)
	} else {
		f.Tests = append(f.Tests, tr)
	}
	switch {
	case tr.Skipped:
		f.Skipped++
	case tr.Result:
		f.Passed++
	default:
		f.Failed++
		f.Completed = false
	}
}

// RunResult is the result tree of a whole run.
type RunResult struct {
	RunID     string        `json:"run_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Files     []*FileResult `json:"files"`
	// Total counts executed tests; Skipped is reported separately
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	mu    sync.Mutex
	index map[string]*FileResult
}

func newRunResult(start time.Time) *RunResult {
	return &RunResult{
		RunID:     uuid.NewString(),
		StartTime: start,
		Files:     []*FileResult{},
		index:     map[string]*FileResult{},
	}
}

// merge adds fr to the tree. A second result for the same file key is
// folded into the first rather than replacing it.
func (r *RunResult) merge(fr *FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Total += fr.Passed + fr.Failed
	r.Passed += fr.Passed
	r.Failed += fr.Failed
	r.Skipped += fr.Skipped

	existing, ok := r.index[fr.File]
	if !ok {
		r.index[fr.File] = fr
		r.Files = append(r.Files, fr)
		return
	}
	existing.Describes = append(existing.Describes, fr.Describes...)
	existing.Tests = append(existing.Tests, fr.Tests...)
	existing.Passed += fr.Passed
	existing.Failed += fr.Failed
	existing.Skipped += fr.Skipped
	existing.Completed = existing.Completed && fr.Completed
	existing.Duration += fr.Duration
}

func (r *RunResult) finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
}

// File returns the result recorded for a file key.
func (r *RunResult) File(key string) (*FileResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr, ok := r.index[key]
	return fr, ok
}

// Completed reports whether every file completed without failures.
func (r *RunResult) Completed() bool {
	for _, f := range r.Files {
		if !f.Completed {
			return false
		}
	}
	return true
}

// Runner executes a registration queue.
type Runner interface {
	// Run executes the queue. The returned error is non-nil only when ctx
	// was cancelled before every file ran.
	Run(ctx context.Context, queue []*registry.FileEntry) (*RunResult, error)
}

// New picks the runner for opts: IDE output wins over parallel execution.
func New(opts Options, ide, parallel bool) Runner {
	switch {
	case ide:
		return NewIDE(opts)
	case parallel:
		return NewParallel(opts)
	default:
		return NewSequential(opts)
	}
}

func countTests(queue []*registry.FileEntry) int {
	n := 0
	for _, e := range queue {
		for _, s := range e.Describes {
			n += len(s.Tests)
		}
		n += len(e.Tests)
	}
	return n
}
