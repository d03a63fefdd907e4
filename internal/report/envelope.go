package report

import (
	"strings"
	"time"

	"latte/internal/runner"
	"latte/pkg/expect"
	"latte/pkg/registry"
)

// Test statuses used in envelopes.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Envelope is the serializable form of a run. The json reporter writes it
// and the MCP tools return it.
type Envelope struct {
	RunID     string        `json:"run_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Summary   Summary       `json:"summary"`
	Files     []FileReport  `json:"files"`
}

// Summary holds the run totals.
type Summary struct {
	Files     int  `json:"files"`
	Total     int  `json:"total"`
	Passed    int  `json:"passed"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Completed bool `json:"completed"`
}

type FileReport struct {
	File      string        `json:"file"`
	Path      string        `json:"path"`
	Completed bool          `json:"completed"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	Describes []SuiteReport `json:"describes"`
	Tests     []TestReport  `json:"tests"`
}

type SuiteReport struct {
	Name     string            `json:"name"`
	Location registry.Location `json:"location"`
	Duration time.Duration     `json:"duration"`
	Tests    []TestReport      `json:"tests"`
}

// TestReport is one test with its failure values already formatted.
type TestReport struct {
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Expected string            `json:"expected,omitempty"`
	Received string            `json:"received,omitempty"`
	Diff     string            `json:"diff,omitempty"`
	Stack    string            `json:"stack,omitempty"`
	Location registry.Location `json:"location"`
	Duration time.Duration     `json:"duration"`
}

// NewEnvelope converts a result tree. Stacks are kept only with showStack.
func NewEnvelope(res *runner.RunResult, showStack bool) *Envelope {
	env := &Envelope{
		RunID:     res.RunID,
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Duration:  res.Duration,
		Summary: Summary{
			Files:     len(res.Files),
			Total:     res.Total,
			Passed:    res.Passed,
			Failed:    res.Failed,
			Skipped:   res.Skipped,
			Completed: res.Completed(),
		},
		Files: make([]FileReport, 0, len(res.Files)),
	}
	for _, f := range res.Files {
		fr := FileReport{
			File:      f.File,
			Path:      f.Path,
			Completed: f.Completed,
			Passed:    f.Passed,
			Failed:    f.Failed,
			Skipped:   f.Skipped,
			Duration:  f.Duration,
			Describes: make([]SuiteReport, 0, len(f.Describes)),
			Tests:     testReports(f.Tests, showStack),
		}
		for _, s := range f.Describes {
			fr.Describes = append(fr.Describes, SuiteReport{
				Name:     s.Name,
				Location: s.Location,
				Duration: s.Duration,
				Tests:    testReports(s.Tests, showStack),
			})
		}
		env.Files = append(env.Files, fr)
	}
	return env
}

func testReports(tests []runner.TestResult, showStack bool) []TestReport {
	out := make([]TestReport, 0, len(tests))
	for _, t := range tests {
		out = append(out, newTestReport(t, showStack))
	}
	return out
}

func newTestReport(t runner.TestResult, showStack bool) TestReport {
	tr := TestReport{
		Name:     t.Name,
		Status:   status(t),
		Message:  t.Message,
		Location: t.Location,
		Duration: t.Duration,
	}
	if !t.Failed() {
		return tr
	}
	if t.Expected != nil || t.Received != nil {
		tr.Expected = expect.Format(t.Expected)
		tr.Received = expect.Format(t.Received)
		tr.Diff = Diff(expect.FormatIndent(t.Expected), expect.FormatIndent(t.Received))
	}
	if showStack {
		tr.Stack = strings.TrimSpace(t.Stack)
	}
	return tr
}

func status(t runner.TestResult) string {
	switch {
	case t.Skipped:
		return StatusSkipped
	case t.Result:
		return StatusPassed
	default:
		return StatusFailed
	}
}
