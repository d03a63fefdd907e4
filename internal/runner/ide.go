package runner

import (
	"context"
	"fmt"

	"latte/internal/teamcity"
	"latte/pkg/expect"
	"latte/pkg/registry"
)

// IDE runs like Sequential but reports every transition as a service
// message on Out and prints nothing else.
type IDE struct {
	opts    Options
	locator teamcity.Locator
}

// NewIDE creates an IDE protocol runner using the Go stack locator.
func NewIDE(opts Options) *IDE {
	return &IDE{opts: opts.withDefaults(), locator: teamcity.StackLocator{}}
}

// WithLocator replaces the failure-origin locator.
func (r *IDE) WithLocator(l teamcity.Locator) *IDE {
	r.locator = l
	return r
}

func (r *IDE) Run(ctx context.Context, queue []*registry.FileEntry) (*RunResult, error) {
	w := teamcity.NewWriter(r.opts.Out).WithClock(r.opts.Clock.Now)
	result := newRunResult(r.opts.Clock.Now())
	w.TestingStarted()

	events := &ideListener{w: w, opts: r.opts, locator: r.locator, nodes: map[any]int{}}
	x := &executor{opts: r.opts, events: events}
	for _, entry := range queue {
		if ctx.Err() != nil {
			break
		}
		result.merge(x.runFile(ctx, entry))
	}

	result.finish(r.opts.Clock.Now())
	w.TestingFinished(result.Duration)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}

// ideListener maps traversal events to service messages. Filtered suites
// produce no messages at all.
type ideListener struct {
	NopListener
	w       *teamcity.Writer
	opts    Options
	locator teamcity.Locator
	nodes   map[any]int
}

func (l *ideListener) id(key any) int {
	if id, ok := l.nodes[key]; ok {
		return id
	}
	id := l.w.NodeID()
	l.nodes[key] = id
	return id
}

func (l *ideListener) parent(s *registry.Suite) int {
	if s == nil {
		return 0
	}
	return l.id(s)
}

func hint(entry *registry.FileEntry, loc registry.Location) string {
	if h := loc.String(); h != "" {
		return h
	}
	return entry.Path
}

func (l *ideListener) suiteNode(entry *registry.FileEntry, s *registry.Suite) teamcity.Node {
	return teamcity.Node{Name: s.Name, Location: hint(entry, s.Location), ID: l.id(s)}
}

func (l *ideListener) testNode(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase) teamcity.Node {
	return teamcity.Node{Name: tc.Name, Location: hint(entry, tc.Location), ID: l.id(tc), ParentID: l.parent(s)}
}

func (l *ideListener) SuiteStarted(entry *registry.FileEntry, s *registry.Suite) {
	l.w.SuiteStarted(l.suiteNode(entry, s))
}

func (l *ideListener) SuiteFinished(entry *registry.FileEntry, s *registry.Suite, sr *SuiteResult) {
	l.w.SuiteFinished(l.suiteNode(entry, s), sr.Duration)
}

func (l *ideListener) TestStarted(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase) {
	l.w.TestStarted(l.testNode(entry, s, tc))
}

func (l *ideListener) TestIgnored(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase, tr TestResult) {
	n := l.testNode(entry, s, tc)
	n.Location = entry.Path
	l.w.TestIgnored(n, tr.Message)
}

func (l *ideListener) TestFinished(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase, tr TestResult) {
	n := l.testNode(entry, s, tc)
	if tr.Failed() {
		failed := n
		failed.Location = l.origin(entry, tc, tr)
		f := teamcity.Failure{
			Message:  tr.Message,
			Expected: expect.Format(tr.Expected),
			Actual:   expect.Format(tr.Received),
		}
		if l.opts.ShowStack {
			f.Stack = tr.Stack
		}
		l.w.TestFailed(failed, f)
	}
	l.w.TestFinished(n, tr.Duration)
}

// origin locates the failure in the test's declaring file. Declarative
// tests never appear in a Go stack, so their recorded position is used
// when the stack has no matching frame.
func (l *ideListener) origin(entry *registry.FileEntry, tc *registry.TestCase, tr TestResult) string {
	file := tc.Location.File
	if file == "" {
		file = entry.Path
	}
	if row, col, ok := l.locator.Locate(tr.Stack, file); ok {
		return fmt.Sprintf("%s:%d:%d", file, row, col)
	}
	if tc.Location.Line > 0 {
		return tc.Location.String()
	}
	return teamcity.LocationHint(l.locator, tr.Stack, file)
}
