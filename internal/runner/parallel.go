package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"latte/pkg/logging"
	"latte/pkg/registry"
)

// Parallel runs files concurrently on a bounded pool of workers. Each file
// runs on one worker; tests within a file keep their declaration order.
type Parallel struct {
	opts Options
}

// NewParallel creates a parallel runner with opts.MaxWorkers workers.
func NewParallel(opts Options) *Parallel {
	return &Parallel{opts: opts.withDefaults()}
}

// Run executes the queue. Results are merged per file key as workers
// finish, so file order in the result is not guaranteed.
func (r *Parallel) Run(ctx context.Context, queue []*registry.FileEntry) (*RunResult, error) {
	result := newRunResult(r.opts.Clock.Now())
	events := newParallelListener(r.opts)
	x := &executor{opts: r.opts, events: events}

	workers := r.opts.MaxWorkers
	if workers > len(queue) {
		workers = len(queue)
	}
	logging.Debug("Runner", "running %d files on %d workers", len(queue), workers)

	sem := semaphore.NewWeighted(int64(max(workers, 1)))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range queue {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			logging.Debug("Runner", "worker %d executing file %s", i, entry.Key)
			result.merge(x.runFile(gctx, entry))
			return nil
		})
	}
	_ = g.Wait()
	result.finish(r.opts.Clock.Now())

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}

// parallelListener buffers each file's verbose output and prints it as one
// block when the file finishes, so concurrent files never interleave.
// A file's events all arrive on its worker's goroutine.
type parallelListener struct {
	opts Options

	mu    sync.Mutex
	out   io.Writer
	files map[string]*fileConsole
}

type fileConsole struct {
	buf     bytes.Buffer
	console *consoleListener
}

func newParallelListener(opts Options) *parallelListener {
	return &parallelListener{opts: opts, out: opts.Out, files: map[string]*fileConsole{}}
}

// console returns the file's console listener. Progress is never drawn in
// parallel mode.
func (p *parallelListener) console(entry *registry.FileEntry) *consoleListener {
	p.mu.Lock()
	defer p.mu.Unlock()
	fc, ok := p.files[entry.Key]
	if !ok {
		fc = &fileConsole{}
		opts := p.opts
		opts.Out = &fc.buf
		fc.console = newConsoleListener(opts, nopIndicator{})
		p.files[entry.Key] = fc
	}
	return fc.console
}

func (p *parallelListener) FileStarted(entry *registry.FileEntry) {
	p.console(entry).FileStarted(entry)
}

func (p *parallelListener) SuiteStarted(entry *registry.FileEntry, s *registry.Suite) {
	p.console(entry).SuiteStarted(entry, s)
}

func (p *parallelListener) SuiteFinished(entry *registry.FileEntry, s *registry.Suite, sr *SuiteResult) {
	p.console(entry).SuiteFinished(entry, s, sr)
}

func (p *parallelListener) SuiteSkipped(entry *registry.FileEntry, s *registry.Suite) {
	p.console(entry).SuiteSkipped(entry, s)
}

func (p *parallelListener) FlatTestsSkipped(entry *registry.FileEntry) {
	p.console(entry).FlatTestsSkipped(entry)
}

func (p *parallelListener) TestStarted(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase) {
	p.console(entry).TestStarted(entry, s, tc)
}

func (p *parallelListener) TestIgnored(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase, tr TestResult) {
	p.console(entry).TestIgnored(entry, s, tc, tr)
}

func (p *parallelListener) TestFinished(entry *registry.FileEntry, s *registry.Suite, tc *registry.TestCase, tr TestResult) {
	p.console(entry).TestFinished(entry, s, tc, tr)
}

func (p *parallelListener) FileFinished(entry *registry.FileEntry, fr *FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fc, ok := p.files[entry.Key]; ok {
		delete(p.files, entry.Key)
		_, _ = fc.buf.WriteTo(p.out)
	}
	status := "✅ PASSED"
	if !fr.Completed {
		status = fmt.Sprintf("❌ FAILED (%d failed)", fr.Failed)
	}
	fmt.Fprintf(p.out, "🧪 %s... %s (%d ms)\n", entry.Key, status, fr.Duration.Milliseconds())
}
