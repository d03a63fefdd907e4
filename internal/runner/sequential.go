package runner

import (
	"context"
	"fmt"

	"latte/pkg/logging"
	"latte/pkg/registry"
)

// Sequential runs files in queue order, one test at a time.
type Sequential struct {
	opts Options
}

// NewSequential creates a sequential runner.
func NewSequential(opts Options) *Sequential {
	return &Sequential{opts: opts.withDefaults()}
}

// Run executes every file of queue in order.
func (r *Sequential) Run(ctx context.Context, queue []*registry.FileEntry) (*RunResult, error) {
	result := newRunResult(r.opts.Clock.Now())
	total := countTests(queue)
	logging.Debug("Runner", "running %d tests in %d files", total, len(queue))

	progress := newIndicator(r.opts, total)
	x := &executor{opts: r.opts, events: newConsoleListener(r.opts, progress)}

	for _, entry := range queue {
		if ctx.Err() != nil {
			break
		}
		result.merge(x.runFile(ctx, entry))
	}
	progress.done()
	result.finish(r.opts.Clock.Now())

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}
