package app

import (
	"context"
	"fmt"
	"io"

	"latte/internal/discovery"
	"latte/internal/report"
	"latte/internal/runner"
	"latte/internal/testfile"
	"latte/pkg/logging"
)

// Discover returns the test files selected by the options, as
// slash-separated paths relative to the root.
func (a *Application) Discover(ctx context.Context) ([]string, error) {
	opts := a.config.Options
	files, err := discovery.Find(ctx, a.config.Root, discovery.Options{
		Include: opts.Include,
		Exclude: opts.Exclude,
		Files:   opts.Files,
	})
	if err != nil {
		return nil, err
	}
	if opts.Changed {
		changed, err := discovery.Changed(a.config.Root, opts.ChangedBase)
		if err != nil {
			return nil, err
		}
		files = discovery.Intersect(files, changed)
		logging.Info("Discovery", "%d test files changed", len(files))
	}
	return files, nil
}

// Load discovers and parses the test files.
func (a *Application) Load(ctx context.Context) ([]*testfile.File, error) {
	paths, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		logging.Warn("Discovery", "No test files found in %s", a.config.Root)
	}
	return a.services.Loader.Load(ctx, paths)
}

// runOnce clears the queue, registers every test file and runs it.
func (a *Application) runOnce(ctx context.Context) (*runner.RunResult, error) {
	opts := a.config.Options

	files, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	reg := a.services.Registry
	reg.ClearQueue()
	if err := a.services.Loader.Register(reg, files); err != nil {
		return nil, err
	}

	ropts := runnerOptions(opts)
	ropts.Out = a.config.Stdout
	r := runner.New(ropts, opts.Idea, opts.Parallel)

	logging.Info("Runner", "Running %d test files", reg.Len())
	res, runErr := r.Run(ctx, reg.Queue())
	if runErr != nil && ctx.Err() == nil {
		return nil, runErr
	}

	reportType, _ := report.ParseType(opts.ReportType)
	var consoleOut io.Writer = a.config.Stdout
	if opts.Idea {
		consoleOut = io.Discard
	}
	if _, err := report.Write(res, report.Options{
		Type:      reportType,
		Root:      a.config.Root,
		Dir:       opts.ReportDir,
		File:      opts.ReportFile,
		ShowStack: opts.ShowStack,
		Out:       consoleOut,
	}); err != nil {
		return res, fmt.Errorf("failed to write report: %w", err)
	}

	if a.config.OnResult != nil {
		a.config.OnResult(res)
	}
	return res, runErr
}

// runWatchMode runs once and then again after every batch of file
// changes until ctx is done. Failed re-runs are logged and watching
// continues.
func (a *Application) runWatchMode(ctx context.Context) (*runner.RunResult, error) {
	last, err := a.runOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return last, err
		}
		logging.Error("Watch", err, "Run failed, waiting for changes")
	}

	watchOpts := discovery.Options{Exclude: a.config.Options.Exclude}
	err = discovery.Watch(ctx, a.config.Root, watchOpts, func(paths []string) {
		logging.Info("Watch", "Re-running after changes to %d files", len(paths))
		a.services.Loader.Invalidate(paths...)
		res, err := a.runOnce(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logging.Error("Watch", err, "Run failed, waiting for changes")
			}
			return
		}
		last = res
	})
	if err != nil {
		return last, fmt.Errorf("failed to watch %s: %w", a.config.Root, err)
	}
	return last, nil
}
