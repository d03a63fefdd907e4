package app

import (
	"latte/internal/config"
	"latte/internal/runner"
	"latte/internal/testfile"
	"latte/pkg/expect"
	"latte/pkg/registry"
)

// Services holds the components one application instance runs with.
// A Registry is cleared and refilled for every run; the Loader keeps its
// parsed-file cache across watch-mode re-runs.
type Services struct {
	Registry *registry.Registry
	Loader   *testfile.Loader
	Matchers *expect.Matchers
}

// InitializeServices creates the registry, matcher set and test-file
// loader for cfg.
func InitializeServices(cfg *Config) (*Services, error) {
	matchers := expect.Builtins()

	vars := make(map[string]any, len(cfg.Options.Vars))
	for k, v := range cfg.Options.Vars {
		vars[k] = v
	}

	loader := testfile.NewLoader(cfg.Root,
		testfile.WithVars(vars),
		testfile.WithMatchers(matchers),
	)

	return &Services{
		Registry: registry.New(),
		Loader:   loader,
		Matchers: matchers,
	}, nil
}

// runnerOptions maps run options onto the runner.
func runnerOptions(opts config.Options) runner.Options {
	return runner.Options{
		Test:        opts.Test,
		Suite:       opts.Suite,
		Skip:        opts.Skip,
		Verbose:     opts.Verbose,
		SkipPassed:  opts.SkipPassed,
		ShowStack:   opts.ShowStack,
		Progress:    runner.ProgressMode(opts.Progress),
		MaxWorkers:  opts.MaxWorkers,
		TestTimeout: opts.TestTimeout,
	}
}
