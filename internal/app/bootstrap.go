package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"latte/internal/runner"
	"latte/pkg/logging"
)

// Application runs test files below a root directory.
//
// Example usage:
//
//	opts, _, err := config.Load(root, "")
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(app.NewConfig(root, opts))
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	res, err := application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication validates cfg, configures logging and initializes the
// services:
//
//  1. Resolves the root directory
//  2. Normalizes and validates the options
//  3. Configures logging from the debug and verbose options
//  4. Creates the registry and test-file loader
//
// Logs go to cfg.Stderr so that stdout only carries runner output, which
// in IDE mode is the service-message stream.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory %s: %w", cfg.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	cfg.Root = root

	configureLogging(cfg)

	cfg.Options.Normalize()
	if err := cfg.Options.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid options")
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if cfg.Options.Coverage {
		logging.Warn("Bootstrap", "Coverage collection is not supported, ignoring coverage option")
	}
	if cfg.Options.Parallel && cfg.Options.Idea {
		logging.Info("Bootstrap", "IDE output runs files sequentially, ignoring parallel option")
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func configureLogging(cfg *Config) {
	if cfg.Silent {
		logging.InitSilent()
		return
	}
	level := logging.LevelWarn
	switch {
	case cfg.Options.Debug:
		level = logging.LevelDebug
	case cfg.Options.Verbose:
		level = logging.LevelInfo
	}
	logging.InitForCLI(level, cfg.Stderr)
}

// Services returns the application's services.
func (a *Application) Services() *Services {
	return a.services
}

// Root returns the absolute root directory.
func (a *Application) Root() string {
	return a.config.Root
}

// Run executes the test files once, or keeps re-running them on change
// in watch mode until ctx is done. It returns the last completed result.
// The error is non-nil for setup failures and for a run cancelled before
// every file ran.
func (a *Application) Run(ctx context.Context) (*runner.RunResult, error) {
	if a.config.Options.Debug {
		stop := startDebugServer(a.config.Options.DebugPort)
		defer stop()
	}
	if a.config.Options.Watch {
		return a.runWatchMode(ctx)
	}
	return a.runOnce(ctx)
}
