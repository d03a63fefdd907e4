package app

import (
	"io"

	"latte/internal/config"
	"latte/internal/runner"
)

// Config holds the application configuration
type Config struct {
	// Root is the project directory test files are discovered in
	Root string

	// Options are the merged run options
	Options config.Options

	// Stdout receives runner output and the console report. Stderr
	// receives logs. Both default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Silent discards all logging
	Silent bool

	// OnResult is called after every completed run, including each
	// watch-mode re-run
	OnResult func(*runner.RunResult)
}

// NewConfig creates a new application configuration
func NewConfig(root string, opts config.Options) *Config {
	return &Config{
		Root:    root,
		Options: opts,
	}
}
