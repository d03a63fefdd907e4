package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"latte/internal/runner"
	"latte/pkg/logging"
)

// Type selects a reporter.
type Type string

const (
	TypeConsole Type = "console"
	TypeJSON    Type = "json"
	TypeJUnit   Type = "junit"
	TypeHTML    Type = "html"
	// TypeLCOV needs coverage data and falls back to console
	TypeLCOV Type = "lcov"
)

// DefaultDir is where file reports go unless configured otherwise.
const DefaultDir = "coverage"

var defaultFiles = map[Type]string{
	TypeJSON:  "latte-report.json",
	TypeJUnit: "junit.xml",
	TypeHTML:  "latte-report.html",
}

// ParseType maps a configured name to a Type. Unknown names fall back to
// console and report false.
func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeConsole, TypeJSON, TypeJUnit, TypeHTML, TypeLCOV:
		return t, true
	case "":
		return TypeConsole, true
	}
	return TypeConsole, false
}

// DefaultFile is the report file name used for t when none is configured.
func DefaultFile(t Type) string {
	return defaultFiles[t]
}

// Options configure Write.
type Options struct {
	Type Type
	// Dir and File locate file reports. Relative dirs are resolved against
	// Root.
	Root string
	Dir  string
	File string

	ShowStack bool
	// Out receives the console report
	Out io.Writer
}

// Write prints the console report and, for file types, writes the report
// file. It returns the path written, if any.
func Write(res *runner.RunResult, opts Options) (string, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Type == TypeLCOV {
		logging.Warn("Report", "lcov reports need coverage data, which is not collected; using console")
		opts.Type = TypeConsole
	}

	NewConsole(opts.Out, opts.ShowStack).Report(res)
	if opts.Type == TypeConsole || opts.Type == "" {
		return "", nil
	}

	path := reportPath(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	switch opts.Type {
	case TypeJSON:
		err = WriteJSON(f, NewEnvelope(res, opts.ShowStack))
	case TypeJUnit:
		err = WriteJUnit(f, res)
	case TypeHTML:
		err = WriteHTML(f, NewEnvelope(res, opts.ShowStack))
	default:
		err = fmt.Errorf("unknown report type %q", opts.Type)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s report: %w", opts.Type, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	logging.Info("Report", "Wrote %s report to %s", opts.Type, path)
	return path, nil
}

func reportPath(opts Options) string {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if !filepath.IsAbs(dir) && opts.Root != "" {
		dir = filepath.Join(opts.Root, dir)
	}
	file := opts.File
	if file == "" {
		file = DefaultFile(opts.Type)
	}
	return filepath.Join(dir, file)
}

// WriteJSON writes env as indented JSON.
func WriteJSON(w io.Writer, env *Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
