package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"latte/pkg/expect"
	"latte/pkg/registry"
)

// consoleListener prints verbose per-test lines and drives the progress
// indicator. It is used by the sequential runner only.
type consoleListener struct {
	opts     Options
	out      io.Writer
	progress indicator

	flatHeader bool
}

func newConsoleListener(opts Options, progress indicator) *consoleListener {
	return &consoleListener{opts: opts, out: opts.Out, progress: progress}
}

func (c *consoleListener) printf(format string, args ...any) {
	if c.opts.Verbose {
		fmt.Fprintf(c.out, format, args...)
	}
}

func (c *consoleListener) FileStarted(entry *registry.FileEntry) {
	c.flatHeader = false
	c.printf("📜 %s %s...\n", text.FgHiBlack.Sprint("Test file:"), text.Colors{text.Bold, text.FgYellow}.Sprint(entry.Key))
	if len(entry.Describes) > 0 {
		c.printf("  Tests  Suites %d:\n", len(entry.Describes))
	}
}

func (c *consoleListener) SuiteStarted(_ *registry.FileEntry, s *registry.Suite) {
	c.printf("    %s (%d tests):\n", text.FgBlue.Sprint(s.Name), len(s.Tests))
}

func (c *consoleListener) SuiteFinished(*registry.FileEntry, *registry.Suite, *SuiteResult) {}

func (c *consoleListener) SuiteSkipped(entry *registry.FileEntry, s *registry.Suite) {
	c.printf("    %s (%d tests):\n", text.FgBlue.Sprint(s.Name), len(s.Tests))
	c.progress.skip(len(s.Tests))
}

func (c *consoleListener) FlatTestsSkipped(entry *registry.FileEntry) {
	c.progress.skip(len(entry.Tests))
}

func (c *consoleListener) flat(entry *registry.FileEntry, s *registry.Suite) {
	if s == nil && !c.flatHeader {
		c.flatHeader = true
		c.printf("  Simple tests %d:\n", len(entry.Tests))
	}
}

func (c *consoleListener) TestStarted(entry *registry.FileEntry, s *registry.Suite, _ *registry.TestCase) {
	c.flat(entry, s)
}

func (c *consoleListener) TestIgnored(entry *registry.FileEntry, s *registry.Suite, _ *registry.TestCase, _ TestResult) {
	c.flat(entry, s)
	c.progress.skip(1)
}

func (c *consoleListener) TestFinished(entry *registry.FileEntry, _ *registry.Suite, _ *registry.TestCase, tr TestResult) {
	c.progress.advance(entry.Key, 1)
	if !c.opts.Verbose {
		return
	}
	if tr.Result {
		if !c.opts.SkipPassed {
			c.printf("      %s %s\n", text.FgGreen.Sprint("🟢 "+tr.Name), text.FgHiWhite.Sprintf("🕑 %d ms", tr.Duration.Milliseconds()))
		}
		return
	}
	c.printf("      %s\n", text.FgRed.Sprintf("🔴 %s (%s)", tr.Name, tr.Message))
	c.printf("        %s %s\n", text.FgHiMagenta.Sprint("Expected:"), text.Colors{text.Bold, text.FgHiMagenta}.Sprint(expect.Format(tr.Expected)))
	c.printf("        %s %s\n", text.FgHiCyan.Sprint("Received:"), text.Colors{text.Bold, text.FgHiCyan}.Sprint(expect.Format(tr.Received)))
	if c.opts.ShowStack && tr.Stack != "" {
		for _, line := range strings.Split(strings.TrimRight(tr.Stack, "\n"), "\n") {
			c.printf("        %s\n", text.FgHiBlack.Sprint(line))
		}
	}
}

func (c *consoleListener) FileFinished(*registry.FileEntry, *FileResult) {}
