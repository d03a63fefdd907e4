package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"latte/internal/runner"
	lstrings "latte/pkg/strings"
)

const separator = "-----------------------------------------------------------------"

// Console prints the failure tree and the run summary.
type Console struct {
	out       io.Writer
	showStack bool
}

func NewConsole(out io.Writer, showStack bool) *Console {
	return &Console{out: out, showStack: showStack}
}

// Report prints one block per failed file followed by the summary table.
func (c *Console) Report(res *runner.RunResult) {
	if res.Failed > 0 {
		fmt.Fprintln(c.out)
	}
	for _, f := range res.Files {
		if f.Completed {
			continue
		}
		c.failedFile(f)
	}
	c.summary(res)
}

func (c *Console) failedFile(f *runner.FileResult) {
	fmt.Fprintf(c.out, "%s %s...%s 🕑 %s\n",
		text.FgRed.Sprint("🔴"), f.File, text.FgRed.Sprint("FAIL"),
		text.FgHiWhite.Sprintf("%d ms", f.Duration.Milliseconds()))

	var failed []runner.TestResult
	for _, s := range f.Describes {
		for _, t := range s.Tests {
			if t.Failed() {
				failed = append(failed, t)
			}
		}
	}
	for _, t := range f.Tests {
		if t.Failed() {
			failed = append(failed, t)
		}
	}

	for i, t := range failed {
		branch, indent := "├──", " │   "
		if i == len(failed)-1 {
			branch, indent = "└──", "     "
		}
		fmt.Fprintf(c.out, " %s %s >>> %s <<<\n", branch, text.FgHiWhite.Sprint(t.Name), text.FgHiBlack.Sprint(lstrings.OneLine(t.Message, lstrings.DefaultMessageMaxLen)))
		c.details(newTestReport(t, c.showStack), indent)
	}
}

func (c *Console) details(t TestReport, indent string) {
	if t.Expected != "" || t.Received != "" {
		if t.Diff != "" {
			for _, line := range strings.Split(t.Diff, "\n") {
				fmt.Fprintf(c.out, "%s%s\n", indent, colorDiffLine(line))
			}
		} else {
			fmt.Fprintf(c.out, "%sExpected: %s\n", indent, text.FgGreen.Sprint(t.Expected))
			fmt.Fprintf(c.out, "%sReceived: %s\n", indent, text.FgRed.Sprint(t.Received))
		}
	}
	if t.Stack != "" {
		for _, line := range strings.Split(t.Stack, "\n") {
			fmt.Fprintf(c.out, "%s%s\n", indent, text.FgHiBlack.Sprint(line))
		}
	}
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
		return text.FgHiBlack.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return text.FgGreen.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return text.FgRed.Sprint(line)
	}
	return line
}

func (c *Console) summary(res *runner.RunResult) {
	fmt.Fprintln(c.out, text.FgHiBlack.Sprint("\n"+separator))
	fmt.Fprintf(c.out, "%s %s\n", text.FgHiBlack.Sprint("Total files processed:"), text.FgHiWhite.Sprint(len(res.Files)))

	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TOTAL"),
		text.FgHiCyan.Sprint("PASSED"),
		text.FgHiCyan.Sprint("FAILED"),
		text.FgHiCyan.Sprint("SKIPPED"),
		text.FgHiCyan.Sprint("DURATION"),
	})
	t.AppendRow(table.Row{
		text.Bold.Sprint(text.FgBlue.Sprint(res.Total)),
		text.Bold.Sprint(text.FgGreen.Sprint(res.Passed)),
		text.Bold.Sprint(text.FgRed.Sprint(res.Failed)),
		text.FgYellow.Sprint(res.Skipped),
		text.FgYellow.Sprintf("%d ms", res.Duration.Milliseconds()),
	})
	t.Render()
	fmt.Fprintln(c.out)
}
