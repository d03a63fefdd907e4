package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff of two renderings when at least one spans
// several lines and they differ. Single-line values are shown side by
// side instead, so it returns "".
func Diff(expected, received string) string {
	if expected == received {
		return ""
	}
	if !strings.Contains(expected, "\n") && !strings.Contains(received, "\n") {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected + "\n"),
		B:        difflib.SplitLines(received + "\n"),
		FromFile: "Expected",
		ToFile:   "Received",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return strings.TrimRight(diff, "\n")
}
