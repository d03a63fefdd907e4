package teamcity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Locator finds where in file a failure originated, given its stack trace.
// ok is false when no frame references file.
type Locator interface {
	Locate(stack, file string) (row, col int, ok bool)
}

// trailing ":line" or ":line:col", optionally followed by a Go frame offset
// such as " +0x1d".
var frameRe = regexp.MustCompile(`:(\d+)(?::(\d+))?(?:\s+\+0x[0-9a-f]+)?\s*\)?$`)

// StackLocator parses Go goroutine stacks. It also accepts the
// "path:line:col" frames produced by other tools.
type StackLocator struct{}

func (StackLocator) Locate(stack, file string) (int, int, bool) {
	if file == "" {
		return 0, 0, false
	}
	base := filepath.ToSlash(file)
	for _, line := range strings.Split(stack, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(filepath.ToSlash(line), base) {
			continue
		}
		m := frameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		row, _ := strconv.Atoi(m[1])
		col := 0
		if m[2] != "" {
			col, _ = strconv.Atoi(m[2])
		}
		return row, col, true
	}
	return 0, 0, false
}

// LocationHint formats file:row:col for the failure, falling back to 0,0.
func LocationHint(l Locator, stack, file string) string {
	row, col, ok := l.Locate(stack, file)
	if !ok {
		row, col = 0, 0
	}
	return fmt.Sprintf("%s:%d:%d", file, row, col)
}
