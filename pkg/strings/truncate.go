package strings

import (
	"strings"
	"unicode/utf8"
)

// DefaultMessageMaxLen bounds failure messages in the console failure tree.
const DefaultMessageMaxLen = 200

// MinTruncateLen is the smallest maxLen OneLine honours: one rune plus "...".
const MinTruncateLen = 4

// OneLine collapses every whitespace run, newlines included, into a single
// space and cuts the result to maxLen runes, ending it with "..." when cut.
func OneLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
