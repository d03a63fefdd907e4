package teamcity

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", "it|'s"},
		{"a|b", "a||b"},
		{"line\nbreak\r", "line|nbreak|r"},
		{"[x]", "|[x|]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "##teamcity[testingStarted]", Format("testingStarted"))
	assert.Equal(t,
		"##teamcity[testFinished name='it|'s' duration='1500']",
		Format("testFinished", A("name", "it's"), A("duration", 1500*time.Millisecond)),
	)
	assert.Equal(t, "##teamcity[x n='3' e='']", Format("x", A("n", 3), A("e", nil)))
}

func TestWriterEvents(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	w := NewWriter(&buf).WithClock(func() time.Time { return fixed })

	suite := Node{Name: "Math", ID: w.NodeID()}
	test := Node{Name: "adds", Location: "math.go:3:1", ID: w.NodeID(), ParentID: suite.ID}

	w.TestingStarted()
	w.SuiteStarted(suite)
	w.TestStarted(test)
	w.TestFailed(test, Failure{Message: "Expected 'a'", Expected: "2", Actual: "3"})
	w.TestFinished(test, 5*time.Millisecond)
	w.TestIgnored(Node{Name: "skipped", ID: w.NodeID(), ParentID: suite.ID}, "Test skipped by name filter")
	w.SuiteFinished(suite, 7*time.Millisecond)
	w.TestingFinished(9 * time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "##teamcity[testingStarted]", lines[0])
	assert.Equal(t, "##teamcity[testSuiteStarted name='Math' nodeId='1' parentNodeId='0' flowId='0' timestamp='2024-05-01T10:30:00.000']", lines[1])
	assert.Equal(t, "##teamcity[testStarted name='adds' locationHint='math.go:3:1' nodeId='2' parentNodeId='1' flowId='0']", lines[2])
	assert.Contains(t, lines[3], "message='Expected |'a|''")
	assert.Contains(t, lines[3], "expected='2' actual='3' type='assertion'")
	assert.NotContains(t, lines[3], "stackTrace")
	assert.Contains(t, lines[4], "duration='5'")
	assert.Contains(t, lines[5], "message='Test skipped by name filter'")
	assert.Contains(t, lines[6], "testSuiteFinished name='Math'")
	assert.Equal(t, "##teamcity[testingFinished duration='9']", lines[7])
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, Prefix))
	}
}

func TestStackLocator(t *testing.T) {
	stack := `goroutine 7 [running]:
latte/pkg/expect.(*Expectation).fail(...)
	/src/latte/pkg/expect/expectation.go:120 +0x1d
latte/examples.TestMath.func1({0x0, 0x0})
	/src/latte/examples/math_test.go:42 +0x5a
testing.tRunner(0xc000007a00, 0x1)
	/usr/local/go/src/testing/testing.go:1690 +0xf4`

	tests := []struct {
		name    string
		stack   string
		file    string
		row     int
		col     int
		located bool
	}{
		{"go frame", stack, "/src/latte/examples/math_test.go", 42, 0, true},
		{"line and column", "at run (/app/spec/math.yaml:7:13)", "/app/spec/math.yaml", 7, 13, true},
		{"no frame", stack, "/elsewhere/other_test.go", 0, 0, false},
		{"empty file", stack, "", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := StackLocator{}.Locate(tt.stack, tt.file)
			assert.Equal(t, tt.located, ok)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.col, col)
		})
	}

	assert.Equal(t, "/src/latte/examples/math_test.go:42:0", LocationHint(StackLocator{}, stack, "/src/latte/examples/math_test.go"))
	assert.Equal(t, "x.yaml:0:0", LocationHint(StackLocator{}, stack, "x.yaml"))
}
