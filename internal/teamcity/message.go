package teamcity

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Prefix starts every service message.
const Prefix = "##teamcity["

// Timestamp layout used by testSuiteStarted: ISO 8601 without the zone.
const timestampLayout = "2006-01-02T15:04:05.000"

var escaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// Escape applies service message escaping to an attribute value.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Attr is one key='value' pair of a service message.
type Attr struct {
	Key   string
	Value string
}

// A builds an attribute from any value. Durations are written in whole
// milliseconds.
func A(key string, value any) Attr {
	switch v := value.(type) {
	case string:
		return Attr{Key: key, Value: v}
	case int:
		return Attr{Key: key, Value: strconv.Itoa(v)}
	case time.Duration:
		return Attr{Key: key, Value: strconv.FormatInt(v.Milliseconds(), 10)}
	case nil:
		return Attr{Key: key}
	default:
		return Attr{Key: key, Value: fmt.Sprint(v)}
	}
}

// Format renders a single service message line without the trailing
// newline.
func Format(event string, attrs ...Attr) string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(event)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString("='")
		b.WriteString(Escape(a.Value))
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}

// Writer emits service messages, one per line. It is safe for concurrent
// use; node IDs are unique per Writer.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	now    func() time.Time
	nextID int
	flowID string
}

// NewWriter returns a Writer on out. Every message carries flowId='0'.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, now: time.Now, flowID: "0"}
}

// WithClock overrides the clock used for suite timestamps.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// NodeID allocates a fresh node identifier. Zero is the root.
func (w *Writer) NodeID() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	return w.nextID
}

// Emit writes one message.
func (w *Writer) Emit(event string, attrs ...Attr) {
	line := Format(event, attrs...)
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, line)
}

func (w *Writer) TestingStarted() {
	w.Emit("testingStarted")
}

func (w *Writer) TestingFinished(d time.Duration) {
	w.Emit("testingFinished", A("duration", d))
}

// Node identifies a suite or test in the tree the IDE builds.
type Node struct {
	Name     string
	Location string
	ID       int
	ParentID int
}

func (n Node) attrs(w *Writer) []Attr {
	out := []Attr{A("name", n.Name)}
	if n.Location != "" {
		out = append(out, A("locationHint", n.Location))
	}
	return append(out,
		A("nodeId", n.ID),
		A("parentNodeId", n.ParentID),
		A("flowId", w.flowID),
	)
}

func (w *Writer) SuiteStarted(n Node) {
	attrs := append(n.attrs(w), A("timestamp", w.now().UTC().Format(timestampLayout)))
	w.Emit("testSuiteStarted", attrs...)
}

func (w *Writer) SuiteFinished(n Node, d time.Duration) {
	w.Emit("testSuiteFinished", append(n.attrs(w), A("duration", d))...)
}

func (w *Writer) TestStarted(n Node) {
	w.Emit("testStarted", n.attrs(w)...)
}

func (w *Writer) TestFinished(n Node, d time.Duration) {
	w.Emit("testFinished", append(n.attrs(w), A("duration", d))...)
}

func (w *Writer) TestIgnored(n Node, message string) {
	w.Emit("testIgnored", append(n.attrs(w), A("message", message))...)
}

// Failure describes a failed test.
type Failure struct {
	Message  string
	Expected string
	Actual   string
	Stack    string
}

// TestFailed reports a failure. Callers place the located origin in
// n.Location.
func (w *Writer) TestFailed(n Node, f Failure) {
	attrs := append(n.attrs(w),
		A("message", f.Message),
		A("details", f.Stack),
		A("expected", f.Expected),
		A("actual", f.Actual),
		A("type", "assertion"),
	)
	if f.Stack != "" {
		attrs = append(attrs, A("stackTrace", f.Stack))
	}
	w.Emit("testFailed", attrs...)
}
