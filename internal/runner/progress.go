package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/text"
)

// indicator advances once per executed test. Skipped tests shrink the
// total instead, so a finished run always reaches it.
type indicator interface {
	advance(file string, n int)
	skip(n int)
	done()
}

type nopIndicator struct{}

func (nopIndicator) advance(string, int) {}
func (nopIndicator) skip(int)            {}
func (nopIndicator) done()               {}

// newIndicator returns the indicator for mode. Verbose output replaces
// progress entirely.
func newIndicator(opts Options, total int) indicator {
	if opts.Verbose {
		return nopIndicator{}
	}
	switch opts.Progress {
	case ProgressNone:
		return &lineIndicator{out: opts.Out}
	case ProgressDots:
		return newSpinnerIndicator(opts.Out, total)
	case ProgressBar:
		return newTrackerIndicator(opts.Out, total, true)
	default:
		return newTrackerIndicator(opts.Out, total, false)
	}
}

// trackerIndicator draws a go-pretty tracker. Without the bar it shows
// only the running count.
type trackerIndicator struct {
	pw      progress.Writer
	tracker *progress.Tracker
	total   int64
	once    sync.Once
}

func newTrackerIndicator(out io.Writer, total int, bar bool) *trackerIndicator {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(40)
	pw.SetUpdateFrequency(50 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.Tracker = bar
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Value = true

	t := &progress.Tracker{
		Message: "Running tests",
		Total:   int64(total),
		Units: progress.Units{
			Notation:         " tests",
			NotationPosition: progress.UnitsNotationPositionAfter,
			Formatter:        progress.FormatNumber,
		},
	}
	pw.AppendTracker(t)
	go pw.Render()
	return &trackerIndicator{pw: pw, tracker: t, total: int64(total)}
}

func (p *trackerIndicator) advance(file string, n int) {
	p.tracker.UpdateMessage(file)
	p.tracker.Increment(int64(n))
}

func (p *trackerIndicator) skip(n int) {
	p.total -= int64(n)
	p.tracker.UpdateTotal(p.total)
}

func (p *trackerIndicator) done() {
	p.once.Do(func() {
		p.tracker.MarkAsDone()
		p.pw.Stop()
		for p.pw.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	})
}

// spinnerIndicator shows a spinner with the test count as its suffix.
type spinnerIndicator struct {
	s     *spinner.Spinner
	total int
	count int
}

func newSpinnerIndicator(out io.Writer, total int) *spinnerIndicator {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = fmt.Sprintf(" 0/%d tests", total)
	s.Start()
	return &spinnerIndicator{s: s, total: total}
}

func (p *spinnerIndicator) advance(file string, n int) {
	p.count += n
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" %d/%d tests %s", p.count, p.total, text.FgHiBlack.Sprint(file))
	p.s.Unlock()
}

func (p *spinnerIndicator) skip(n int) {
	p.total -= n
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" %d/%d tests", p.count, p.total)
	p.s.Unlock()
}

func (p *spinnerIndicator) done() {
	p.s.FinalMSG = fmt.Sprintf("%d/%d tests processed\n", p.count, p.total)
	p.s.Stop()
}

// lineIndicator rewrites a single status line.
type lineIndicator struct {
	out      io.Writer
	executed bool
}

func (p *lineIndicator) advance(file string, n int) {
	p.executed = true
	fmt.Fprintf(p.out, "\r⚙️ Processed: %s...", file)
}

func (p *lineIndicator) skip(int) {}

func (p *lineIndicator) done() {
	if p.executed {
		fmt.Fprintf(p.out, "\r%s\n", text.FgBlue.Sprint("Process completed. All tests executed!"))
	}
}
