package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"latte/internal/runner"
	"latte/pkg/expect"
)

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Skipped  int          `xml:"skipped,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr,omitempty"`
	File      string      `xml:"file,attr,omitempty"`
	Cases     []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	File      string        `xml:"file,attr,omitempty"`
	Line      int           `xml:"line,attr,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// WriteJUnit writes res as JUnit XML. Every suite becomes a testsuite, and
// a file's flat tests form one more testsuite named after the file.
func WriteJUnit(w io.Writer, res *runner.RunResult) error {
	doc := junitSuites{
		Name:     "latte",
		Tests:    res.Total + res.Skipped,
		Failures: res.Failed,
		Skipped:  res.Skipped,
		Time:     seconds(res.Duration),
	}
	for _, f := range res.Files {
		for _, s := range f.Describes {
			doc.Suites = append(doc.Suites, junitSuiteOf(s.Name, f, s.Tests, s.Duration))
		}
		if len(f.Tests) > 0 {
			var d time.Duration
			for _, t := range f.Tests {
				d += t.Duration
			}
			doc.Suites = append(doc.Suites, junitSuiteOf(f.File, f, f.Tests, d))
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func junitSuiteOf(name string, f *runner.FileResult, tests []runner.TestResult, d time.Duration) junitSuite {
	s := junitSuite{
		Name:  name,
		Tests: len(tests),
		Time:  seconds(d),
		File:  f.Path,
	}
	if !f.StartTime.IsZero() {
		s.Timestamp = f.StartTime.UTC().Format("2006-01-02T15:04:05")
	}
	for _, t := range tests {
		c := junitCase{
			Name:      t.Name,
			Classname: f.File,
			Time:      seconds(t.Duration),
			File:      t.Location.File,
			Line:      t.Location.Line,
		}
		switch {
		case t.Skipped:
			s.Skipped++
			c.Skipped = &junitSkipped{Message: t.Message}
		case !t.Result:
			s.Failures++
			c.Failure = &junitFailure{Message: t.Message, Type: "AssertionError", Text: failureText(t)}
		}
		s.Cases = append(s.Cases, c)
	}
	return s
}

func failureText(t runner.TestResult) string {
	out := t.Message
	if t.Expected != nil || t.Received != nil {
		out += fmt.Sprintf("\nExpected: %s\nReceived: %s", expect.Format(t.Expected), expect.Format(t.Received))
	}
	if t.Stack != "" {
		out += "\n" + t.Stack
	}
	return out
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
