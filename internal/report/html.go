package report

import (
	"html/template"
	"io"
	"time"
)

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms":    func(d time.Duration) int64 { return d.Milliseconds() },
	"entry": func(suite string, t TestReport) row { return row{Suite: suite, Test: t} },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Latte test report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; width: 100%; }
th, td { border: 1px solid #ddd; padding: .35rem .6rem; text-align: left; vertical-align: top; }
th { background: #f4f4f4; }
.passed { color: #1a7f37; }
.failed { color: #cf222e; }
.skipped { color: #9a6700; }
pre { margin: .3rem 0 0; white-space: pre-wrap; font-size: .85rem; }
.summary span { margin-right: 1.2rem; }
</style>
</head>
<body>
<h1>Latte test report</h1>
<p class="summary">
<span>Run: {{.RunID}}</span>
<span>Files: {{.Summary.Files}}</span>
<span>Total: {{.Summary.Total}}</span>
<span class="passed">Passed: {{.Summary.Passed}}</span>
<span class="failed">Failed: {{.Summary.Failed}}</span>
<span class="skipped">Skipped: {{.Summary.Skipped}}</span>
<span>Duration: {{ms .Duration}} ms</span>
</p>
{{range .Files}}
<h2 class="{{if .Completed}}passed{{else}}failed{{end}}">{{.File}}</h2>
<table>
<tr><th>Suite</th><th>Test</th><th>Status</th><th>Duration</th><th>Details</th></tr>
{{range $s := .Describes}}{{range .Tests}}{{template "row" entry $s.Name .}}{{end}}{{end}}
{{range .Tests}}{{template "row" entry "" .}}{{end}}
</table>
{{end}}
</body>
</html>
{{define "row"}}<tr>
<td>{{.Suite}}</td>
<td>{{.Test.Name}}</td>
<td class="{{.Test.Status}}">{{.Test.Status}}</td>
<td>{{ms .Test.Duration}} ms</td>
<td>{{if ne .Test.Status "passed"}}{{.Test.Message}}{{end}}{{if .Test.Diff}}<pre>{{.Test.Diff}}</pre>{{else if or .Test.Expected .Test.Received}}<pre>Expected: {{.Test.Expected}}
Received: {{.Test.Received}}</pre>{{end}}{{if .Test.Stack}}<pre>{{.Test.Stack}}</pre>{{end}}</td>
</tr>
{{end}}`))

type row struct {
	Suite string
	Test  TestReport
}

// WriteHTML writes a self-contained results page.
func WriteHTML(w io.Writer, env *Envelope) error {
	return page.Execute(w, env)
}
