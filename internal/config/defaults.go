package config

import "strings"

const (
	// FileName is the config file looked up in the project root.
	FileName = "latte.yaml"

	DefaultMaxWorkers = 4
	DefaultDebugPort  = 9229
	DefaultProgress   = "default"
	DefaultReportType = "console"
	DefaultReportDir  = "coverage"
	DefaultDOMEnv     = "html"
)

// DefaultInclude matches the declarative test file extensions.
var DefaultInclude = []string{"**/*.test.yaml", "**/*.spec.yaml", "**/*.test.yml", "**/*.spec.yml"}

var DefaultExclude = []string{"vendor/**", "node_modules/**", ".git/**"}

// Default returns the built-in options.
func Default() Options {
	return Options{
		Include:    append([]string(nil), DefaultInclude...),
		Exclude:    append([]string(nil), DefaultExclude...),
		MaxWorkers: DefaultMaxWorkers,
		DebugPort:  DefaultDebugPort,
		DOMEnv:     DefaultDOMEnv,
		Progress:   DefaultProgress,
		ReportType: DefaultReportType,
		ReportDir:  DefaultReportDir,
	}
}

// SplitList splits a semicolon-separated pattern list, as the include and
// exclude flags take it, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
