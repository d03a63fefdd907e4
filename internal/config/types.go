package config

import "time"

// Options holds every run option. Field names match the latte.yaml keys
// and the command-line flags.
type Options struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Files   []string `yaml:"files,omitempty"`

	Test  string `yaml:"test,omitempty"`
	Suite string `yaml:"suite,omitempty"`
	Skip  string `yaml:"skip,omitempty"`

	Watch      bool `yaml:"watch,omitempty"`
	Parallel   bool `yaml:"parallel,omitempty"`
	MaxWorkers int  `yaml:"maxWorkers"`

	Debug     bool `yaml:"debug,omitempty"`
	DebugPort int  `yaml:"debugPort"`

	DOM    bool   `yaml:"dom,omitempty"`
	React  bool   `yaml:"react,omitempty"`
	DOMEnv string `yaml:"domEnv"`
	// TS is accepted for compatibility with existing config files
	TS bool `yaml:"ts,omitempty"`

	Verbose      bool   `yaml:"verbose,omitempty"`
	SkipPassed   bool   `yaml:"skipPassed,omitempty"`
	ShowStack    bool   `yaml:"showStack,omitempty"`
	ClearConsole bool   `yaml:"clearConsole,omitempty"`
	Progress     string `yaml:"progress"`
	Idea         bool   `yaml:"idea,omitempty"`

	Coverage   bool   `yaml:"coverage,omitempty"`
	ReportType string `yaml:"reportType"`
	ReportDir  string `yaml:"reportDir"`
	ReportFile string `yaml:"reportFile,omitempty"`

	SkipConfigFile bool          `yaml:"skipConfigFile,omitempty"`
	TestTimeout    time.Duration `yaml:"testTimeout,omitempty"`

	// Changed restricts discovery to files git reports as changed,
	// optionally since ChangedBase
	Changed     bool   `yaml:"changed,omitempty"`
	ChangedBase string `yaml:"changedBase,omitempty"`

	Vars map[string]string `yaml:"vars,omitempty"`
}
