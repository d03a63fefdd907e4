package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"latte/internal/app"
	"latte/internal/config"
	"latte/internal/mcpserver"
	"latte/internal/report"
	"latte/internal/runner"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// runFlags holds the run command's flag values. Option flags write into
// opts; they override the config file only when set explicitly.
type runFlags struct {
	opts config.Options

	root       string
	include    string
	exclude    string
	vars       []string
	configPath string
	mcpServer  bool
}

// optionFlag copies one explicitly set flag into the merged options.
type optionFlag struct {
	name  string
	apply func(dst *config.Options, f *runFlags)
}

var optionFlags = []optionFlag{
	{"include", func(d *config.Options, f *runFlags) { d.Include = config.SplitList(f.include) }},
	{"exclude", func(d *config.Options, f *runFlags) { d.Exclude = config.SplitList(f.exclude) }},
	{"test", func(d *config.Options, f *runFlags) { d.Test = f.opts.Test }},
	{"suite", func(d *config.Options, f *runFlags) { d.Suite = f.opts.Suite }},
	{"skip", func(d *config.Options, f *runFlags) { d.Skip = f.opts.Skip }},
	{"watch", func(d *config.Options, f *runFlags) { d.Watch = f.opts.Watch }},
	{"parallel", func(d *config.Options, f *runFlags) { d.Parallel = f.opts.Parallel }},
	{"maxWorkers", func(d *config.Options, f *runFlags) { d.MaxWorkers = f.opts.MaxWorkers }},
	{"debug", func(d *config.Options, f *runFlags) { d.Debug = f.opts.Debug }},
	{"debugPort", func(d *config.Options, f *runFlags) { d.DebugPort = f.opts.DebugPort }},
	{"dom", func(d *config.Options, f *runFlags) { d.DOM = f.opts.DOM }},
	{"react", func(d *config.Options, f *runFlags) { d.React = f.opts.React }},
	{"domEnv", func(d *config.Options, f *runFlags) { d.DOMEnv = f.opts.DOMEnv }},
	{"ts", func(d *config.Options, f *runFlags) { d.TS = f.opts.TS }},
	{"verbose", func(d *config.Options, f *runFlags) { d.Verbose = f.opts.Verbose }},
	{"skipPassed", func(d *config.Options, f *runFlags) { d.SkipPassed = f.opts.SkipPassed }},
	{"showStack", func(d *config.Options, f *runFlags) { d.ShowStack = f.opts.ShowStack }},
	{"clearConsole", func(d *config.Options, f *runFlags) { d.ClearConsole = f.opts.ClearConsole }},
	{"progress", func(d *config.Options, f *runFlags) { d.Progress = f.opts.Progress }},
	{"idea", func(d *config.Options, f *runFlags) { d.Idea = f.opts.Idea }},
	{"coverage", func(d *config.Options, f *runFlags) { d.Coverage = f.opts.Coverage }},
	{"reportType", func(d *config.Options, f *runFlags) { d.ReportType = f.opts.ReportType }},
	{"reportDir", func(d *config.Options, f *runFlags) { d.ReportDir = f.opts.ReportDir }},
	{"reportFile", func(d *config.Options, f *runFlags) { d.ReportFile = f.opts.ReportFile }},
	{"test-timeout", func(d *config.Options, f *runFlags) { d.TestTimeout = f.opts.TestTimeout }},
	{"changed", func(d *config.Options, f *runFlags) { d.Changed = f.opts.Changed }},
	{"changed-base", func(d *config.Options, f *runFlags) { d.ChangedBase = f.opts.ChangedBase }},
}

// completeProgressFlag provides shell completion for the progress flag
func completeProgressFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(runner.ProgressDefault),
		string(runner.ProgressBar),
		string(runner.ProgressDots),
		string(runner.ProgressNone),
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeReportTypeFlag provides shell completion for the reportType flag
func completeReportTypeFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(report.TypeConsole),
		string(report.TypeJSON),
		string(report.TypeJUnit),
		string(report.TypeHTML),
		string(report.TypeLCOV),
	}, cobra.ShellCompDirectiveNoFileComp
}

func newRunCmd() *cobra.Command {
	cmd, _ := newRunCommand()
	return cmd
}

// newRunCommand returns the run command with the flag values it binds.
func newRunCommand() (*cobra.Command, *runFlags) {
	f := &runFlags{opts: config.Default()}

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Discover and run test files",
		Long: `Discovers test files below the root directory and runs them.

Options are read from latte.yaml in the root directory and overridden by
explicitly set flags. Files given as arguments bypass discovery.

Example usage:
  latte run                                   # Run every *.test.yaml and *.spec.yaml
  latte run api/users.test.yaml               # Run one file
  latte run --include "api/**/*.yaml;web/**/*.yaml"
  latte run --parallel --maxWorkers 8         # Run files on 8 workers
  latte run --test login --verbose            # Only tests whose name contains "login"
  latte run --watch                           # Re-run on every change
  latte run --changed --changed-base main     # Only files changed since main
  latte run --reportType junit                # Also write coverage/junit.xml
  latte run --idea                            # TeamCity service messages for IDEs
  latte run --mcp-server                      # Serve MCP on stdio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.root, "root", ".", "Project root directory")
	fl.StringVar(&f.configPath, "config", "", "Config file (default: <root>/latte.yaml)")
	fl.BoolVar(&f.opts.SkipConfigFile, "skipConfigFile", false, "Do not read the config file")
	fl.StringArrayVar(&f.vars, "var", nil, "Template variable for test files, as key=value (repeatable)")

	// Test selection
	fl.StringVar(&f.include, "include", strings.Join(config.DefaultInclude, ";"), "Semicolon-separated glob patterns of test files")
	fl.StringVar(&f.exclude, "exclude", strings.Join(config.DefaultExclude, ";"), "Semicolon-separated glob patterns to ignore")
	fl.StringVar(&f.opts.Test, "test", "", "Run only tests whose name contains this text")
	fl.StringVar(&f.opts.Suite, "suite", "", "Run only suites whose name contains this text")
	fl.StringVar(&f.opts.Skip, "skip", "", "Skip tests whose name contains this text")
	fl.BoolVar(&f.opts.Changed, "changed", false, "Only run test files changed in the git worktree")
	fl.StringVar(&f.opts.ChangedBase, "changed-base", "", "Also include files changed between this revision and HEAD")

	// Execution
	fl.BoolVar(&f.opts.Watch, "watch", false, "Re-run tests when files change")
	fl.BoolVar(&f.opts.Parallel, "parallel", false, "Run test files in parallel")
	fl.IntVar(&f.opts.MaxWorkers, "maxWorkers", config.DefaultMaxWorkers, "Number of parallel file workers")
	fl.DurationVar(&f.opts.TestTimeout, "test-timeout", 0, "Fail tests running longer than this (0 disables)")
	fl.BoolVar(&f.opts.DOM, "dom", false, "Enable DOM matchers")
	fl.BoolVar(&f.opts.React, "react", false, "Enable component rendering (implies --dom)")
	fl.StringVar(&f.opts.DOMEnv, "domEnv", config.DefaultDOMEnv, "DOM environment")
	fl.BoolVar(&f.opts.TS, "ts", false, "Accepted for compatibility, has no effect")

	// Output
	fl.BoolVar(&f.opts.Verbose, "verbose", false, "Print every test result")
	fl.BoolVar(&f.opts.SkipPassed, "skipPassed", false, "Omit passing tests from verbose output")
	fl.BoolVar(&f.opts.ShowStack, "showStack", false, "Print failure stacks")
	fl.BoolVar(&f.opts.ClearConsole, "clearConsole", false, "Clear the console before running")
	fl.StringVar(&f.opts.Progress, "progress", config.DefaultProgress, "Progress indicator (default, bar, dots, none)")
	fl.BoolVar(&f.opts.Idea, "idea", false, "Write TeamCity service messages for IDE integration")
	fl.BoolVar(&f.opts.Debug, "debug", false, "Enable debug logging and the profiler")
	fl.IntVar(&f.opts.DebugPort, "debugPort", config.DefaultDebugPort, "Profiler port")

	// Reporting
	fl.BoolVar(&f.opts.Coverage, "coverage", false, "Collect coverage (not supported)")
	fl.StringVar(&f.opts.ReportType, "reportType", config.DefaultReportType, "Report type (console, json, junit, html, lcov)")
	fl.StringVar(&f.opts.ReportDir, "reportDir", config.DefaultReportDir, "Directory for report files")
	fl.StringVar(&f.opts.ReportFile, "reportFile", "", "Report file name (default depends on the report type)")

	// MCP server mode
	fl.BoolVar(&f.mcpServer, "mcp-server", false, "Run as MCP server (stdio transport)")

	_ = cmd.RegisterFlagCompletionFunc("progress", completeProgressFlag)
	_ = cmd.RegisterFlagCompletionFunc("reportType", completeReportTypeFlag)

	for _, name := range []string{"idea", "watch", "parallel", "test", "suite", "skip"} {
		cmd.MarkFlagsMutuallyExclusive("mcp-server", name)
	}

	return cmd, f
}

// resolveOptions merges the defaults, the config file and the explicitly
// set flags, in that order.
func resolveOptions(cmd *cobra.Command, f *runFlags, args []string) (config.Options, error) {
	var (
		opts config.Options
		err  error
	)
	if f.opts.SkipConfigFile {
		opts = config.Default()
		opts.SkipConfigFile = true
	} else {
		opts, _, err = config.Load(f.root, f.configPath)
		if err != nil {
			return opts, err
		}
	}

	flags := cmd.Flags()
	for _, of := range optionFlags {
		if flags.Changed(of.name) {
			of.apply(&opts, f)
		}
	}

	if len(f.vars) > 0 {
		if opts.Vars == nil {
			opts.Vars = map[string]string{}
		}
		for _, kv := range f.vars {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return opts, fmt.Errorf("invalid --var %q, expected key=value", kv)
			}
			opts.Vars[key] = value
		}
	}
	if len(args) > 0 {
		opts.Files = args
	}
	return opts, nil
}

func runRun(cmd *cobra.Command, f *runFlags, args []string) error {
	opts, err := resolveOptions(cmd, f, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.mcpServer {
		return mcpserver.New(f.root, opts, rootCmd.Version).Start(ctx)
	}

	out := cmd.OutOrStdout()
	if opts.ClearConsole || opts.Idea {
		fmt.Fprint(out, clearScreen)
	}
	if !opts.Idea {
		printBanner(out)
	}

	application, err := app.NewApplication(&app.Config{
		Root:    f.root,
		Options: opts,
		Stdout:  out,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	res, err := application.Run(ctx)
	if err != nil && (res == nil || ctx.Err() == nil) {
		return err
	}
	if ctx.Err() != nil && !opts.Idea {
		fmt.Fprintln(out, text.FgYellow.Sprint("Run interrupted"))
	}
	if res == nil || !res.Completed() || (ctx.Err() != nil && !opts.Watch) {
		return ErrTestsFailed
	}
	return nil
}

func printBanner(w io.Writer) {
	version := rootCmd.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "%s %s\n\n", text.Colors{text.Bold, text.FgHiYellow}.Sprint("latte"), text.FgHiBlack.Sprint(version))
}
