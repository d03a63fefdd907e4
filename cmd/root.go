package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates every test file completed.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (bad options, unreadable files).
	ExitCodeError = 1
	// ExitCodeTestsFailed indicates at least one test file did not complete.
	ExitCodeTestsFailed = 1
)

// ErrTestsFailed is returned by the run command when a test file did not
// complete.
var ErrTestsFailed = errors.New("tests failed")

// rootCmd represents the base command for the latte application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "latte",
	Short: "Run declarative test suites",
	Long: `latte discovers YAML test files, runs their suites and tests sequentially,
in parallel or for an IDE, and reports the results on the console or as
JSON, JUnit XML or HTML.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "latte version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if errors.Is(err, ErrTestsFailed) {
		return ExitCodeTestsFailed
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newRunCmd())
}
