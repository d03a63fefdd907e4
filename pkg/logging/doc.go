// Package logging provides the structured logger shared by the latte runner,
// reporters and CLI.
//
// It is a thin layer over log/slog. Every entry carries a subsystem
// attribute so output can be filtered by component:
//
//   - **Runner**: test scheduling and per-file execution
//   - **Hooks**: lifecycle hook failures (logged, never fatal)
//   - **Discovery**: test file globbing and git change detection
//   - **Watch**: file system notifications in watch mode
//   - **Report**: reporter output files
//   - **Config**: option defaults and latte.yaml loading
//   - **Testfile**: YAML test file parsing, steps and requests
//   - **Intercept**: HTTP interception in mocks
//   - **Bootstrap**: application setup
//   - **Debug**: the pprof server
//
// # Usage
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Debug("Discovery", "matched %d files", len(files))
//	logging.Warn("Hooks", "beforeEach failed in %s: %v", suite, err)
//	logging.Error("Report", err, "cannot write %s", path)
//
// In IDE mode the CLI points the logger at stderr so stdout only carries
// protocol lines. MCP server mode calls InitSilent.
//
// Until one of the Init functions runs, all entries are dropped.
package logging
