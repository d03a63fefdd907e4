// Package app runs latte test files: the run(rootDir, options) entry point
// behind the run command and the MCP server.
//
// An Application is built in two phases:
//
//  1. Bootstrap (NewApplication): resolve the root, normalize and validate
//     the options, configure logging and create the Services.
//  2. Execution (Run): discover test files, parse them through the
//     loader's cache, register them in a freshly cleared registry, run the
//     queue with the runner the options select, and write the report.
//
// # Runners
//
// The idea option selects the IDE runner, which writes TeamCity service
// messages to stdout; the console report is suppressed and logs go to
// stderr. Otherwise parallel selects the parallel runner and the default is
// the sequential runner.
//
// # Watch mode
//
// With watch set, Run keeps the application alive after the first run.
// Every debounced batch of file changes invalidates the loader's cache for
// those files and triggers a complete re-run, so new and deleted test files
// are picked up. OnResult observes each run.
//
// # Debugging
//
// With debug set, the pprof handlers are served on
// 127.0.0.1:<debugPort>/debug/pprof/ for the lifetime of Run.
package app
