// Package mcpserver serves latte over the Model Context Protocol so that AI
// assistants can run and inspect tests.
//
// The server speaks MCP on stdin and stdout and exposes three tools:
//
//   - latte_run runs test files and returns the JSON result envelope. The
//     optional arguments root, include, test, suite, skip, parallel and
//     maxWorkers override the options the server was started with.
//   - latte_list returns the discovered files with their suite and test
//     names, without running anything.
//   - latte_results returns the envelope of the last run, or of an earlier
//     run when run_id is given. The most recent runs are kept in memory.
//
// Runs are serialized. Logging is silenced and runner output discarded, so
// stdout only ever carries protocol messages.
package mcpserver
