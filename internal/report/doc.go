// Package report renders a run's result tree.
//
// The console report is always printed: a failure tree for every file that
// did not complete, then a summary table. The json, junit and html types
// additionally write a file below the report directory. JSON output uses
// Envelope, which is also what the MCP server returns.
package report
