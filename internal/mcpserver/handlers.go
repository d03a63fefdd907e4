package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"latte/internal/app"
	"latte/internal/config"
	"latte/internal/report"
	"latte/internal/runner"
)

// options builds the run options for a tool call from the server's base
// options and the call arguments.
func (s *Server) options(args map[string]interface{}) (string, config.Options, error) {
	opts := s.base
	opts.Watch = false
	opts.Idea = false
	opts.Debug = false
	opts.Verbose = false
	opts.Progress = string(runner.ProgressNone)
	opts.ReportType = string(report.TypeConsole)

	root := s.root
	if r, ok := args["root"].(string); ok && r != "" {
		if filepath.IsAbs(r) {
			root = r
		} else {
			root = filepath.Join(s.root, r)
		}
	}
	if include, ok := args["include"].(string); ok && include != "" {
		opts.Include = config.SplitList(include)
		opts.Files = nil
	}
	if test, ok := args["test"].(string); ok {
		opts.Test = test
	}
	if suite, ok := args["suite"].(string); ok {
		opts.Suite = suite
	}
	if skip, ok := args["skip"].(string); ok {
		opts.Skip = skip
	}
	if parallel, ok := args["parallel"].(bool); ok {
		opts.Parallel = parallel
	}
	if workers, ok := args["maxWorkers"].(float64); ok {
		if workers < 1 {
			return "", opts, fmt.Errorf("maxWorkers must be at least 1")
		}
		opts.MaxWorkers = int(workers)
	}
	return root, opts, nil
}

func (s *Server) newApplication(args map[string]interface{}) (*app.Application, error) {
	root, opts, err := s.options(args)
	if err != nil {
		return nil, err
	}
	return app.NewApplication(&app.Config{
		Root:    root,
		Options: opts,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		Silent:  true,
	})
}

// handleRun handles the latte_run MCP tool
func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.newApplication(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid run options: %v", err)), nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := a.Run(runCtx)
	if res != nil {
		s.store.add(report.NewEnvelope(res, true))
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return mcp.NewToolResultError(fmt.Sprintf("Test run timed out after %v", s.timeout)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Test run failed: %v", err)), nil
	}

	env, _ := s.store.latest()
	return jsonResult(env, "test results")
}

type suiteInfo struct {
	Name  string   `json:"name"`
	Tests []string `json:"tests"`
}

type fileInfo struct {
	File   string      `json:"file"`
	Path   string      `json:"path"`
	Suites []suiteInfo `json:"suites,omitempty"`
	Tests  []string    `json:"tests,omitempty"`
}

// handleList handles the latte_list MCP tool
func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.newApplication(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid options: %v", err)), nil
	}
	files, err := a.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load test files: %v", err)), nil
	}

	list := make([]fileInfo, 0, len(files))
	for _, f := range files {
		info := fileInfo{File: f.Key, Path: f.Path}
		for _, suite := range f.Describe {
			si := suiteInfo{Name: suite.Name, Tests: make([]string, 0, len(suite.Tests))}
			for _, t := range suite.Tests {
				si.Tests = append(si.Tests, t.Name)
			}
			info.Suites = append(info.Suites, si)
		}
		for _, t := range f.Tests {
			info.Tests = append(info.Tests, t.Name)
		}
		list = append(list, info)
	}
	return jsonResult(list, "test files")
}

// handleResults handles the latte_results MCP tool
func (s *Server) handleResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if runID, ok := args["run_id"].(string); ok && runID != "" {
		env, found := s.store.get(runID)
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("No results for run %s", runID)), nil
		}
		return jsonResult(env, "test results")
	}

	env, found := s.store.latest()
	if !found {
		return mcp.NewToolResultText("No test results available. Run tests first using latte_run."), nil
	}
	return jsonResult(env, "test results")
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
