package mcpserver

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"latte/internal/config"
	"latte/pkg/logging"
)

// DefaultRunTimeout bounds a single latte_run call.
const DefaultRunTimeout = 5 * time.Minute

// Server exposes latte runs as MCP tools over stdio.
type Server struct {
	mcpServer *server.MCPServer

	root    string
	base    config.Options
	timeout time.Duration

	// runMu serializes runs. HTTP interception and the registry are
	// process-wide.
	runMu sync.Mutex
	store *resultStore
}

// Option configures a Server.
type Option func(*Server)

// WithRunTimeout overrides DefaultRunTimeout.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a server whose tools run below root. Tool arguments override
// base.
func New(root string, base config.Options, version string, opts ...Option) *Server {
	mcpServer := server.NewMCPServer(
		"latte",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		mcpServer: mcpServer,
		root:      root,
		base:      base,
		timeout:   DefaultRunTimeout,
		store:     newResultStore(DefaultStoreSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves MCP on stdin and stdout until ctx is done or stdin closes.
// Logging is silenced first so that stdout only carries protocol messages.
func (s *Server) Start(ctx context.Context) error {
	logging.InitSilent()
	return server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	runTool := mcp.NewTool("latte_run",
		mcp.WithDescription("Run latte test files and return the JSON result envelope"),
		mcp.WithString("root",
			mcp.Description("Directory to discover test files in (defaults to the server's root)"),
		),
		mcp.WithString("include",
			mcp.Description("Semicolon-separated glob patterns selecting test files"),
		),
		mcp.WithString("test",
			mcp.Description("Run only tests whose name contains this text"),
		),
		mcp.WithString("suite",
			mcp.Description("Run only suites whose name contains this text"),
		),
		mcp.WithString("skip",
			mcp.Description("Skip tests whose name contains this text"),
		),
		mcp.WithBoolean("parallel",
			mcp.Description("Run files in parallel"),
		),
		mcp.WithNumber("maxWorkers",
			mcp.Description("Number of parallel file workers"),
		),
	)
	s.mcpServer.AddTool(runTool, s.handleRun)

	listTool := mcp.NewTool("latte_list",
		mcp.WithDescription("List discovered test files with their suites and tests"),
		mcp.WithString("root",
			mcp.Description("Directory to discover test files in (defaults to the server's root)"),
		),
		mcp.WithString("include",
			mcp.Description("Semicolon-separated glob patterns selecting test files"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleList)

	resultsTool := mcp.NewTool("latte_results",
		mcp.WithDescription("Retrieve the result envelope of the last run, or of a run by ID"),
		mcp.WithString("run_id",
			mcp.Description("Run ID returned by latte_run"),
		),
	)
	s.mcpServer.AddTool(resultsTool, s.handleResults)
}
