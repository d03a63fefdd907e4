package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/config"
	"latte/internal/report"
	"latte/pkg/logging"
)

func TestMain(m *testing.M) {
	text.DisableColors()
	logging.InitSilent()
	os.Exit(m.Run())
}

const mathFile = `
describe:
  - name: Math
    tests:
      - name: adds
        expect:
          - value: 2
            matcher: toBe
            args: [2]
      - name: subtracts
        expect:
          - value: 1
            matcher: toBe
            args: [0]
tests:
  - name: flat
    expect:
      - value: [1, 2]
        matcher: hasLength
        args: [2]
`

func setup(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.test.yaml"), []byte(mathFile), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "other"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other", "more.test.yaml"), []byte(mathFile), 0o644))
	return New(dir, config.Default(), "test"), dir
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func decodeEnvelope(t *testing.T, res *mcp.CallToolResult) report.Envelope {
	t.Helper()
	var env report.Envelope
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &env))
	return env
}

func TestHandleRun(t *testing.T) {
	s, _ := setup(t)

	tests := []struct {
		name    string
		args    map[string]interface{}
		files   int
		total   int
		failed  int
		skipped int
	}{
		{name: "all files", args: nil, files: 2, total: 6, failed: 2},
		{name: "include", args: map[string]interface{}{"include": "other/**/*.yaml; "}, files: 1, total: 3, failed: 1},
		{name: "root", args: map[string]interface{}{"root": "other"}, files: 1, total: 3, failed: 1},
		{name: "test filter", args: map[string]interface{}{"test": "adds"}, files: 2, total: 2, skipped: 4},
		{name: "parallel", args: map[string]interface{}{"parallel": true, "maxWorkers": float64(2)}, files: 2, total: 6, failed: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleRun(context.Background(), call(tt.args))
			require.NoError(t, err)
			require.False(t, res.IsError, resultText(t, res))

			env := decodeEnvelope(t, res)
			assert.NotEmpty(t, env.RunID)
			assert.Equal(t, tt.files, env.Summary.Files)
			assert.Equal(t, tt.total, env.Summary.Total)
			assert.Equal(t, tt.failed, env.Summary.Failed)
			assert.Equal(t, tt.skipped, env.Summary.Skipped)
		})
	}
}

func TestHandleRunErrors(t *testing.T) {
	s, dir := setup(t)

	res, err := s.handleRun(context.Background(), call(map[string]interface{}{"maxWorkers": float64(0)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "maxWorkers must be at least 1")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.test.yaml"), []byte("tests: ["), 0o644))
	res, err = s.handleRun(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Test run failed")
}

func TestHandleRunTimeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slow.test.yaml"), []byte(`
tests:
  - name: waits
    intercept:
      mode: fetch
      routes:
        - url: http://slow.example/
          delay: 2s
    request:
      url: http://slow.example/
    expect:
      - ref: response.status
        matcher: toBe
        args: [200]
`), 0o644))
	s := New(dir, config.Default(), "test", WithRunTimeout(100*time.Millisecond))

	res, err := s.handleRun(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "timed out after 100ms")
}

func TestHandleList(t *testing.T) {
	s, _ := setup(t)

	res, err := s.handleList(context.Background(), call(map[string]interface{}{"include": "math.test.yaml"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var files []fileInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "math.test.yaml", files[0].File)
	assert.Equal(t, []suiteInfo{{Name: "Math", Tests: []string{"adds", "subtracts"}}}, files[0].Suites)
	assert.Equal(t, []string{"flat"}, files[0].Tests)
}

func TestHandleResults(t *testing.T) {
	s, _ := setup(t)

	res, err := s.handleResults(context.Background(), call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "No test results available")

	first, err := s.handleRun(context.Background(), call(map[string]interface{}{"root": "other"}))
	require.NoError(t, err)
	firstEnv := decodeEnvelope(t, first)
	_, err = s.handleRun(context.Background(), call(nil))
	require.NoError(t, err)

	res, err = s.handleResults(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, decodeEnvelope(t, res).Summary.Files)

	res, err = s.handleResults(context.Background(), call(map[string]interface{}{"run_id": firstEnv.RunID}))
	require.NoError(t, err)
	assert.Equal(t, firstEnv.RunID, decodeEnvelope(t, res).RunID)
	assert.Equal(t, 1, decodeEnvelope(t, res).Summary.Files)

	res, err = s.handleResults(context.Background(), call(map[string]interface{}{"run_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServerOverMCP(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "latte-test", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"latte_run", "latte_list", "latte_results"}, names)

	req := mcp.CallToolRequest{}
	req.Params.Name = "latte_run"
	req.Params.Arguments = map[string]interface{}{"suite": "Math"}
	res, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, 4, env.Summary.Total)
	assert.Equal(t, 2, env.Summary.Failed)
}
