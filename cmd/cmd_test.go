package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/internal/config"
)

func TestMain(m *testing.M) {
	text.DisableColors()
	os.Exit(m.Run())
}

const passingFile = `
tests:
  - name: adds
    expect:
      - value: 2
        matcher: toBe
        args: [2]
`

const failingFile = `
tests:
  - name: compares
    expect:
      - value: 1
        matcher: toBe
        args: [2]
`

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// parsed returns the options a run command would use for args.
func parsed(t *testing.T, args ...string) (config.Options, error) {
	t.Helper()
	cmd, f := newRunCommand()
	require.NoError(t, cmd.ParseFlags(args))
	return resolveOptions(cmd, f, cmd.Flags().Args())
}

func TestResolveOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "parallel: true\nmaxWorkers: 8\nverbose: true\nvars:\n  env: ci\n")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o config.Options)
	}{
		{
			name: "config file over defaults",
			args: []string{"--root", dir},
			check: func(t *testing.T, o config.Options) {
				assert.True(t, o.Parallel)
				assert.Equal(t, 8, o.MaxWorkers)
				assert.True(t, o.Verbose)
				assert.Equal(t, config.DefaultInclude, o.Include)
				assert.Equal(t, config.DefaultReportType, o.ReportType)
			},
		},
		{
			name: "explicit flags over config file",
			args: []string{"--root", dir, "--maxWorkers", "2", "--verbose=false", "--test-timeout", "3s"},
			check: func(t *testing.T, o config.Options) {
				assert.True(t, o.Parallel)
				assert.Equal(t, 2, o.MaxWorkers)
				assert.False(t, o.Verbose)
				assert.Equal(t, 3*time.Second, o.TestTimeout)
			},
		},
		{
			name: "skip config file",
			args: []string{"--root", dir, "--skipConfigFile"},
			check: func(t *testing.T, o config.Options) {
				assert.False(t, o.Parallel)
				assert.Equal(t, config.DefaultMaxWorkers, o.MaxWorkers)
				assert.True(t, o.SkipConfigFile)
			},
		},
		{
			name: "pattern lists",
			args: []string{"--root", dir, "--include", "a/**/*.yaml; b/*.yaml", "--exclude", "tmp/**"},
			check: func(t *testing.T, o config.Options) {
				assert.Equal(t, []string{"a/**/*.yaml", "b/*.yaml"}, o.Include)
				assert.Equal(t, []string{"tmp/**"}, o.Exclude)
			},
		},
		{
			name: "vars merge",
			args: []string{"--root", dir, "--var", "user=bob", "--var", "env=local"},
			check: func(t *testing.T, o config.Options) {
				assert.Equal(t, map[string]string{"env": "local", "user": "bob"}, o.Vars)
			},
		},
		{
			name: "positional files",
			args: []string{"--root", dir, "one.test.yaml", "two.test.yaml"},
			check: func(t *testing.T, o config.Options) {
				assert.Equal(t, []string{"one.test.yaml", "two.test.yaml"}, o.Files)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parsed(t, tt.args...)
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestResolveOptionsErrors(t *testing.T) {
	_, err := parsed(t, "--root", t.TempDir(), "--var", "novalue")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = parsed(t, "--root", t.TempDir(), "--config", "missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCommand(t *testing.T) {
	t.Run("passing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "math.test.yaml", passingFile)
		out, _, err := execute(t, newRunCmd(), "--root", dir, "--progress", "none")
		require.NoError(t, err)
		assert.Contains(t, out, "latte")
		assert.Contains(t, out, "Total files processed: 1")
	})

	t.Run("failing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "math.test.yaml", passingFile)
		writeFile(t, dir, "cmp.test.yaml", failingFile)
		out, _, err := execute(t, newRunCmd(), "--root", dir, "--progress", "none")
		require.ErrorIs(t, err, ErrTestsFailed)
		assert.Equal(t, ExitCodeTestsFailed, getExitCode(err))
		assert.Contains(t, out, "compares >>> Values are not equal: expected 2, received 1 <<<")
	})

	t.Run("idea", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "math.test.yaml", passingFile)
		out, _, err := execute(t, newRunCmd(), "--root", dir, "--idea")
		require.NoError(t, err)
		out = strings.TrimPrefix(out, clearScreen)
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			assert.True(t, strings.HasPrefix(line, "##teamcity["), line)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		_, _, err := execute(t, newRunCmd(), "--root", t.TempDir(), "--progress", "fancy")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTestsFailed)
		assert.Contains(t, err.Error(), "progress")
	})

	t.Run("mcp server excludes watch", func(t *testing.T) {
		_, _, err := execute(t, newRunCmd(), "--mcp-server", "--watch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mcp-server")
	})
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	out, _, err := execute(t, newInitCmd(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+filepath.Join(dir, config.FileName))

	opts, path, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Equal(t, config.Default(), opts)

	_, _, err = execute(t, newInitCmd(), dir)
	assert.ErrorIs(t, err, config.ErrConfigExists)
}

func TestVersionCommand(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()
	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())

	out, _, err := execute(t, newVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "latte version 1.2.3-test\n", out)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "latte", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "init", "version"})
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeError, getExitCode(errors.New("boom")))
	assert.Equal(t, ExitCodeTestsFailed, getExitCode(ErrTestsFailed))
}
