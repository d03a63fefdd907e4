package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.InitSilent()
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	opts, path, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), opts)
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
include:
  - "tests/**/*.test.yaml"
parallel: true
maxWorkers: 8
reportType: junit
testTimeout: 2s
vars:
  baseURL: http://localhost
`)
	opts, path, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Equal(t, []string{"tests/**/*.test.yaml"}, opts.Include)
	assert.Equal(t, DefaultExclude, opts.Exclude)
	assert.True(t, opts.Parallel)
	assert.Equal(t, 8, opts.MaxWorkers)
	assert.Equal(t, "junit", opts.ReportType)
	assert.Equal(t, 2*time.Second, opts.TestTimeout)
	assert.Equal(t, DefaultDebugPort, opts.DebugPort)
	assert.Equal(t, map[string]string{"baseURL": "http://localhost"}, opts.Vars)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, _, err := Load(t.TempDir(), "custom.yaml")
		require.Error(t, err)
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "io", ce.ErrorType)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown key", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "paralel: true\n")
		_, _, err := Load(dir, "")
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "parse", ce.ErrorType)
		assert.Equal(t, 1, ce.LineNumber)
		assert.Contains(t, err.Error(), "latte.yaml:1:")
	})

	t.Run("wrong type", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "verbose: true\nmaxWorkers: many\n")
		_, _, err := Load(dir, "")
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 2, ce.LineNumber)
	})
}

func TestLoadExplicitRelativePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte("verbose: true\n"), 0o644))
	opts, path, err := Load(dir, "ci.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ci.yaml"), path)
	assert.True(t, opts.Verbose)
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	opts, _, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	opts, _, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)

	_, err = Init(dir)
	assert.True(t, errors.Is(err, ErrConfigExists))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Options
		check func(t *testing.T, o Options)
	}{
		{
			name:  "react implies dom",
			in:    Options{React: true},
			check: func(t *testing.T, o Options) { assert.True(t, o.DOM) },
		},
		{
			name:  "unknown report type falls back to console",
			in:    Options{ReportType: "xml"},
			check: func(t *testing.T, o Options) { assert.Equal(t, "console", o.ReportType) },
		},
		{
			name:  "known report type kept",
			in:    Options{ReportType: "html"},
			check: func(t *testing.T, o Options) { assert.Equal(t, "html", o.ReportType) },
		},
		{
			name:  "empty include restored",
			in:    Options{},
			check: func(t *testing.T, o Options) { assert.Equal(t, DefaultInclude, o.Include) },
		},
		{
			name:  "explicit files keep include empty",
			in:    Options{Files: []string{"a.test.yaml"}},
			check: func(t *testing.T, o Options) { assert.Empty(t, o.Include) },
		},
		{
			name:  "changed base implies changed",
			in:    Options{ChangedBase: "main"},
			check: func(t *testing.T, o Options) { assert.True(t, o.Changed) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.in
			o.Normalize()
			tt.check(t, o)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		fields []string
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "bad progress", mutate: func(o *Options) { o.Progress = "fancy" }, fields: []string{"progress"}},
		{name: "no workers", mutate: func(o *Options) { o.MaxWorkers = 0 }, fields: []string{"maxWorkers"}},
		{name: "negative timeout", mutate: func(o *Options) { o.TestTimeout = -time.Second }, fields: []string{"testTimeout"}},
		{name: "bad dom env", mutate: func(o *Options) { o.DOMEnv = "jsdom" }, fields: []string{"domEnv"}},
		{name: "bad port", mutate: func(o *Options) { o.DebugPort = 70000 }, fields: []string{"debugPort"}},
		{name: "bad pattern", mutate: func(o *Options) { o.Exclude = []string{"ok/**", "[a-"} }, fields: []string{"exclude[1]"}},
		{
			name: "several",
			mutate: func(o *Options) {
				o.Include = []string{"[z"}
				o.MaxWorkers = -1
			},
			fields: []string{"maxWorkers", "include[0]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Default()
			tt.mutate(&o)
			err := o.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())
	errs.Add("a", "is bad")
	assert.Equal(t, "field 'a': is bad", errs.Error())
	errs.Add("", "plain")
	assert.Equal(t, "validation failed: field 'a': is bad; plain", errs.Error())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a/**", "b.yaml"}, SplitList(" a/** ;;b.yaml;"))
	assert.Nil(t, SplitList(""))
}
