package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0o644))
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.test.yaml",
		"sub/b.test.yaml",
		"sub/deep/c.test.yaml",
		"sub/skip.test.yaml",
		"node_modules/pkg/d.test.yaml",
		"vendor/e.test.yaml",
		".git/f.test.yaml",
		"README.md",
	)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "all test files",
			opts: Options{Include: []string{"**/*.test.yaml"}},
			want: []string{"a.test.yaml", "sub/b.test.yaml", "sub/deep/c.test.yaml", "sub/skip.test.yaml"},
		},
		{
			name: "exclude pattern",
			opts: Options{Include: []string{"**/*.test.yaml"}, Exclude: []string{"**/skip.*", "sub/deep/**"}},
			want: []string{"a.test.yaml", "sub/b.test.yaml"},
		},
		{
			name: "several includes overlap",
			opts: Options{Include: []string{"sub/*.test.yaml", "**/b.test.yaml"}},
			want: []string{"sub/b.test.yaml", "sub/skip.test.yaml"},
		},
		{
			name: "no include matches nothing",
			opts: Options{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(context.Background(), root, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.test.yaml", "sub/b.test.yaml")

	got, err := Find(context.Background(), root, Options{
		Include: []string{"nothing"},
		Files:   []string{"sub/b.test.yaml", filepath.Join(root, "a.test.yaml"), "a.test.yaml"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.test.yaml", "sub/b.test.yaml"}, got)

	_, err = Find(context.Background(), root, Options{Files: []string{"missing.test.yaml"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Find(context.Background(), root, Options{Files: []string{"sub"}})
	assert.ErrorContains(t, err, "is a directory")
}

func TestFindBadPattern(t *testing.T) {
	_, err := Find(context.Background(), t.TempDir(), Options{Include: []string{"[a-"}})
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestFindCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.test.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find(ctx, root, Options{Include: []string{"**/*.yaml"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcluded(t *testing.T) {
	opts := Options{Exclude: []string{"fixtures/**"}}
	assert.True(t, opts.Excluded("node_modules/x.test.yaml"))
	assert.True(t, opts.Excluded("a/vendor/x.test.yaml"))
	assert.True(t, opts.Excluded("fixtures/x.test.yaml"))
	assert.False(t, opts.Excluded("src/x.test.yaml"))
}

func TestIntersect(t *testing.T) {
	got := Intersect(
		[]string{"a.test.yaml", "b.test.yaml", "c.test.yaml"},
		[]string{"c.test.yaml", "main.go", "a.test.yaml"},
	)
	assert.Equal(t, []string{"a.test.yaml", "c.test.yaml"}, got)
	assert.Empty(t, Intersect([]string{"a.test.yaml"}, nil))
}
