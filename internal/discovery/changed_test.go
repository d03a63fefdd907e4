package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAll(t *testing.T, repo *gogit.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Latte", Email: "latte@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestChanged(t *testing.T) {
	root := t.TempDir()
	repo, err := gogit.PlainInit(root, false)
	require.NoError(t, err)

	writeTree(t, root, "a.test.yaml", "b.test.yaml", "sub/x.test.yaml")
	commitAll(t, repo, "initial")
	writeTree(t, root, "c.test.yaml")
	commitAll(t, repo, "add c")

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.test.yaml"), []byte("name: changed\n"), 0o644))
	writeTree(t, root, "d.test.yaml")
	require.NoError(t, os.Remove(filepath.Join(root, "b.test.yaml")))

	t.Run("worktree only", func(t *testing.T) {
		got, err := Changed(root, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.test.yaml", "d.test.yaml"}, got)
	})

	t.Run("since base revision", func(t *testing.T) {
		got, err := Changed(root, "HEAD~1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.test.yaml", "c.test.yaml", "d.test.yaml"}, got)
	})

	t.Run("subdirectory root", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "x.test.yaml"), []byte("name: y\n"), 0o644))
		got, err := Changed(filepath.Join(root, "sub"), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"x.test.yaml"}, got)
	})

	t.Run("unknown revision", func(t *testing.T) {
		_, err := Changed(root, "no-such-branch")
		assert.ErrorContains(t, err, "failed to resolve revision no-such-branch")
	})
}

func TestChangedNotARepository(t *testing.T) {
	_, err := Changed(t.TempDir(), "")
	assert.ErrorContains(t, err, "failed to open git repository")
}
