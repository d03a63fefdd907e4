package discovery

import (
	"fmt"
	"path/filepath"
	"slices"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"latte/pkg/logging"
)

// Changed lists the files modified, added or untracked in the git worktree
// containing root. With a base revision, files changed between base and
// HEAD are added too. Paths are slash-separated and relative to root;
// files outside root and deleted files are left out.
func Changed(root, base string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(absRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", root, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	wtRoot := wt.Filesystem.Root()

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var changed []string
	for path, st := range status {
		if st.Worktree == gogit.Deleted || st.Staging == gogit.Deleted {
			continue
		}
		if st.Worktree == gogit.Unmodified && st.Staging == gogit.Unmodified {
			continue
		}
		changed = append(changed, path)
	}

	if base != "" {
		names, err := diffNames(repo, base)
		if err != nil {
			return nil, err
		}
		changed = append(changed, names...)
	}

	var out []string
	for _, p := range changed {
		rel, err := filepath.Rel(absRoot, filepath.Join(wtRoot, filepath.FromSlash(p)))
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	out = slices.Compact(out)
	logging.Debug("Discovery", "%d changed files in %s", len(out), wtRoot)
	return out, nil
}

// diffNames returns the paths that differ between base and HEAD, skipping
// deletions.
func diffNames(repo *gogit.Repository, base string) ([]string, error) {
	baseTree, err := treeAt(repo, base)
	if err != nil {
		return nil, err
	}
	headTree, err := treeAt(repo, "HEAD")
	if err != nil {
		return nil, err
	}
	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..HEAD: %w", base, err)
	}
	var names []string
	for _, c := range changes {
		if c.To.Name != "" {
			names = append(names, c.To.Name)
		}
	}
	return names, nil
}

func treeAt(repo *gogit.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", rev, err)
	}
	return commit.Tree()
}
