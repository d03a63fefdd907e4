package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"latte/pkg/logging"
)

// SkipDirs are never descended into.
var SkipDirs = []string{".git", "vendor", "node_modules"}

// ErrBadPattern is returned for an include or exclude pattern doublestar
// cannot parse.
var ErrBadPattern = errors.New("invalid glob pattern")

// Options select test files below a root directory.
type Options struct {
	// Include patterns are matched against slash-separated paths relative
	// to the root
	Include []string
	Exclude []string
	// Files bypass globbing. Relative entries are resolved against the root.
	Files []string
}

// Validate checks every pattern.
func (o Options) Validate() error {
	for _, p := range append(slices.Clone(o.Include), o.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	return nil
}

// Match reports whether rel is included and not excluded.
func (o Options) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchesAny(o.Include, rel) && !o.Excluded(rel)
}

// Excluded reports whether rel matches an exclude pattern or lies in one of
// SkipDirs.
func (o Options) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, dir := range SkipDirs {
		if matched, _ := doublestar.Match("**/"+dir+"/**", rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(dir+"/**", rel); matched {
			return true
		}
	}
	return matchesAny(o.Exclude, rel)
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.Match(p, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// Find returns the test files below root as sorted, de-duplicated
// slash-separated paths relative to root.
func Find(ctx context.Context, root string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Files) > 0 {
		return explicit(root, opts.Files)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			logging.Warn("Discovery", "cannot access %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(SkipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if opts.Match(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	slices.Sort(files)
	files = slices.Compact(files)
	logging.Debug("Discovery", "found %d test files under %s", len(files), root)
	return files, nil
}

func explicit(root string, files []string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, f)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("test file %s: %w", f, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("test file %s is a directory", f)
		}
		if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
			path = rel
		}
		out = append(out, filepath.ToSlash(path))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Intersect keeps the files that also appear in changed.
func Intersect(files, changed []string) []string {
	set := make(map[string]bool, len(changed))
	for _, c := range changed {
		set[filepath.ToSlash(c)] = true
	}
	var out []string
	for _, f := range files {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}
