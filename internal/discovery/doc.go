// Package discovery finds test files below a project root.
//
// Find walks the tree with doublestar include and exclude patterns and
// never enters .git, vendor or node_modules. Changed asks git for the
// modified and untracked files so a run can be narrowed to them, and
// Watcher reports debounced batches of changed paths for watch mode.
package discovery
