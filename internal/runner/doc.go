// Package runner executes a registration queue and builds the result tree.
//
// Three runners share one per-file traversal:
//
//   - Sequential runs files in queue order and prints verbose lines or a
//     progress indicator.
//   - Parallel runs whole files on a bounded worker pool and merges each
//     file's result as it finishes.
//   - IDE runs in order and writes only service messages (see package
//     teamcity).
//
// Within a file, suites run before flat tests. A suite's beforeAll hooks run
// once, each test is wrapped by its beforeEach and afterEach hooks, and
// afterAll runs last. Hook errors are logged and never fail a test. A test
// fails on the first assertion failure, a returned error, a panic, or its
// timeout.
//
// Filters are substring matches. A test excluded by the name or skip filter
// is recorded as skipped. A suite excluded by the suite filter is not
// recorded at all, and neither are the file's flat tests while the suite
// filter is set; both count as skipped.
package runner
