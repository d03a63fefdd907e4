// Package registry holds the registration queue that runners consume.
//
// Tests are declared against an explicit Registry; there is no global one:
//
//	reg := registry.New()
//	reg.File("math", "math_test.go", func() {
//		reg.Describe("Math", func() {
//			reg.BeforeEach(func(ctx context.Context) error { return nil })
//
//			reg.It("adds", func(ctx context.Context) error {
//				expect.Expect(1 + 1).ToBe(2)
//				return nil
//			})
//		})
//	})
//
// Each file key maps to a FileEntry with its suites and flat tests, in
// declaration order. Hooks declared inside a suite belong to it; hooks
// declared outside every suite wrap the file's flat tests.
//
// Declaring anything before SetCurrentFile (or File) panics with
// ErrNoCurrentFile.
package registry
