// Package latte runs tests declared with package registry from Go code.
//
// Run executes a registry with the sequential runner, or the parallel one
// with WithParallel, and returns the result tree. RunT does the same inside
// a Go test and reports every latte test as a subtest:
//
//	func TestMath(t *testing.T) {
//		reg := registry.New()
//		reg.File("math", "math_test.go", func() {
//			reg.Describe("Math", func() {
//				reg.It("adds", func(ctx context.Context) error {
//					expect.Expect(1 + 1).ToBe(2)
//					return nil
//				})
//			})
//		})
//		latte.RunT(t, reg)
//	}
package latte
