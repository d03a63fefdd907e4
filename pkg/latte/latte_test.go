package latte

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/pkg/expect"
	"latte/pkg/registry"
)

func mathRegistry(includeFailure bool) *registry.Registry {
	reg := registry.New()
	reg.File("math", "math_test.go", func() {
		reg.Describe("Math", func() {
			reg.It("adds", func(context.Context) error {
				expect.Expect(1 + 1).ToBe(2)
				return nil
			})
			if includeFailure {
				reg.It("subtracts", func(context.Context) error {
					expect.Expect(3 - 1).ToBe(1)
					return nil
				})
			}
		})
		reg.It("flat", func(context.Context) error {
			expect.Expect([]int{1, 2}).HasLength(2)
			return nil
		})
	})
	reg.File("strings", "strings_test.go", func() {
		reg.It("skip me", func(context.Context) error {
			return errors.New("should not run")
		})
	})
	return reg
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		total   int
		failed  int
		skipped int
	}{
		{name: "sequential", total: 4, failed: 2},
		{name: "parallel", opts: []Option{WithParallel(2)}, total: 4, failed: 2},
		{name: "skip filter", opts: []Option{WithFilter("", "", "skip")}, total: 3, failed: 1, skipped: 1},
		{name: "suite filter", opts: []Option{WithFilter("", "Math", "")}, total: 2, failed: 1, skipped: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, failed, err := Run(context.Background(), mathRegistry(true), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.failed, failed)
			assert.Equal(t, tt.total, res.Total)
			assert.Equal(t, tt.skipped, res.Skipped)
		})
	}
}

func TestRunFailureDetails(t *testing.T) {
	res, _, err := Run(context.Background(), mathRegistry(true))
	require.NoError(t, err)

	fr, ok := res.File("math")
	require.True(t, ok)
	require.Len(t, fr.Describes, 1)
	tr := fr.Describes[0].Tests[1]
	assert.Equal(t, "subtracts", tr.Name)
	assert.True(t, tr.Failed())
	assert.Equal(t, 1, tr.Expected)
	assert.Equal(t, 2, tr.Received)
	assert.Equal(t, "math_test.go", fr.Path)
}

func TestRunOutputAndTimeout(t *testing.T) {
	reg := registry.New()
	reg.File("slow", "slow_test.go", func() {
		reg.It("hangs", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	})

	var out bytes.Buffer
	res, failed, err := Run(context.Background(), reg, WithOutput(&out), WithTestTimeout(20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	fr, _ := res.File("slow")
	assert.Equal(t, "Test timed out after 20ms", fr.Tests[0].Message)
	assert.Contains(t, out.String(), "hangs")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, _, err := Run(ctx, mathRegistry(false))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Files)
}

func TestRunT(t *testing.T) {
	res := RunT(t, mathRegistry(false), WithFilter("", "", "skip"))
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 1, res.Skipped)
}
