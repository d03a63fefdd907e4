package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedAndRejected(t *testing.T) {
	v, err := Resolved(42).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	v, err = Rejected(boom).Await(context.Background())
	assert.Nil(t, v)
	assert.ErrorIs(t, err, boom)
}

func TestSettlesOnce(t *testing.T) {
	f := New()
	f.Resolve("first")
	f.Reject(errors.New("ignored"))
	f.Resolve("ignored")

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestGo(t *testing.T) {
	f := Go(func() (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "done", nil
	})
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestAwaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := New().Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFunc(t *testing.T) {
	var a Awaitable = Func(func(ctx context.Context) (any, error) { return 7, nil })
	v, err := a.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
