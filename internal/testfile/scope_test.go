package testfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeRender(t *testing.T) {
	scope := NewScope(
		map[string]any{"name": "latte", "n": 1},
		map[string]any{"n": 2, "doc": "a: b"},
	)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "plain string", in: "hello", want: "hello"},
		{name: "interpolation", in: "hello {{ .name }}", want: "hello latte"},
		{name: "number keeps type", in: "{{ add .n 1 }}", want: 3},
		{name: "boolean keeps type", in: "{{ eq .name \"latte\" }}", want: true},
		{name: "sprig function", in: "{{ upper .name }}", want: "LATTE"},
		{name: "mapping result stays text", in: "{{ .doc }}", want: "a: b"},
		{name: "empty result", in: "{{ if false }}x{{ end }}", want: ""},
		{name: "non-string", in: 42, want: 42},
		{
			name: "nested",
			in:   map[string]any{"list": []any{"{{ .n }}", "x"}},
			want: map[string]any{"list": []any{2, "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scope.Render(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeRenderErrors(t *testing.T) {
	scope := NewScope(nil)

	_, err := scope.Render("{{ .missing }}")
	assert.ErrorContains(t, err, "missing")

	_, err = scope.Render(map[string]any{"k": "{{ .oops"})
	assert.ErrorContains(t, err, "error in key 'k'")
}

func TestScopeLookup(t *testing.T) {
	scope := NewScope(map[string]any{
		"resp": map[string]any{
			"status": 200,
			"body": map[string]any{
				"items": []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
			},
			"headers": map[string]string{"Content-Type": "application/json"},
		},
	})

	got, err := scope.Lookup("resp.body.items.1.id")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = scope.Lookup("resp.headers.Content-Type")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got)

	got, err = scope.Lookup("resp.status")
	require.NoError(t, err)
	assert.Equal(t, 200, got)

	for _, path := range []string{"nope", "resp.body.items.5", "resp.status.x", "resp.body.items.-1"} {
		_, err := scope.Lookup(path)
		assert.ErrorIs(t, err, ErrUnknownRef, path)
	}
}

func TestScopeClone(t *testing.T) {
	base := NewScope(map[string]any{"a": 1})
	clone := base.Clone()
	clone.Set("a", 2)
	clone.Set("b", 3)

	v, _ := base.Get("a")
	assert.Equal(t, 1, v)
	_, ok := base.Get("b")
	assert.False(t, ok)
}
