package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestDeclarationOrder(t *testing.T) {
	reg := New()
	reg.File("a", "a.test.yaml", func() {
		reg.Describe("first", func() {
			reg.It("one", noop)
			reg.Test("two", noop)
		})
		reg.It("flat", noop)
		reg.Suite("second", func() {
			reg.It("three", noop)
		})
	})

	entry, ok := reg.Entry("a")
	require.True(t, ok)
	assert.Equal(t, "a.test.yaml", entry.Path)
	require.Len(t, entry.Describes, 2)
	assert.Equal(t, "first", entry.Describes[0].Name)
	assert.Equal(t, "second", entry.Describes[1].Name)
	assert.Equal(t, []string{"one", "two"}, names(entry.Describes[0].Tests))
	assert.Equal(t, []string{"flat"}, names(entry.Tests))
}

func TestNestedDescribe(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("f")
	reg.Describe("Outer", func() {
		reg.BeforeEach(noop)
		reg.It("outer test", noop)
		reg.Describe("Inner", func() {
			reg.It("inner test", noop)
		})
		reg.It("after inner", noop)
	})

	entry, _ := reg.Entry("f")
	require.Len(t, entry.Describes, 2)
	outer, inner := entry.Describes[0], entry.Describes[1]
	assert.Equal(t, "Outer Inner", inner.Name)
	assert.Equal(t, []string{"outer test", "after inner"}, names(outer.Tests))
	assert.Equal(t, []string{"inner test"}, names(inner.Tests))
	assert.Empty(t, inner.BeforeEach)
	assert.Len(t, outer.BeforeEach, 1)
}

func TestHooksAttachToCurrentScope(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("f")
	reg.BeforeAll(noop)
	reg.AfterEach(noop)
	reg.It("flat", noop)
	reg.Describe("s", func() {
		reg.It("t", noop)
		// declared after the test, still applies to it
		reg.BeforeEach(noop)
		reg.AfterAll(noop)
	})

	entry, _ := reg.Entry("f")
	assert.Len(t, entry.BeforeAll, 1)
	assert.Len(t, entry.AfterEach, 1)
	assert.Len(t, entry.Tests[0].AfterEach(), 1)
	assert.Empty(t, entry.Tests[0].BeforeEach())

	s := entry.Describes[0]
	assert.Len(t, s.AfterAll, 1)
	assert.Len(t, s.Tests[0].BeforeEach(), 1)
	assert.Empty(t, s.Tests[0].AfterEach())
}

func TestRegistrationWithoutFile(t *testing.T) {
	reg := New()

	assert.PanicsWithValue(t, ErrNoCurrentFile, func() { reg.It("x", noop) })
	assert.PanicsWithValue(t, ErrNoCurrentFile, func() { reg.Describe("x", nil) })
	assert.PanicsWithValue(t, ErrNoCurrentFile, func() { reg.BeforeEach(noop) })
	assert.ErrorIs(t, reg.AddTest(&TestCase{Name: "x"}), ErrNoCurrentFile)
	assert.ErrorIs(t, reg.AddDescribe(&Suite{Name: "x"}), ErrNoCurrentFile)
}

func TestSetCurrentFileReplacesEntry(t *testing.T) {
	reg := New()
	reg.File("a", "", func() { reg.It("old", noop) })
	reg.File("b", "", func() { reg.It("b", noop) })
	reg.File("a", "", func() { reg.It("new", noop) })

	queue := reg.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, "a", queue[0].Key)
	assert.Equal(t, "a", queue[0].Path)
	assert.Equal(t, []string{"new"}, names(queue[0].Tests))
}

func TestSetCurrentFileResetsSuiteCursor(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("a")
	reg.Describe("s", func() {
		reg.SetCurrentFile("b")
		reg.It("in b", noop)
	})

	b, _ := reg.Entry("b")
	assert.Equal(t, []string{"in b"}, names(b.Tests))
}

func TestAddTestAndDescribe(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("a")
	require.NoError(t, reg.AddDescribe(&Suite{Name: "s"}))
	tc := &TestCase{Name: "t", Fn: noop}
	require.NoError(t, reg.AddTest(tc))
	reg.BeforeEach(noop)

	assert.Len(t, tc.BeforeEach(), 1)
	entry, _ := reg.Entry("a")
	assert.Len(t, entry.Describes, 1)
}

func TestAddDescribeOwnsItsTests(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("a")
	inner := &TestCase{Name: "t", Fn: noop}
	s := &Suite{Name: "s", Tests: []*TestCase{inner}}
	s.BeforeEach = []Body{noop}
	s.AfterEach = []Body{noop, noop}
	require.NoError(t, reg.AddDescribe(s))

	assert.Len(t, inner.BeforeEach(), 1)
	assert.Len(t, inner.AfterEach(), 2)
}

func TestClearAndRemove(t *testing.T) {
	reg := New()
	reg.File("a", "", nil)
	reg.File("b", "", nil)
	reg.File("c", "", nil)

	reg.Remove("b")
	reg.Remove("missing")
	assert.Equal(t, []string{"a", "c"}, keys(reg.Queue()))

	reg.ClearQueue()
	assert.Zero(t, reg.Len())
	assert.Panics(t, func() { reg.It("x", noop) })
}

func TestLocation(t *testing.T) {
	reg := New()
	reg.SetCurrentFile("a")
	tc := reg.It("here", noop)

	assert.True(t, strings.HasSuffix(tc.Location.File, "registry_test.go"))
	assert.Positive(t, tc.Location.Line)
	assert.Contains(t, tc.Location.String(), "registry_test.go:")

	assert.Equal(t, "", Location{}.String())
	assert.Equal(t, "x.yaml", Location{File: "x.yaml"}.String())
	assert.Equal(t, "x.yaml:3:5", Location{File: "x.yaml", Line: 3, Column: 5}.String())
}

func names(tests []*TestCase) []string {
	out := make([]string, len(tests))
	for i, tc := range tests {
		out[i] = tc.Name
	}
	return out
}

func keys(entries []*FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}
