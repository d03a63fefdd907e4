package expect

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latte/pkg/future"
)

func TestNegationSymmetry(t *testing.T) {
	tests := []struct {
		matcher  string
		received any
		args     []any
	}{
		{"toBe", 2, []any{2}},
		{"toBe", 2, []any{3}},
		{"toBe", math.NaN(), []any{math.NaN()}},
		{"toBeStrictEqual", 1, []any{1.0}},
		{"toBeEqual", "1", []any{1}},
		{"toContain", []int{1, 2, 3}, []any{2}},
		{"toContain", "latte", []any{"tt"}},
		{"toContain", map[string]int{"a": 1}, []any{"b"}},
		{"toBeArraySorted", []int{3, 1, 2}, nil},
		{"toBeArrayUnique", []string{"a", "a"}, nil},
		{"hasLength", "abc", []any{3}},
		{"toBeEmpty", []int{}, nil},
		{"toBeIP", "0.0.0.300", nil},
		{"toBeIPv6", "::1", nil},
		{"toBeEmail", "a@b.co", nil},
		{"toBeUrl", "https://example.com/path", nil},
		{"toBeBase64", "aGVsbG8=", nil},
		{"toBeHEXColor", "#fff", nil},
		{"toBeRGBColor", "rgb(256, 0, 0)", nil},
		{"toBeColor", "hsl(120, 50%, 50%)", nil},
		{"toBeCloseTo", 3.14159, []any{3.14, 2}},
		{"toMatch", "hello", []any{"^h"}},
		{"toBeJson", `{"a":1}`, nil},
		{"toBeXml", "<a><b/></a>", nil},
		{"toBeDate", "2024-01-02", nil},
		{"toBeType", 1, []any{"number"}},
		{"toBeNull", (*int)(nil), nil},
		{"toBeUndefined", nil, nil},
		{"toBeInteger", 2.5, nil},
		{"toBeNaN", "abc", nil},
		{"toBetween", 5, []any{1, 10}},
		{"toBeGreaterThan", 5, []any{7}},
		{"hasProperty", map[string]any{"a": map[string]any{"b": nil}}, []any{"a.b"}},
		{"toBeDeepEqual", map[string]any{"a": 1}, []any{map[string]int{"a": 1}}},
		{"toBeObjectStructureEqual", map[string]any{"a": 1}, []any{map[string]any{"b": 1}}},
		{"toBeTrue", true, nil},
		{"toBeFalse", true, nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s(%v)", tt.matcher, tt.received), func(t *testing.T) {
			plain := Catch(func() { New(tt.received).Use(tt.matcher, tt.args...) })
			negated := Catch(func() { New(tt.received).Not().Use(tt.matcher, tt.args...) })
			assert.NotEqual(t, plain == nil, negated == nil)
		})
	}
}

func TestArraySortedBoundary(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect([]int{}).ToBeArraySorted() }))
	assert.Nil(t, failure(t, func() { Expect([]int{1, 1, 2}).ToBeArraySorted() }))

	f := failure(t, func() { Expect([]int{3, 1, 2}).ToBeArraySorted() })
	require.NotNil(t, f)
	assert.Equal(t, []any{1, 2, 3}, f.Expected)
}

func TestHasLengthCountsRunes(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect("hé").HasLength(2) }))
	assert.Nil(t, failure(t, func() { Expect("").HasLength(0) }))

	f := failure(t, func() { Expect("héllo").HasLength(4) })
	require.NotNil(t, f)
	assert.Equal(t, "Value has length 5, expected 4", f.Message)
}

func TestIPBoundary(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect("0.0.0.0").ToBeIP() }))
	assert.NotNil(t, failure(t, func() { Expect("0.0.0.300").ToBeIP() }))
	assert.NotNil(t, failure(t, func() { Expect("::1").ToBeIPv4() }))
	assert.Nil(t, failure(t, func() { Expect("2001:db8::1").ToBeIPv6() }))
}

func TestColors(t *testing.T) {
	valid := []string{"#abc", "#abcd", "#a1b2c3", "#a1b2c3d4", "rgb(0, 128, 255)", "rgba(1,2,3,0.5)",
		"hsl(360, 100%, 0%)", "hsla(10, 20%, 30%, 1)", "hsv(200, 50%, 50%)", "cmyk(0%, 50%, 100%, 10%)"}
	for _, c := range valid {
		assert.Nil(t, failure(t, func() { Expect(c).ToBeColor() }), c)
	}
	invalid := []string{"#ab", "#ggg", "rgb(300,0,0)", "rgba(1,2,3,1.5)", "hsl(361, 0%, 0%)", "cmyk(0%,0%,0%,101%)", "red"}
	for _, c := range invalid {
		assert.NotNil(t, failure(t, func() { Expect(c).ToBeColor() }), c)
	}
}

func TestToMatch(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect("Hello").ToMatch(regexp.MustCompile(`^H`)) }))
	assert.Nil(t, failure(t, func() { Expect("Hello").ToMatch("/hello/i") }))
	assert.Nil(t, failure(t, func() { Expect("a(b").ToMatch("a(b") }))

	err := Catch(func() { Expect(42).Not().ToMatch("4") })
	assert.ErrorIs(t, err, ErrNotString)
}

func TestComparisons(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect(5).ToBeGreaterThan(4.5).ToBeLessThanOrEqual(5) }))
	assert.Nil(t, failure(t, func() { Expect("b").ToBeGreaterThan("a") }))
	assert.NotNil(t, failure(t, func() { Expect("5").ToBeGreaterThan(4) }))
	assert.Nil(t, failure(t, func() { Expect(-1).ToBeNegative().ToBeFinite() }))
	assert.NotNil(t, failure(t, func() { Expect(math.Inf(1)).ToBeFinite() }))

	f := failure(t, func() { Expect(11).ToBetween(1, 10) })
	require.NotNil(t, f)
	assert.Equal(t, "Value 11 is not between 1 and 10", f.Message)
}

func TestCloseTo(t *testing.T) {
	assert.Nil(t, failure(t, func() { Expect(0.1 + 0.2).ToBeCloseTo(0.3, 5) }))
	assert.NotNil(t, failure(t, func() { Expect(3.2).ToBeCloseTo(3.1, 1) }))
	assert.Nil(t, failure(t, func() { Expect(3.14159).Use("toBeCloseTo", 3.14) }))
}

func TestTypeMatchers(t *testing.T) {
	fut := future.Resolved(1)
	tests := []struct {
		name string
		fn   func()
	}{
		{"boolean", func() { Expect(true).ToBeBoolean() }},
		{"defined", func() { Expect(0).ToBeDefined() }},
		{"integer float", func() { Expect(2.0).ToBeInteger() }},
		{"safe integer", func() { Expect(int64(1) << 52).ToBeSafeInteger() }},
		{"unsafe integer", func() { Expect(int64(1) << 54).Not().ToBeSafeInteger() }},
		{"float", func() { Expect(1.5).ToBeFloat() }},
		{"number string", func() { Expect("12.5").ToBeNumber() }},
		{"NaN", func() { Expect(math.NaN()).ToBeNaN().Not().ToBeNumber() }},
		{"string", func() { Expect("x").ToBeString() }},
		{"function", func() { Expect(func() {}).ToBeFunction() }},
		{"async function", func() { Expect(func() future.Awaitable { return fut }).ToBeAsyncFunction() }},
		{"not async", func() { Expect(func() {}).Not().ToBeAsyncFunction() }},
		{"date object", func() { Expect(time.Now()).ToBeDateObject().ToBeDate() }},
		{"datetime string", func() { Expect("2024-05-01T10:00:00Z").ToBeDate().Not().ToBeDateObject() }},
		{"regexp", func() { Expect(regexp.MustCompile("a")).ToBeRegExp() }},
		{"bigint", func() { Expect(big.NewInt(5)).ToBeBigInt().ToBeType("bigint") }},
		{"map", func() { Expect(map[string]int{}).ToBeMap().Not().ToBeSet() }},
		{"set", func() { Expect(map[string]struct{}{}).ToBeSet() }},
		{"array buffer", func() { Expect([]byte("x")).ToBeArrayBuffer() }},
		{"promise", func() { Expect(fut).ToBePromise() }},
		{"type by go name", func() { Expect(time.Second).ToBeType("time.Duration") }},
		{"instance of sample", func() { Expect(&user{}).ToBeInstanceOf(user{}) }},
		{"instance of interface", func() { Expect(errors.New("x")).ToBeInstanceOf((*error)(nil)) }},
		{"instance of reflect type", func() { Expect(3).ToBeInstanceOf(reflect.TypeOf(0)) }},
		{"instance of name", func() { Expect(&user{}).ToBeInstanceOf("expect.user") }},
		{"xml", func() { Expect("plain text").Not().ToBeXml() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Catch(tt.fn))
		})
	}
}

func TestObjectMatchers(t *testing.T) {
	shared := []int{1}
	assert.Nil(t, failure(t, func() {
		Expect(map[string]any{"a": 1, "s": shared}).ToBeObject(map[string]any{"a": 1, "s": shared})
	}))
	assert.NotNil(t, failure(t, func() {
		Expect(map[string]any{"s": []int{1}}).ToBeObject(map[string]any{"s": []int{1}})
	}))
	assert.Nil(t, failure(t, func() {
		Expect(address{City: "Lviv", Zip: 1}).HasPropertyValue("city", "Lviv").HasProperty("zip")
	}))

	err := Catch(func() { Expect(5).Not().ToBeDeepEqual(map[string]any{}) })
	assert.ErrorIs(t, err, ErrNotObject)

	f := failure(t, func() { Expect(map[string]any{"a": 1}).HasPropertyValue("a", 2) })
	require.NotNil(t, f)
	assert.Equal(t, "a: 2", f.Expected)
	assert.Equal(t, 1, f.Received)
}

func TestThrowMatchers(t *testing.T) {
	sentinel := errors.New("disk full")
	tests := []struct {
		name string
		fn   func()
	}{
		{"panic", func() { Expect(func() { panic("boom") }).ToThrow() }},
		{"error return", func() { Expect(func() error { return sentinel }).ToThrow() }},
		{"value error return", func() { Expect(func() (any, error) { return nil, sentinel }).ToThrow() }},
		{"no throw", func() { Expect(func() {}).Not().ToThrow() }},
		{"pattern", func() { Expect(func() { panic(errors.New("file not found")) }).ToThrowError("not found$") }},
		{"regexp", func() { Expect(func() error { return sentinel }).ToThrowError(regexp.MustCompile("^disk")) }},
		{"errors.Is", func() {
			Expect(func() error { return fmt.Errorf("write: %w", sentinel) }).ToThrowError(sentinel)
		}},
		{"context form", func() {
			Expect(func(ctx context.Context) error { return ctx.Err() }).Not().ToThrow()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Catch(tt.fn))
		})
	}

	err := Catch(func() { Expect(1).ToThrow() })
	assert.ErrorIs(t, err, ErrNotFunction)
}

func TestAsyncMatchers(t *testing.T) {
	boom := errors.New("boom")

	assert.Nil(t, failure(t, func() { Expect(future.Resolved(2)).ToBeResolvedWith(2) }))
	assert.Nil(t, failure(t, func() { Expect(future.Rejected(boom)).ToBeRejectedWith(boom) }))
	assert.Nil(t, failure(t, func() { Expect(future.Rejected(boom)).ToBeRejectedWith("boom") }))
	assert.Nil(t, failure(t, func() {
		Expect(func() (any, error) { return "ok", nil }).ToBeResolvedWith("ok")
	}))

	// settlement in the wrong direction fails even when negated
	f := failure(t, func() { Expect(future.Rejected(boom)).Not().ToBeResolvedWith(1) })
	require.NotNil(t, f)
	assert.Equal(t, "Promise was rejected", f.Message)

	f = failure(t, func() { Expect(future.Resolved(1)).Not().ToBeRejectedWith(boom) })
	require.NotNil(t, f)
	assert.Equal(t, "Promise was resolved", f.Message)

	err := Catch(func() { Expect(3).ToBeResolvedWith(3) })
	assert.ErrorIs(t, err, ErrNotAwaitable)
}

func TestAsyncHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	f := failure(t, func() { New(future.New(), WithContext(ctx)).ToBeResolvedWith(1) })
	require.NotNil(t, f)
	assert.Equal(t, "Promise was rejected", f.Message)
}

type fakeMock struct {
	calls [][]any
}

func (f *fakeMock) MockCalls() [][]any { return f.calls }

func TestMockMatchers(t *testing.T) {
	m := &fakeMock{calls: [][]any{{1, "a"}, {map[string]any{"k": 1}}}}

	assert.NoError(t, Catch(func() {
		Expect(m).
			ToHaveBeenCalled().
			ToHaveBeenCalledTimes(2).
			ToHaveBeenCalledWith([]any{1.0, "a"}).
			ToHaveBeenLastCalledWith([]any{map[string]int{"k": 1}})
	}))
	assert.NoError(t, Catch(func() { Expect(&fakeMock{}).Not().ToHaveBeenCalled() }))
	assert.NoError(t, Catch(func() { Expect(&fakeMock{}).Use("toHaveBeenCalledTimes", 0) }))

	f := failure(t, func() { Expect(m).ToHaveBeenCalledTimes(3) })
	require.NotNil(t, f)
	assert.Equal(t, "Function was called 2 times, expected 3", f.Message)
}

func TestUseUnknownMatcher(t *testing.T) {
	err := Catch(func() { Expect(1).Use("toBeBanana") })
	assert.ErrorIs(t, err, ErrUnknownMatcher)
}

func TestUseBadArgument(t *testing.T) {
	err := Catch(func() { Expect("abc").Use("hasLength", "three") })
	assert.ErrorIs(t, err, ErrBadArgument)

	err = Catch(func() { Expect("abc").Use("hasLength") })
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestRegisterCustomMatcher(t *testing.T) {
	m := Builtins()
	m.Register("toBeAnswer", func(e *Expectation, args []any, msg ...string) {
		e.Assert(sameValue(e.Received(), 42), msg, "toBeAnswer")
	})
	assert.Contains(t, m.Names(), "toBeAnswer")
	assert.Contains(t, m.Names(), "toBe")

	assert.NoError(t, Catch(func() { New(42, WithMatchers(m)).Use("toBeAnswer") }))
	assert.Error(t, Catch(func() { New(41, WithMatchers(m)).Use("toBeAnswer") }))

	// the shared built-in set is not affected
	assert.ErrorIs(t, Catch(func() { New(42).Use("toBeAnswer") }), ErrUnknownMatcher)
}

func TestEveryMessageHasAMatcher(t *testing.T) {
	names := Builtins().Names()
	for name := range defaultMessages {
		assert.Contains(t, names, name)
	}
}
