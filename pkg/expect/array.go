package expect

import (
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// sequence returns the elements of a slice or array.
func sequence(v any) ([]any, bool) {
	rv := derefAll(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = valueInterface(rv.Index(i))
	}
	return out, true
}

// length returns the length of anything with one. Strings count runes.
func length(v any) (int, bool) {
	rv := derefAll(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}

// compare orders two values numerically when both are numbers and as
// strings otherwise.
func compare(a, b any) int {
	x, okx := toNumber(a)
	y, oky := toNumber(b)
	if okx && oky {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(Format(a), Format(b))
}

// ToBeEmpty asserts a zero length.
func (e *Expectation) ToBeEmpty(msg ...string) *Expectation {
	n, ok := length(e.received)
	return e.Assert(ok && n == 0, msg, "toBeEmpty")
}

// HasLength asserts the length of a slice, string or map.
func (e *Expectation) HasLength(expected int, msg ...string) *Expectation {
	n, ok := length(e.received)
	var received any
	if ok {
		received = n
	}
	return e.Assert(ok && n == expected, msg, "hasLength", expected, received)
}

// ToBeArrayUnique asserts that no two elements are the same value.
func (e *Expectation) ToBeArrayUnique(msg ...string) *Expectation {
	items, ok := sequence(e.received)
	result := ok
	for i := 0; result && i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if sameValueZero(items[i], items[j]) {
				result = false
				break
			}
		}
	}
	return e.Assert(result, msg, "toBeArrayUnique")
}

// ToBeArraySorted asserts ascending order. Equal neighbours are allowed and
// an empty array is sorted.
func (e *Expectation) ToBeArraySorted(msg ...string) *Expectation {
	items, ok := sequence(e.received)
	if !ok {
		return e.Assert(false, msg, "toBeArraySorted")
	}
	result := true
	for i := 1; i < len(items); i++ {
		if compare(items[i-1], items[i]) > 0 {
			result = false
			break
		}
	}
	sorted := append([]any(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return compare(sorted[i], sorted[j]) < 0 })
	return e.Assert(result, msg, "toBeArraySorted", sorted)
}

// ToContain asserts membership. For maps expected is a key, for strings a
// substring and for slices an element. A slice as expected requires every
// one of its elements to be present.
func (e *Expectation) ToContain(expected any, msg ...string) *Expectation {
	return e.Assert(contains(e.received, expected), msg, "toContain", expected)
}

func contains(received, expected any) bool {
	rv := derefAll(reflect.ValueOf(received))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.String:
		s, ok := expected.(string)
		return ok && strings.Contains(rv.String(), s)
	case reflect.Map:
		want := Format(expected)
		for _, k := range rv.MapKeys() {
			if keyString(k) == want {
				return true
			}
		}
		return false
	case reflect.Struct:
		_, ok := entries(rv)[Format(expected)]
		return ok
	case reflect.Slice, reflect.Array:
		items, _ := sequence(received)
		if wanted, ok := sequence(expected); ok {
			for _, w := range wanted {
				if !includes(items, w) {
					return false
				}
			}
			return true
		}
		return includes(items, expected)
	}
	return false
}

func includes(items []any, v any) bool {
	for _, item := range items {
		if sameValueZero(item, v) {
			return true
		}
	}
	return false
}

// ToBeArrayEqual asserts equal length and element-wise identity.
func (e *Expectation) ToBeArrayEqual(expected any, msg ...string) *Expectation {
	a, okA := sequence(e.received)
	b, okB := sequence(expected)
	result := okA && okB && len(a) == len(b)
	for i := 0; result && i < len(a); i++ {
		result = sameValue(a[i], b[i])
	}
	return e.Assert(result, msg, "toBeArrayEqual", expected, e.received)
}

// ToBeArray asserts that the value is a slice or array.
func (e *Expectation) ToBeArray(msg ...string) *Expectation {
	_, ok := sequence(e.received)
	return e.Assert(ok, msg, "toBeArray")
}
