package expect

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"time"

	"latte/pkg/future"
)

var (
	awaitableType = reflect.TypeOf((*future.Awaitable)(nil)).Elem()
	maxSafeInt    = float64(1<<53 - 1)
)

// typeOf names the family a value belongs to: undefined, boolean, number,
// bigint, string, function or object.
func typeOf(v any) string {
	if v == nil {
		return "undefined"
	}
	switch v.(type) {
	case *big.Int, big.Int:
		return "bigint"
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Bool:
		return "boolean"
	case isNumberKind(rv.Kind()):
		return "number"
	case rv.Kind() == reflect.String:
		return "string"
	case rv.Kind() == reflect.Func:
		return "function"
	}
	return "object"
}

func integral(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if isIntKind(rv.Kind()) || isUintKind(rv.Kind()) {
		n, _ := valueNumber(rv)
		return n, true
	}
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (e *Expectation) ToBeBoolean(msg ...string) *Expectation {
	return e.Assert(typeOf(e.received) == "boolean", msg, "toBeBoolean")
}

// ToBeDefined passes for anything but an untyped nil.
func (e *Expectation) ToBeDefined(msg ...string) *Expectation {
	return e.Assert(e.received != nil, msg, "toBeDefined")
}

// ToBeUndefined passes only for an untyped nil.
func (e *Expectation) ToBeUndefined(msg ...string) *Expectation {
	return e.Assert(e.received == nil, msg, "toBeUndefined")
}

// ToBeNull passes for nil and for nil pointers, maps, slices and funcs.
func (e *Expectation) ToBeNull(msg ...string) *Expectation {
	return e.Assert(isNil(e.received), msg, "toBeNull")
}

// ToBeInteger accepts integer kinds and floats without a fractional part.
func (e *Expectation) ToBeInteger(msg ...string) *Expectation {
	_, ok := integral(e.received)
	return e.Assert(ok, msg, "toBeInteger")
}

func (e *Expectation) ToBeSafeInteger(msg ...string) *Expectation {
	n, ok := integral(e.received)
	return e.Assert(ok && math.Abs(n) <= maxSafeInt, msg, "toBeSafeInteger")
}

// ToBeFloat passes for a float that is not NaN and not integral.
func (e *Expectation) ToBeFloat(msg ...string) *Expectation {
	rv := reflect.ValueOf(e.received)
	result := false
	if e.received != nil && (rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64) {
		f := rv.Float()
		result = !math.IsNaN(f) && (math.IsInf(f, 0) || f != math.Trunc(f))
	}
	return e.Assert(result, msg, "toBeFloat")
}

// ToBeNumber accepts numbers and numeric strings, excluding NaN.
func (e *Expectation) ToBeNumber(msg ...string) *Expectation {
	n, ok := numberLike(e.received)
	return e.Assert(ok && !math.IsNaN(n), msg, "toBeNumber")
}

// ToBeNaN passes for NaN and for anything that does not convert to a number.
func (e *Expectation) ToBeNaN(msg ...string) *Expectation {
	n, ok := numberLike(e.received)
	return e.Assert(!ok || math.IsNaN(n), msg, "toBeNaN")
}

func (e *Expectation) ToBeJson(msg ...string) *Expectation {
	result := false
	switch v := e.received.(type) {
	case string:
		result = json.Valid([]byte(v))
	case []byte:
		result = json.Valid(v)
	}
	return e.Assert(result, msg, "toBeJson")
}

func (e *Expectation) ToBeXml(msg ...string) *Expectation {
	result := testValue(e.received, "xml")
	if b, ok := e.received.([]byte); ok {
		result = validXML(string(b))
	}
	return e.Assert(result, msg, "toBeXml")
}

// ToBeType compares against the type family returned by typeOf, or against
// the Go type name as printed by %T.
func (e *Expectation) ToBeType(expected string, msg ...string) *Expectation {
	family := typeOf(e.received)
	result := family == expected || (e.received != nil && fmt.Sprintf("%T", e.received) == expected)
	return e.Assert(result, msg, "toBeType", expected, family)
}

// ToBeInstanceOf accepts a reflect.Type, a type name as printed by %T, or a
// sample value. A pointer to an interface, such as (*error)(nil), asserts
// that the value implements it.
func (e *Expectation) ToBeInstanceOf(expected any, msg ...string) *Expectation {
	var want reflect.Type
	switch t := expected.(type) {
	case reflect.Type:
		want = t
	case string:
		got := typeOfName(e.received)
		return e.Assert(got == t || strings.TrimPrefix(got, "*") == t, msg, "toBeInstanceOf", t, got)
	case nil:
		e.Fail("toBeInstanceOf", ErrBadArgument, expected)
	default:
		want = reflect.TypeOf(t)
		if want.Kind() == reflect.Ptr && want.Elem().Kind() == reflect.Interface {
			want = want.Elem()
		}
	}
	result := false
	var got reflect.Type
	if e.received != nil {
		got = reflect.TypeOf(e.received)
		if want.Kind() == reflect.Interface {
			result = got.Implements(want)
		} else {
			result = got == want || (got.Kind() == reflect.Ptr && got.Elem() == want)
		}
	}
	return e.Assert(result, msg, "toBeInstanceOf", typeName(want), typeName(got))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

func (e *Expectation) ToBeString(msg ...string) *Expectation {
	return e.Assert(typeOf(e.received) == "string", msg, "toBeString")
}

func (e *Expectation) ToBeFunction(msg ...string) *Expectation {
	result := typeOf(e.received) == "function" && !isNil(e.received)
	return e.Assert(result, msg, "toBeFunction", nil, typeOf(e.received))
}

// ToBeAsyncFunction passes for a function returning an awaitable, or for a
// function type that is itself awaitable such as future.Func.
func (e *Expectation) ToBeAsyncFunction(msg ...string) *Expectation {
	result := false
	if e.received != nil {
		t := reflect.TypeOf(e.received)
		if t.Kind() == reflect.Func {
			if t.Implements(awaitableType) {
				result = true
			}
			for i := 0; i < t.NumOut(); i++ {
				if t.Out(i).Implements(awaitableType) {
					result = true
				}
			}
		}
	}
	return e.Assert(result, msg, "toBeAsyncFunction", nil, typeOfName(e.received))
}

func typeOfName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// ToBeDate accepts time.Time values and date or date-time strings.
func (e *Expectation) ToBeDate(msg ...string) *Expectation {
	result := isTime(e.received) || testValue(e.received, "date") || testValue(e.received, "datetime")
	return e.Assert(result, msg, "toBeDate")
}

func (e *Expectation) ToBeDateObject(msg ...string) *Expectation {
	return e.Assert(isTime(e.received), msg, "toBeDateObject", nil, typeOfName(e.received))
}

func isTime(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	}
	return false
}

func (e *Expectation) ToBeRegExp(msg ...string) *Expectation {
	re, ok := e.received.(*regexp.Regexp)
	return e.Assert(ok && re != nil, msg, "toBeRegExp", nil, typeOfName(e.received))
}

func (e *Expectation) ToBeBigInt(msg ...string) *Expectation {
	return e.Assert(typeOf(e.received) == "bigint", msg, "toBeBigInt", nil, typeOfName(e.received))
}

func (e *Expectation) ToBeMap(msg ...string) *Expectation {
	result := e.received != nil && reflect.TypeOf(e.received).Kind() == reflect.Map
	return e.Assert(result, msg, "toBeMap", nil, typeOfName(e.received))
}

// ToBeSet passes for maps whose values carry no data: map[K]struct{} and
// map[K]bool.
func (e *Expectation) ToBeSet(msg ...string) *Expectation {
	result := false
	if e.received != nil {
		t := reflect.TypeOf(e.received)
		if t.Kind() == reflect.Map {
			elem := t.Elem()
			result = elem.Kind() == reflect.Bool || (elem.Kind() == reflect.Struct && elem.NumField() == 0)
		}
	}
	return e.Assert(result, msg, "toBeSet", nil, typeOfName(e.received))
}

// ToBeArrayBuffer passes for []byte.
func (e *Expectation) ToBeArrayBuffer(msg ...string) *Expectation {
	_, ok := e.received.([]byte)
	return e.Assert(ok, msg, "toBeArrayBuffer", nil, typeOfName(e.received))
}

// ToBePromise passes for any future.Awaitable.
func (e *Expectation) ToBePromise(msg ...string) *Expectation {
	_, ok := e.received.(future.Awaitable)
	return e.Assert(ok && !isNil(e.received), msg, "toBePromise", nil, typeOfName(e.received))
}
