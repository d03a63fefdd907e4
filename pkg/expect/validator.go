package expect

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// ToBeTrue asserts the boolean true.
func (e *Expectation) ToBeTrue(msg ...string) *Expectation {
	b, ok := e.received.(bool)
	return e.Assert(ok && b, msg, "toBeTrue")
}

// ToBeFalse asserts the boolean false.
func (e *Expectation) ToBeFalse(msg ...string) *Expectation {
	b, ok := e.received.(bool)
	return e.Assert(ok && !b, msg, "toBeFalse")
}

// ToMatch matches a string against a *regexp.Regexp or a pattern string.
// A pattern string that is not a valid regexp is matched as a substring.
// A non-string received value is a precondition error.
func (e *Expectation) ToMatch(expected any, msg ...string) *Expectation {
	s, ok := e.received.(string)
	if !ok {
		e.Fail("toMatch", ErrNotString, "string")
	}
	var result bool
	switch p := expected.(type) {
	case *regexp.Regexp:
		result = p != nil && p.MatchString(s)
	case string:
		if re, ok := compilePattern(p); ok {
			result = re.MatchString(s)
		} else {
			result = strings.Contains(s, p)
		}
	default:
		e.Fail("toMatch", ErrBadArgument, expected)
	}
	return e.Assert(result, msg, "toMatch", expected)
}

// order compares two values that have a natural order: numbers, strings and
// times. ok is false when they cannot be ordered.
func order(a, b any) (int, bool) {
	x, okx := toNumber(a)
	y, oky := toNumber(b)
	if okx && oky {
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), true
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
	}
	return 0, false
}

func (e *Expectation) ToBeGreaterThan(expected any, msg ...string) *Expectation {
	c, ok := order(e.received, expected)
	return e.Assert(ok && c > 0, msg, "toBeGreaterThan", expected)
}

func (e *Expectation) ToBeGreaterThanOrEqual(expected any, msg ...string) *Expectation {
	c, ok := order(e.received, expected)
	return e.Assert(ok && c >= 0, msg, "toBeGreaterThanOrEqual", expected)
}

func (e *Expectation) ToBeLessThan(expected any, msg ...string) *Expectation {
	c, ok := order(e.received, expected)
	return e.Assert(ok && c < 0, msg, "toBeLessThan", expected)
}

func (e *Expectation) ToBeLessThanOrEqual(expected any, msg ...string) *Expectation {
	c, ok := order(e.received, expected)
	return e.Assert(ok && c <= 0, msg, "toBeLessThanOrEqual", expected)
}

// ToBetween asserts min <= received <= max.
func (e *Expectation) ToBetween(min, max any, msg ...string) *Expectation {
	lo, okLo := order(e.received, min)
	hi, okHi := order(e.received, max)
	result := okLo && okHi && lo >= 0 && hi <= 0
	return e.Assert(result, msg, "toBetween", fmt.Sprintf("between %s and %s", Format(min), Format(max)))
}

func (e *Expectation) ToBePositive(msg ...string) *Expectation {
	n, ok := toNumber(e.received)
	return e.Assert(ok && n > 0, msg, "toBePositive")
}

func (e *Expectation) ToBeNegative(msg ...string) *Expectation {
	n, ok := toNumber(e.received)
	return e.Assert(ok && n < 0, msg, "toBeNegative")
}

func (e *Expectation) ToBeFinite(msg ...string) *Expectation {
	n, ok := toNumber(e.received)
	return e.Assert(ok && !math.IsInf(n, 0) && !math.IsNaN(n), msg, "toBeFinite")
}

// ToBeCloseTo asserts |received - expected| < 10^-precision / 2, with
// precision counted in decimal digits.
func (e *Expectation) ToBeCloseTo(expected float64, precision int, msg ...string) *Expectation {
	n, ok := toNumber(e.received)
	result := ok && math.Abs(n-expected) < math.Pow(10, -float64(precision))/2
	return e.Assert(result, msg, "toBeCloseTo", expected)
}

// DefaultPrecision is the precision used by ToBeCloseTo through Use when no
// precision argument is given.
const DefaultPrecision = 2

func (e *Expectation) ToBeIP(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "ipv4") || testValue(e.received, "ipv6"), msg, "toBeIP")
}

func (e *Expectation) ToBeIPv4(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "ipv4"), msg, "toBeIPv4")
}

func (e *Expectation) ToBeIPv6(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "ipv6"), msg, "toBeIPv6")
}

func (e *Expectation) ToBeEmail(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "email"), msg, "toBeEmail")
}

// ToBeUrl requires both a scheme and a host.
func (e *Expectation) ToBeUrl(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "url"), msg, "toBeUrl")
}

func (e *Expectation) ToBeBase64(msg ...string) *Expectation {
	return e.Assert(testValue(e.received, "base64"), msg, "toBeBase64")
}
