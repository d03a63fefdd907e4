package expect

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/net/html"
)

// MatcherFunc is a matcher addressed by name. args are the matcher
// arguments after the received value; msg is the optional custom message.
type MatcherFunc func(e *Expectation, args []any, msg ...string)

// Matchers is a name-keyed matcher registry. It is safe for concurrent use.
type Matchers struct {
	mu    sync.RWMutex
	funcs map[string]MatcherFunc
}

// NewMatchers returns an empty registry.
func NewMatchers() *Matchers {
	return &Matchers{funcs: map[string]MatcherFunc{}}
}

// Builtins returns a fresh registry holding every built-in matcher.
func Builtins() *Matchers {
	m := NewMatchers()
	for name, fn := range builtinFuncs {
		m.funcs[name] = fn
	}
	return m
}

// Register adds or replaces a matcher.
func (m *Matchers) Register(name string, fn MatcherFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[name] = fn
}

// Lookup returns the matcher registered under name.
func (m *Matchers) Lookup(name string) (MatcherFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.funcs[name]
	return fn, ok
}

// Names lists the registered matchers in sorted order.
func (m *Matchers) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builtins = Builtins()

// Use invokes a matcher by name. An unknown name is a precondition error.
func (e *Expectation) Use(name string, args ...any) *Expectation {
	return e.UseMessage(name, "", args...)
}

// UseMessage is Use with a custom failure message. An empty message keeps
// the default.
func (e *Expectation) UseMessage(name, msg string, args ...any) *Expectation {
	fn, ok := e.matchers.Lookup(name)
	if !ok {
		e.Fail(name, ErrUnknownMatcher, nil)
	}
	var msgs []string
	if msg != "" {
		msgs = []string{msg}
	}
	fn(e, args, msgs...)
	return e
}

// arguments wraps matcher arguments with typed accessors that raise
// ErrBadArgument on a mismatch.
type arguments struct {
	e       *Expectation
	matcher string
	args    []any
}

func (a arguments) any(i int) any {
	if i < len(a.args) {
		return a.args[i]
	}
	return nil
}

func (a arguments) bad(i int, want string) {
	a.e.Fail(a.matcher, fmt.Errorf("%w: argument %d must be %s", ErrBadArgument, i+1, want), a.any(i))
}

func (a arguments) require(n int) {
	if len(a.args) < n {
		a.e.Fail(a.matcher, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArgument, n, len(a.args)), nil)
	}
}

func (a arguments) string(i int) string {
	a.require(i + 1)
	s, ok := a.args[i].(string)
	if !ok {
		a.bad(i, "a string")
	}
	return s
}

func (a arguments) int(i int, def int) int {
	if i >= len(a.args) || a.args[i] == nil {
		return def
	}
	n, ok := integral(a.args[i])
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		a.bad(i, "an integer")
	}
	return int(n)
}

func (a arguments) float(i int) float64 {
	a.require(i + 1)
	n, ok := numberLike(a.args[i])
	if !ok {
		a.bad(i, "a number")
	}
	return n
}

// duration accepts a time.Duration, a duration string such as "500ms", or
// a number of milliseconds.
func (a arguments) duration(i int) time.Duration {
	if i >= len(a.args) || a.args[i] == nil {
		return 0
	}
	switch v := a.args[i].(type) {
	case time.Duration:
		return v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			a.bad(i, "a duration")
		}
		return d
	}
	n, ok := toNumber(a.args[i])
	if !ok {
		a.bad(i, "a duration")
	}
	return time.Duration(n * float64(time.Millisecond))
}

func (a arguments) listener(i int) EventListener {
	switch fn := a.any(i).(type) {
	case nil:
		return nil
	case EventListener:
		return fn
	case func(*html.Node, any):
		return fn
	}
	a.bad(i, "an event listener")
	return nil
}

func nullary(call func(e *Expectation, msg ...string) *Expectation) MatcherFunc {
	return func(e *Expectation, _ []any, msg ...string) { call(e, msg...) }
}

func unary(name string, call func(e *Expectation, a arguments, msg ...string) *Expectation) MatcherFunc {
	return func(e *Expectation, args []any, msg ...string) {
		call(e, arguments{e: e, matcher: name, args: args}, msg...)
	}
}

func withAny(call func(e *Expectation, v any, msg ...string) *Expectation) MatcherFunc {
	return func(e *Expectation, args []any, msg ...string) {
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		call(e, v, msg...)
	}
}

func withString(name string, call func(e *Expectation, s string, msg ...string) *Expectation) MatcherFunc {
	return unary(name, func(e *Expectation, a arguments, msg ...string) *Expectation {
		return call(e, a.string(0), msg...)
	})
}

var builtinFuncs = map[string]MatcherFunc{
	// base
	"toBe":            withAny((*Expectation).ToBe),
	"toBeStrictEqual": withAny((*Expectation).ToBeStrictEqual),
	"toBeEqual":       withAny((*Expectation).ToBeEqual),

	// array
	"toBeEmpty": nullary((*Expectation).ToBeEmpty),
	"hasLength": unary("hasLength", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(1)
		return e.HasLength(a.int(0, 0), msg...)
	}),
	"toBeArrayUnique": nullary((*Expectation).ToBeArrayUnique),
	"toBeArraySorted": nullary((*Expectation).ToBeArraySorted),
	"toContain":       withAny((*Expectation).ToContain),
	"toBeArrayEqual":  withAny((*Expectation).ToBeArrayEqual),
	"toBeArray":       nullary((*Expectation).ToBeArray),

	// async
	"toBeResolvedWith": withAny((*Expectation).ToBeResolvedWith),
	"toBeRejectedWith": withAny((*Expectation).ToBeRejectedWith),

	// color
	"toBeHEXColor":  nullary((*Expectation).ToBeHEXColor),
	"toBeRGBColor":  nullary((*Expectation).ToBeRGBColor),
	"toBeRGBAColor": nullary((*Expectation).ToBeRGBAColor),
	"toBeHSVColor":  nullary((*Expectation).ToBeHSVColor),
	"toBeHSLColor":  nullary((*Expectation).ToBeHSLColor),
	"toBeHSLAColor": nullary((*Expectation).ToBeHSLAColor),
	"toBeCMYKColor": nullary((*Expectation).ToBeCMYKColor),
	"toBeColor":     nullary((*Expectation).ToBeColor),

	// html
	"toBeHtmlElement":    nullary((*Expectation).ToBeHtmlElement),
	"toBeNode":           nullary((*Expectation).ToBeNode),
	"toBeDocument":       nullary((*Expectation).ToBeDocument),
	"toBeHtmlCollection": nullary((*Expectation).ToBeHtmlCollection),
	"toBeWindow":         nullary((*Expectation).ToBeWindow),
	"toBeTextNode":       nullary((*Expectation).ToBeTextNode),
	"hasClass":           withString("hasClass", (*Expectation).HasClass),
	"hasAttribute":       withString("hasAttribute", (*Expectation).HasAttribute),
	"hasChildren":        nullary((*Expectation).HasChildren),
	"hasParent":          nullary((*Expectation).HasParent),
	"hasStyle": unary("hasStyle", func(e *Expectation, a arguments, msg ...string) *Expectation {
		return e.HasStyle(a.string(0), a.string(1), msg...)
	}),
	"hasStyleProperty": withString("hasStyleProperty", (*Expectation).HasStyleProperty),
	"hasStyles": unary("hasStyles", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(1)
		return e.HasStyles(a.any(0), msg...)
	}),
	"hasSiblings":         nullary((*Expectation).HasSiblings),
	"hasSibling":          withString("hasSibling", (*Expectation).HasSibling),
	"hasPrev":             nullary((*Expectation).HasPrev),
	"hasNext":             nullary((*Expectation).HasNext),
	"hasText":             withString("hasText", (*Expectation).HasText),
	"containsElement":     withString("containsElement", (*Expectation).ContainsElement),
	"containsElementDeep": withString("containsElementDeep", (*Expectation).ContainsElementDeep),
	"hasId":               withString("hasId", (*Expectation).HasId),
	"hasHref":             withString("hasHref", (*Expectation).HasHref),
	"hasName":             withString("hasName", (*Expectation).HasName),
	"hasSrc":              withString("hasSrc", (*Expectation).HasSrc),

	// a11y
	"toHaveAriaAttribute":    withString("toHaveAriaAttribute", (*Expectation).ToHaveAriaAttribute),
	"toHaveAriaAttributes":   nullary((*Expectation).ToHaveAriaAttributes),
	"toHaveAriaRole":         withString("toHaveAriaRole", (*Expectation).ToHaveAriaRole),
	"toHaveAriaLabel":        nullary((*Expectation).ToHaveAriaLabel),
	"toHaveAltText":          nullary((*Expectation).ToHaveAltText),
	"toBeKeyboardAccessible": nullary((*Expectation).ToBeKeyboardAccessible),

	// mock
	"toHaveBeenCalled": nullary((*Expectation).ToHaveBeenCalled),
	"toHaveBeenCalledTimes": unary("toHaveBeenCalledTimes", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(1)
		return e.ToHaveBeenCalledTimes(a.int(0, 0), msg...)
	}),
	"toHaveBeenCalledWith": func(e *Expectation, args []any, msg ...string) {
		e.ToHaveBeenCalledWith(args, msg...)
	},
	"toHaveBeenLastCalledWith": func(e *Expectation, args []any, msg ...string) {
		e.ToHaveBeenLastCalledWith(args, msg...)
	},

	// object
	"toBeObject":               withAny((*Expectation).ToBeObject),
	"toBeDeepEqual":            withAny((*Expectation).ToBeDeepEqual),
	"toBeDeepEqualSafe":        withAny((*Expectation).ToBeDeepEqualSafe),
	"toBeObjectStructureEqual": withAny((*Expectation).ToBeObjectStructureEqual),
	"hasProperty":              withString("hasProperty", (*Expectation).HasProperty),
	"hasPropertyValue": unary("hasPropertyValue", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(2)
		return e.HasPropertyValue(a.string(0), a.any(1), msg...)
	}),

	// throw
	"toThrow":      nullary((*Expectation).ToThrow),
	"toThrowError": withAny((*Expectation).ToThrowError),

	// type
	"toBeBoolean":       nullary((*Expectation).ToBeBoolean),
	"toBeDefined":       nullary((*Expectation).ToBeDefined),
	"toBeUndefined":     nullary((*Expectation).ToBeUndefined),
	"toBeNull":          nullary((*Expectation).ToBeNull),
	"toBeInteger":       nullary((*Expectation).ToBeInteger),
	"toBeSafeInteger":   nullary((*Expectation).ToBeSafeInteger),
	"toBeFloat":         nullary((*Expectation).ToBeFloat),
	"toBeNumber":        nullary((*Expectation).ToBeNumber),
	"toBeNaN":           nullary((*Expectation).ToBeNaN),
	"toBeJson":          nullary((*Expectation).ToBeJson),
	"toBeXml":           nullary((*Expectation).ToBeXml),
	"toBeType":          withString("toBeType", (*Expectation).ToBeType),
	"toBeInstanceOf":    withAny((*Expectation).ToBeInstanceOf),
	"toBeString":        nullary((*Expectation).ToBeString),
	"toBeFunction":      nullary((*Expectation).ToBeFunction),
	"toBeAsyncFunction": nullary((*Expectation).ToBeAsyncFunction),
	"toBeDate":          nullary((*Expectation).ToBeDate),
	"toBeDateObject":    nullary((*Expectation).ToBeDateObject),
	"toBeRegExp":        nullary((*Expectation).ToBeRegExp),
	"toBeBigInt":        nullary((*Expectation).ToBeBigInt),
	"toBeMap":           nullary((*Expectation).ToBeMap),
	"toBeSet":           nullary((*Expectation).ToBeSet),
	"toBeArrayBuffer":   nullary((*Expectation).ToBeArrayBuffer),
	"toBePromise":       nullary((*Expectation).ToBePromise),

	// validator
	"toBeTrue":               nullary((*Expectation).ToBeTrue),
	"toBeFalse":              nullary((*Expectation).ToBeFalse),
	"toMatch":                withAny((*Expectation).ToMatch),
	"toBeGreaterThan":        withAny((*Expectation).ToBeGreaterThan),
	"toBeGreaterThanOrEqual": withAny((*Expectation).ToBeGreaterThanOrEqual),
	"toBeLessThan":           withAny((*Expectation).ToBeLessThan),
	"toBeLessThanOrEqual":    withAny((*Expectation).ToBeLessThanOrEqual),
	"toBetween": unary("toBetween", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(2)
		return e.ToBetween(a.any(0), a.any(1), msg...)
	}),
	"toBePositive": nullary((*Expectation).ToBePositive),
	"toBeNegative": nullary((*Expectation).ToBeNegative),
	"toBeFinite":   nullary((*Expectation).ToBeFinite),
	"toBeCloseTo": unary("toBeCloseTo", func(e *Expectation, a arguments, msg ...string) *Expectation {
		return e.ToBeCloseTo(a.float(0), a.int(1, DefaultPrecision), msg...)
	}),
	"toBeIP":     nullary((*Expectation).ToBeIP),
	"toBeIPv4":   nullary((*Expectation).ToBeIPv4),
	"toBeIPv6":   nullary((*Expectation).ToBeIPv6),
	"toBeEmail":  nullary((*Expectation).ToBeEmail),
	"toBeUrl":    nullary((*Expectation).ToBeUrl),
	"toBeBase64": nullary((*Expectation).ToBeBase64),

	// render
	"toRenderWithoutError": nullary((*Expectation).ToRenderWithoutError),
	"toRenderText":         withString("toRenderText", (*Expectation).ToRenderText),
	"toContainElement":     withString("toContainElement", (*Expectation).ToContainElement),
	"toHaveElementCount": unary("toHaveElementCount", func(e *Expectation, a arguments, msg ...string) *Expectation {
		a.require(2)
		return e.ToHaveElementCount(a.string(0), a.int(1, 0), msg...)
	}),
	"toTriggerEvent": unary("toTriggerEvent", func(e *Expectation, a arguments, msg ...string) *Expectation {
		return e.ToTriggerEvent(a.string(0), a.string(1), a.listener(2), a.any(3), msg...)
	}),
	"toEventuallyContainText": unary("toEventuallyContainText", func(e *Expectation, a arguments, msg ...string) *Expectation {
		return e.ToEventuallyContainText(a.string(0), a.duration(1), msg...)
	}),
}
