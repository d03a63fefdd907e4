package expect

import "fmt"

func (e *Expectation) requireObject(matcher string, values ...any) {
	if !isObject(e.received) {
		e.Fail(matcher, ErrNotObject, nil)
	}
	for _, v := range values {
		if !isObject(v) {
			e.Fail(matcher, ErrNotObject, v)
		}
	}
}

// ToBeObject compares the top-level members of two objects by identity.
func (e *Expectation) ToBeObject(expected any, msg ...string) *Expectation {
	e.requireObject("toBeObject", expected)
	return e.Assert(shallowEqual(e.received, expected), msg, "toBeObject", expected)
}

// ToBeDeepEqual compares recursively. Cyclic values are supported.
func (e *Expectation) ToBeDeepEqual(expected any, msg ...string) *Expectation {
	e.requireObject("toBeDeepEqual", expected)
	return e.Assert(deepEqual(e.received, expected), msg, "toBeDeepEqual", expected)
}

// ToBeDeepEqualSafe compares the serialized forms of both values. Cycles
// serialize to a marker, so two differently shaped cycles may compare equal.
func (e *Expectation) ToBeDeepEqualSafe(expected any, msg ...string) *Expectation {
	e.requireObject("toBeDeepEqualSafe", expected)
	return e.Assert(Format(e.received) == Format(expected), msg, "toBeDeepEqualSafe", expected)
}

// ToBeObjectStructureEqual compares key sets only, recursing into nested
// objects.
func (e *Expectation) ToBeObjectStructureEqual(expected any, msg ...string) *Expectation {
	e.requireObject("toBeObjectStructureEqual", expected)
	return e.Assert(structureEqual(e.received, expected), msg, "toBeObjectStructureEqual", expected)
}

// HasProperty looks up a dotted path such as "user.address.city". A member
// that exists with a nil value counts as present.
func (e *Expectation) HasProperty(path string, msg ...string) *Expectation {
	e.requireObject("hasProperty")
	value, found := lookupPath(e.received, path)
	return e.Assert(found, msg, "hasProperty", path, value)
}

// HasPropertyValue looks up a dotted path and compares the member with
// expected by identity.
func (e *Expectation) HasPropertyValue(path string, expected any, msg ...string) *Expectation {
	e.requireObject("hasPropertyValue")
	value, found := lookupPath(e.received, path)
	result := found && sameValue(value, expected)
	return e.Assert(result, msg, "hasPropertyValue", fmt.Sprintf("%s: %s", path, Format(expected)), value)
}
