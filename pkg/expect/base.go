package expect

// ToBe asserts identity in the SameValue sense: numbers compare by value,
// NaN is equal to NaN, +0 and -0 differ, and maps, slices and funcs compare
// by reference.
func (e *Expectation) ToBe(expected any, msg ...string) *Expectation {
	return e.Assert(sameValue(e.received, expected), msg, "toBe", expected)
}

// ToBeStrictEqual asserts equality with identical dynamic types.
func (e *Expectation) ToBeStrictEqual(expected any, msg ...string) *Expectation {
	return e.Assert(strictEqual(e.received, expected), msg, "toBeStrictEqual", expected)
}

// ToBeEqual asserts coercing equality, so 1 equals "1" and true equals 1.
func (e *Expectation) ToBeEqual(expected any, msg ...string) *Expectation {
	return e.Assert(looseEqual(e.received, expected), msg, "toBeEqual", expected)
}
