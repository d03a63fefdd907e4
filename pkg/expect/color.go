package expect

func (e *Expectation) colorMatcher(kind, matcher string, msg []string) *Expectation {
	return e.Assert(testValue(e.received, kind), msg, matcher, e.received)
}

// ToBeHEXColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa.
func (e *Expectation) ToBeHEXColor(msg ...string) *Expectation {
	return e.colorMatcher("hex", "toBeHEXColor", msg)
}

func (e *Expectation) ToBeRGBColor(msg ...string) *Expectation {
	return e.colorMatcher("rgb", "toBeRGBColor", msg)
}

func (e *Expectation) ToBeRGBAColor(msg ...string) *Expectation {
	return e.colorMatcher("rgba", "toBeRGBAColor", msg)
}

func (e *Expectation) ToBeHSVColor(msg ...string) *Expectation {
	return e.colorMatcher("hsv", "toBeHSVColor", msg)
}

func (e *Expectation) ToBeHSLColor(msg ...string) *Expectation {
	return e.colorMatcher("hsl", "toBeHSLColor", msg)
}

func (e *Expectation) ToBeHSLAColor(msg ...string) *Expectation {
	return e.colorMatcher("hsla", "toBeHSLAColor", msg)
}

func (e *Expectation) ToBeCMYKColor(msg ...string) *Expectation {
	return e.colorMatcher("cmyk", "toBeCMYKColor", msg)
}

// ToBeColor accepts any of the supported color notations.
func (e *Expectation) ToBeColor(msg ...string) *Expectation {
	result := false
	for _, kind := range []string{"hex", "rgb", "rgba", "hsl", "hsla", "hsv", "cmyk"} {
		if testValue(e.received, kind) {
			result = true
			break
		}
	}
	return e.Assert(result, msg, "toBeColor", e.received)
}
