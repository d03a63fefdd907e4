package expect

// Message holds the failure text of a matcher. Positive is used when a plain
// expectation fails, Negative when a negated one does. Both may contain the
// {expected} and {received} tokens.
type Message struct {
	Positive string `yaml:"positive" json:"positive"`
	Negative string `yaml:"negative" json:"negative"`
}

// Messages maps matcher names to their failure text.
type Messages map[string]Message

const (
	genericPositive = "Expected value not to match condition"
	genericNegative = "Expected value to match condition"
)

var defaultMessages = Messages{
	// array
	"toBeEmpty":       {"Array is not empty", "Array is empty"},
	"hasLength":       {"Value has length {received}, expected {expected}", "Value has expected length {expected}"},
	"toBeArrayUnique": {"Array has duplicates", "Array is unique"},
	"toBeArraySorted": {"Array is not sorted, expected {expected}", "Array is sorted"},
	"toContain":       {"Value does not contain {expected}", "Value contains {expected}"},
	"toBeArrayEqual":  {"Arrays are not equal: expected {expected}, received {received}", "Arrays are equal"},
	"toBeArray":       {"Value is not an array", "Value is an array"},

	// async
	"toBeResolvedWith": {"Promise was not resolved with {expected}, resolved with {received}", "Promise was resolved with {expected}"},
	"toBeRejectedWith": {"Promise was not rejected with {expected}, rejected with {received}", "Promise was rejected with {expected}"},

	// base
	"toBe":            {"Values are not equal: expected {expected}, received {received}", "Values are equal: {received}"},
	"toBeStrictEqual": {"Values are not strictly equal: expected {expected}, received {received}", "Values are strictly equal: {received}"},
	"toBeEqual":       {"Values are not equal: expected {expected}, received {received}", "Values are equal: {received}"},

	// color
	"toBeHEXColor":  {"Value {received} is not a valid HEX color", "Value {received} is a valid HEX color"},
	"toBeRGBColor":  {"Value {received} is not a valid RGB color", "Value {received} is a valid RGB color"},
	"toBeRGBAColor": {"Value {received} is not a valid RGBA color", "Value {received} is a valid RGBA color"},
	"toBeHSVColor":  {"Value {received} is not a valid HSV color", "Value {received} is a valid HSV color"},
	"toBeHSLColor":  {"Value {received} is not a valid HSL color", "Value {received} is a valid HSL color"},
	"toBeHSLAColor": {"Value {received} is not a valid HSLA color", "Value {received} is a valid HSLA color"},
	"toBeCMYKColor": {"Value {received} is not a valid CMYK color", "Value {received} is a valid CMYK color"},
	"toBeColor":     {"Value {received} is not a valid color", "Value {received} is a valid color"},

	// html
	"toBeHtmlElement":     {"Value is not a HTMLElement", "Value is a HTMLElement"},
	"toBeNode":            {"Value is not a Node element", "Value is a Node"},
	"toBeDocument":        {"Value is not a Document element", "Value is a Document"},
	"toBeHtmlCollection":  {"Value is not a valid HTMLCollection", "Value is a valid HTMLCollection"},
	"toBeWindow":          {"Value is not a Window element", "Value is a Window"},
	"toBeTextNode":        {"Value is not a TextNode element", "Value is a TextNode"},
	"hasClass":            {"Element does not have class {expected}", "Element has class {expected}"},
	"hasAttribute":        {"Element does not have attribute {expected}", "Element has attribute {expected}"},
	"hasChildren":         {"Element does not have children", "Element has children"},
	"hasParent":           {"Element does not have parent", "Element has parent"},
	"hasStyle":            {"Element does not have style {expected}", "Element has style {expected}"},
	"hasStyleProperty":    {"Element does not have style property {expected}", "Element has style property {expected}"},
	"hasStyles":           {"Element does not have expected styles", "Element has expected styles"},
	"hasSiblings":         {"Element does not have siblings", "Element has siblings"},
	"hasSibling":          {"Element does not have sibling {expected}", "Element has sibling {expected}"},
	"hasPrev":             {"Element does not have previous sibling", "Element has previous sibling"},
	"hasNext":             {"Element does not have next sibling", "Element has next sibling"},
	"hasText":             {"Element does not have text {expected}", "Element has text {expected}"},
	"containsElement":     {"Element does not contain {expected}", "Element contains {expected}"},
	"containsElementDeep": {"Element does not contain {expected} deeply", "Element contains {expected} deeply"},
	"hasId":               {"Element does not have id {expected}", "Element has id {expected}"},
	"hasHref":             {"Element does not have href {expected}", "Element has href {expected}"},
	"hasName":             {"Element does not have name {expected}", "Element has name {expected}"},
	"hasSrc":              {"Element does not have src {expected}", "Element has src {expected}"},

	// a11y
	"toHaveAriaAttribute":    {"Element does not have aria attribute {expected}", "Element has aria attribute {expected}"},
	"toHaveAriaAttributes":   {"Element does not have aria attributes", "Element has aria attributes"},
	"toHaveAriaRole":         {"Element does not have aria role {expected}", "Element has aria role {expected}"},
	"toHaveAriaLabel":        {"Element does not have aria label", "Element has aria label {expected}"},
	"toHaveAltText":          {"Element does not have alt text", "Element has alt text {expected}"},
	"toBeKeyboardAccessible": {"Element is not keyboard accessible", "Element is keyboard accessible"},

	// mock
	"toHaveBeenCalled":         {"Function was not called", "Function was called {received} times"},
	"toHaveBeenCalledTimes":    {"Function was called {received} times, expected {expected}", "Function was called expected times"},
	"toHaveBeenCalledWith":     {"Function was not called with {expected}", "Function was called with {expected}"},
	"toHaveBeenLastCalledWith": {"Function was not last called with {expected}", "Function was last called with {expected}"},

	// object
	"toBeObject":               {"Value is not an object equal to {expected}", "Value is an object equal to {expected}"},
	"toBeDeepEqual":            {"Objects are not deeply equal", "Objects are deeply equal"},
	"toBeDeepEqualSafe":        {"Objects are not deeply equal (safe)", "Objects are deeply equal (safe)"},
	"toBeObjectStructureEqual": {"Objects are not equal by structure", "Objects are equal by structure"},
	"hasProperty":              {"Object does not have property {expected}", "Object has property {expected}"},
	"hasPropertyValue":         {"Object does not have property value {expected}, found {received}", "Object has property value {expected}"},

	// throw
	"toThrow":      {"Function did not throw", "Function threw {received}"},
	"toThrowError": {"Function did not throw error matching {expected}, threw {received}", "Function threw error matching {expected}"},

	// type
	"toBeBoolean":       {"Value is not a boolean", "Value is a boolean"},
	"toBeDefined":       {"Value is not defined", "Value is defined"},
	"toBeUndefined":     {"Value is defined", "Value is undefined"},
	"toBeNull":          {"Value is not null", "Value is null"},
	"toBeInteger":       {"Value {received} is not an integer", "Value {received} is an integer"},
	"toBeSafeInteger":   {"Value {received} is not a safe integer", "Value {received} is a safe integer"},
	"toBeFloat":         {"Value {received} is not a float", "Value {received} is a float"},
	"toBeNumber":        {"Value {received} is not a number", "Value {received} is a number"},
	"toBeNaN":           {"Value {received} is not NaN", "Value {received} is NaN"},
	"toBeJson":          {"Value is not a valid JSON", "Value is a valid JSON"},
	"toBeXml":           {"Value is not a valid XML", "Value is a valid XML"},
	"toBeType":          {"Value is of type {received}, expected {expected}", "Value is of type {expected}"},
	"toBeInstanceOf":    {"Value is an instance of {received}, expected {expected}", "Value is an instance of {expected}"},
	"toBeString":        {"Value is not a string", "Value is a string"},
	"toBeFunction":      {"Value is not a function", "Value is a function"},
	"toBeAsyncFunction": {"Value is not an async function", "Value is an async function"},
	"toBeDate":          {"Value is not a date", "Value is a date"},
	"toBeDateObject":    {"Value is not a date object", "Value is a date object"},
	"toBeRegExp":        {"Value is not a regular expression", "Value is a regular expression"},
	"toBeBigInt":        {"Value is not a BigInt", "Value is a BigInt"},
	"toBeMap":           {"Value is not a Map", "Value is a Map"},
	"toBeSet":           {"Value is not a Set", "Value is a Set"},
	"toBeArrayBuffer":   {"Value is not an ArrayBuffer", "Value is an ArrayBuffer"},
	"toBePromise":       {"Value is not a Promise", "Value is a Promise"},

	// validator
	"toBeTrue":               {"Value is not true", "Value is true"},
	"toBeFalse":              {"Value is not false", "Value is false"},
	"toMatch":                {"Value {received} does not match {expected}", "Value {received} matches {expected}"},
	"toBeGreaterThan":        {"Value {received} is not greater than {expected}", "Value {received} is greater than {expected}"},
	"toBeGreaterThanOrEqual": {"Value {received} is not greater than or equal to {expected}", "Value {received} is greater than or equal to {expected}"},
	"toBeLessThan":           {"Value {received} is not less than {expected}", "Value {received} is less than {expected}"},
	"toBeLessThanOrEqual":    {"Value {received} is not less than or equal to {expected}", "Value {received} is less than or equal to {expected}"},
	"toBetween":              {"Value {received} is not {expected}", "Value {received} is {expected}"},
	"toBePositive":           {"Value {received} is not positive", "Value {received} is positive"},
	"toBeNegative":           {"Value {received} is not negative", "Value {received} is negative"},
	"toBeFinite":             {"Value {received} is not finite", "Value {received} is finite"},
	"toBeCloseTo":            {"Value {received} is not close to {expected}", "Value {received} is close to {expected}"},
	"toBeIP":                 {"Value {received} is not a valid IP address", "Value {received} is a valid IP address"},
	"toBeIPv4":               {"Value {received} is not a valid IPv4 address", "Value {received} is a valid IPv4 address"},
	"toBeIPv6":               {"Value {received} is not a valid IPv6 address", "Value {received} is a valid IPv6 address"},
	"toBeEmail":              {"Value {received} is not a valid email address", "Value {received} is a valid email address"},
	"toBeUrl":                {"Value {received} is not a valid URL", "Value {received} is a valid URL"},
	"toBeBase64":             {"Value is not a valid Base64 string", "Value is a valid Base64 string"},

	// render
	"toRenderWithoutError":    {"Component failed to render: {received}", "Component rendered without error"},
	"toRenderText":            {"Rendered output does not contain text {expected}", "Rendered output contains text {expected}"},
	"toContainElement":        {"Rendered output does not contain {expected}", "Rendered output contains {expected}"},
	"toHaveElementCount":      {"{expected}, {received}", "Rendered output has {expected}"},
	"toTriggerEvent":          {"Event {expected} was not handled", "Event {expected} was handled"},
	"toEventuallyContainText": {"Rendered output did not contain text {expected} in time", "Rendered output contained text {expected}"},
}

// DefaultMessages returns a copy of the built-in message table.
func DefaultMessages() Messages {
	return defaultMessages.Merge(nil)
}

// Merge returns a new table holding m overlaid with other. Neither input is
// modified.
func (m Messages) Merge(other Messages) Messages {
	out := make(Messages, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// lookup returns the positive and negative text for a matcher, falling back
// to the generic text for unknown matchers or empty entries.
func (m Messages) lookup(matcher string) (string, string) {
	positive, negative := genericPositive, genericNegative
	if msg, ok := m[matcher]; ok {
		if msg.Positive != "" {
			positive = msg.Positive
		}
		if msg.Negative != "" {
			negative = msg.Negative
		}
	}
	return positive, negative
}
