package expect

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/net/html"
)

func nodeOfType(v any, t html.NodeType) bool {
	n, ok := v.(*html.Node)
	return ok && n != nil && n.Type == t
}

func (e *Expectation) ToBeHtmlElement(msg ...string) *Expectation {
	return e.Assert(nodeOfType(e.received, html.ElementNode), msg, "toBeHtmlElement")
}

// ToBeNode passes for any *html.Node.
func (e *Expectation) ToBeNode(msg ...string) *Expectation {
	n, ok := e.received.(*html.Node)
	return e.Assert(ok && n != nil, msg, "toBeNode")
}

func (e *Expectation) ToBeDocument(msg ...string) *Expectation {
	return e.Assert(nodeOfType(e.received, html.DocumentNode), msg, "toBeDocument")
}

// ToBeHtmlCollection passes for a []*html.Node.
func (e *Expectation) ToBeHtmlCollection(msg ...string) *Expectation {
	_, ok := e.received.([]*html.Node)
	return e.Assert(ok, msg, "toBeHtmlCollection")
}

func (e *Expectation) ToBeWindow(msg ...string) *Expectation {
	result := false
	switch w := e.received.(type) {
	case Window:
		result = true
	case *Window:
		result = w != nil
	}
	return e.Assert(result, msg, "toBeWindow")
}

func (e *Expectation) ToBeTextNode(msg ...string) *Expectation {
	return e.Assert(nodeOfType(e.received, html.TextNode), msg, "toBeTextNode")
}

func (e *Expectation) HasClass(expected string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var className any
	if ok {
		className, _ = attr(n, "class")
	}
	return e.Assert(ok && classes(n)[expected], msg, "hasClass", expected, className)
}

func (e *Expectation) HasAttribute(expected string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var names any
	result := false
	if ok {
		names = attrNames(n)
		_, result = attr(n, expected)
	}
	return e.Assert(result, msg, "hasAttribute", expected, names)
}

func (e *Expectation) HasChildren(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	return e.Assert(ok && len(childElements(n)) > 0, msg, "hasChildren")
}

func (e *Expectation) HasParent(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	return e.Assert(ok && parentElement(n) != nil, msg, "hasParent")
}

// HasStyle compares one inline style property. Property names may be
// written camelCase or kebab-case.
func (e *Expectation) HasStyle(property, value string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := ok && styles(n)[cssProperty(property)] == value
	return e.Assert(result, msg, "hasStyle", fmt.Sprintf("%s: %s", property, value))
}

func (e *Expectation) HasStyleProperty(property string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := false
	if ok {
		_, result = styles(n)[cssProperty(property)]
	}
	return e.Assert(result, msg, "hasStyleProperty", property)
}

// HasStyles compares every entry of expected, a map from property to value,
// against the inline style.
func (e *Expectation) HasStyles(expected any, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var actual map[string]string
	result := ok
	if ok {
		actual = styles(n)
		rv := reflect.ValueOf(expected)
		if rv.Kind() != reflect.Map {
			e.Fail("hasStyles", ErrBadArgument, expected)
		}
		iter := rv.MapRange()
		for iter.Next() {
			if actual[cssProperty(keyString(iter.Key()))] != Format(valueInterface(iter.Value())) {
				result = false
				break
			}
		}
	}
	return e.Assert(result, msg, "hasStyles", expected, actual)
}

func (e *Expectation) HasSiblings(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := false
	if ok {
		if p := parentElement(n); p != nil {
			result = len(childElements(p)) > 1
		}
	}
	return e.Assert(result, msg, "hasSiblings")
}

// HasSibling passes when another child of the parent matches selector.
func (e *Expectation) HasSibling(selector string, msg ...string) *Expectation {
	sel := e.selector("hasSibling", selector)
	n, ok := asElement(e.received)
	result := false
	if ok {
		if p := parentElement(n); p != nil {
			for _, c := range childElements(p) {
				if c != n && sel.Match(c) {
					result = true
					break
				}
			}
		}
	}
	return e.Assert(result, msg, "hasSibling", selector)
}

func (e *Expectation) HasPrev(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	return e.Assert(ok && prevElement(n) != nil, msg, "hasPrev")
}

func (e *Expectation) HasNext(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	return e.Assert(ok && nextElement(n) != nil, msg, "hasNext")
}

// HasText passes when the text content contains expected.
func (e *Expectation) HasText(expected string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	text := ""
	if ok {
		text = TextContent(n)
	}
	return e.Assert(ok && strings.Contains(text, expected), msg, "hasText", expected, text)
}

// ContainsElement checks direct children against selector.
func (e *Expectation) ContainsElement(selector string, msg ...string) *Expectation {
	sel := e.selector("containsElement", selector)
	n, ok := asElement(e.received)
	result := false
	if ok {
		for _, c := range childElements(n) {
			if sel.Match(c) {
				result = true
				break
			}
		}
	}
	return e.Assert(result, msg, "containsElement", selector)
}

// ContainsElementDeep checks all descendants against selector.
func (e *Expectation) ContainsElementDeep(selector string, msg ...string) *Expectation {
	sel := e.selector("containsElementDeep", selector)
	n, ok := asElement(e.received)
	result := false
	if ok {
		for _, c := range descendants(n) {
			if sel.Match(c) {
				result = true
				break
			}
		}
	}
	return e.Assert(result, msg, "containsElementDeep", selector)
}

func (e *Expectation) attrMatcher(name, matcher, expected string, msg []string) *Expectation {
	n, ok := asElement(e.received)
	var value any
	result := false
	if ok {
		var v string
		v, result = attr(n, name)
		result = result && v == expected
		value = v
	}
	return e.Assert(result, msg, matcher, expected, value)
}

func (e *Expectation) HasId(expected string, msg ...string) *Expectation {
	return e.attrMatcher("id", "hasId", expected, msg)
}

func (e *Expectation) HasHref(expected string, msg ...string) *Expectation {
	return e.attrMatcher("href", "hasHref", expected, msg)
}

func (e *Expectation) HasName(expected string, msg ...string) *Expectation {
	return e.attrMatcher("name", "hasName", expected, msg)
}

func (e *Expectation) HasSrc(expected string, msg ...string) *Expectation {
	return e.attrMatcher("src", "hasSrc", expected, msg)
}

func (e *Expectation) selector(matcher, s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		e.Fail(matcher, fmt.Errorf("%w: %v", ErrBadArgument, err), s)
	}
	return sel
}
