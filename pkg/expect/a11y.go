package expect

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags that take keyboard focus without a tabindex. Entries with an
// attribute only count when the attribute is present.
var nativelyFocusable = []struct{ tag, attr string }{
	{"a", ""},
	{"button", ""},
	{"input", ""},
	{"select", ""},
	{"textarea", ""},
	{"summary", ""},
	{"audio", "controls"},
	{"video", "controls"},
	{"", "contenteditable"},
}

func (e *Expectation) ToHaveAriaAttribute(name string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := false
	if ok {
		_, result = attr(n, "aria-"+name)
	}
	return e.Assert(result, msg, "toHaveAriaAttribute", "aria-"+name)
}

// ToHaveAriaAttributes passes when any aria-* attribute is present.
func (e *Expectation) ToHaveAriaAttributes(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := false
	if ok {
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "aria-") {
				result = true
				break
			}
		}
	}
	return e.Assert(result, msg, "toHaveAriaAttributes", "aria-*")
}

func (e *Expectation) ToHaveAriaRole(role string, msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var got any
	result := false
	if ok {
		v, present := attr(n, "role")
		result = present && v == role
		got = v
	}
	return e.Assert(result, msg, "toHaveAriaRole", role, got)
}

func (e *Expectation) ToHaveAriaLabel(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var label any
	result := false
	if ok {
		var v string
		v, result = attr(n, "aria-label")
		label = v
	}
	return e.Assert(result, msg, "toHaveAriaLabel", label)
}

// ToHaveAltText requires a non-empty alt attribute.
func (e *Expectation) ToHaveAltText(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	var alt any
	result := false
	if ok {
		v, _ := attr(n, "alt")
		result = v != ""
		alt = v
	}
	return e.Assert(result, msg, "toHaveAltText", alt)
}

// ToBeKeyboardAccessible passes for visible elements that are focusable by
// default or carry a tabindex other than -1.
func (e *Expectation) ToBeKeyboardAccessible(msg ...string) *Expectation {
	n, ok := asElement(e.received)
	result := ok && keyboardAccessible(n)
	return e.Assert(result, msg, "toBeKeyboardAccessible", "Accessible", "Not Accessible")
}

func keyboardAccessible(n *html.Node) bool {
	if hidden(n) {
		return false
	}
	for _, f := range nativelyFocusable {
		if f.tag != "" && n.Data != f.tag {
			continue
		}
		if f.attr != "" {
			if _, ok := attr(n, f.attr); !ok {
				continue
			}
		}
		return true
	}
	tabindex, ok := attr(n, "tabindex")
	return ok && strings.TrimSpace(tabindex) != "-1"
}

func hidden(n *html.Node) bool {
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if v, _ := attr(n, "aria-hidden"); v == "true" {
		return true
	}
	s := styles(n)
	return s["display"] == "none" || s["visibility"] == "hidden"
}
