package expect

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a parsed CSS selector list. The supported subset is the tag
// name, *, #id, .class, [attr], [attr=value] and [attr="value"], combined
// with the descendant and > combinators and separated by commas.
type Selector []complexSelector

type complexSelector struct {
	parts []compound
	// combinators[i] joins parts[i] to parts[i+1]: ' ' or '>'.
	combinators []byte
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSelector
}

type attrSelector struct {
	name     string
	value    string
	hasValue bool
}

// ParseSelector parses a selector list.
func ParseSelector(s string) (Selector, error) {
	var out Selector
	for _, group := range strings.Split(s, ",") {
		cs, err := parseComplex(strings.TrimSpace(group))
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

func parseComplex(s string) (complexSelector, error) {
	var cs complexSelector
	if s == "" {
		return cs, fmt.Errorf("empty selector")
	}
	pending := byte(0)
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			if pending == 0 {
				pending = ' '
			}
			i++
			continue
		case c == '>':
			pending = '>'
			i++
			continue
		}
		comp, n, err := parseCompound(s[i:])
		if err != nil {
			return cs, fmt.Errorf("selector %q: %w", s, err)
		}
		if len(cs.parts) > 0 {
			if pending == 0 {
				pending = ' '
			}
			cs.combinators = append(cs.combinators, pending)
		} else if pending == '>' {
			return cs, fmt.Errorf("selector %q: leading combinator", s)
		}
		cs.parts = append(cs.parts, comp)
		pending = 0
		i += n
	}
	if pending == '>' || len(cs.parts) == 0 {
		return cs, fmt.Errorf("selector %q: dangling combinator", s)
	}
	return cs, nil
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func readName(s string) string {
	i := 0
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	return s[:i]
}

func parseCompound(s string) (compound, int, error) {
	var c compound
	i := 0
	if i < len(s) && s[i] == '*' {
		i++
	} else if name := readName(s); name != "" {
		c.tag = strings.ToLower(name)
		i += len(name)
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			name := readName(s[i+1:])
			if name == "" {
				return c, 0, fmt.Errorf("missing id after #")
			}
			c.id = name
			i += 1 + len(name)
		case '.':
			name := readName(s[i+1:])
			if name == "" {
				return c, 0, fmt.Errorf("missing class after .")
			}
			c.classes = append(c.classes, name)
			i += 1 + len(name)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, 0, fmt.Errorf("unterminated attribute selector")
			}
			body := s[i+1 : i+end]
			var a attrSelector
			if name, value, ok := strings.Cut(body, "="); ok {
				a.name = strings.ToLower(strings.TrimSpace(name))
				a.value = strings.Trim(strings.TrimSpace(value), `"'`)
				a.hasValue = true
			} else {
				a.name = strings.ToLower(strings.TrimSpace(body))
			}
			if a.name == "" {
				return c, 0, fmt.Errorf("empty attribute selector")
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			if i == 0 {
				return c, 0, fmt.Errorf("unexpected %q", s[i])
			}
			return c, i, nil
		}
	}
	if i == 0 {
		return c, 0, fmt.Errorf("empty compound selector")
	}
	return c, i, nil
}

// Match reports whether n matches any selector in the list.
func (sel Selector) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, cs := range sel {
		if cs.matchAt(n, len(cs.parts)-1) {
			return true
		}
	}
	return false
}

func (cs complexSelector) matchAt(n *html.Node, i int) bool {
	if !cs.parts[i].match(n) {
		return false
	}
	if i == 0 {
		return true
	}
	if cs.combinators[i-1] == '>' {
		p := parentElement(n)
		return p != nil && cs.matchAt(p, i-1)
	}
	for p := parentElement(n); p != nil; p = parentElement(p) {
		if cs.matchAt(p, i-1) {
			return true
		}
	}
	return false
}

func (c compound) match(n *html.Node) bool {
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" {
		if id, _ := attr(n, "id"); id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		have := classes(n)
		for _, want := range c.classes {
			if !have[want] {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := attr(n, a.name)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

// SelectAll returns the descendants of root matching selector in document
// order. An invalid selector matches nothing.
func SelectAll(root *html.Node, selector string) []*html.Node {
	sel, err := ParseSelector(selector)
	if err != nil || root == nil {
		return nil
	}
	return sel.selectAll(root)
}

// Select returns the first descendant of root matching selector, or nil.
func Select(root *html.Node, selector string) *html.Node {
	if all := SelectAll(root, selector); len(all) > 0 {
		return all[0]
	}
	return nil
}

func (sel Selector) selectAll(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if sel.Match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}
