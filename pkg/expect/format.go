package expect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/net/html"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Format renders v for failure output: JSON for anything that has a JSON
// shape, spew for the rest. Cycles are rendered as "[Circular]".
func Format(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	plain, ok := toPlain(reflect.ValueOf(v), map[uintptr]bool{})
	if ok {
		if b, err := marshalPlain(plain); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(spewConfig.Sdump(v))
}

// FormatIndent is Format with indented JSON, used for diffs.
func FormatIndent(v any) string {
	if v == nil {
		return "null"
	}
	plain, ok := toPlain(reflect.ValueOf(v), map[uintptr]bool{})
	if ok {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plain); err == nil {
			return strings.TrimRight(buf.String(), "\n")
		}
	}
	return strings.TrimSpace(spewConfig.Sdump(v))
}

// token renders a value for {expected}/{received} substitution. Missing
// values become the empty string.
func token(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return ""
		}
	}
	return Format(v)
}

func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// toPlain converts v to a tree of maps, slices and scalars that encoding/json
// can always marshal. ok is false when v has no sensible JSON form.
func toPlain(v reflect.Value, seen map[uintptr]bool) (any, bool) {
	if !v.IsValid() {
		return nil, true
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			return x.Format(time.RFC3339Nano), true
		case *regexp.Regexp:
			if x == nil {
				return nil, true
			}
			return "/" + x.String() + "/", true
		case *big.Int:
			if x == nil {
				return nil, true
			}
			return x.String(), true
		case *html.Node:
			if x == nil {
				return nil, true
			}
			return renderNode(x), true
		case error:
			if v.Kind() == reflect.Ptr && v.IsNil() {
				return nil, true
			}
			return x.Error(), true
		case json.RawMessage:
			var out any
			if err := json.Unmarshal(x, &out); err == nil {
				return out, true
			}
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) {
			return "NaN", true
		}
		if math.IsInf(f, 1) {
			return "Infinity", true
		}
		if math.IsInf(f, -1) {
			return "-Infinity", true
		}
		return f, true
	case reflect.String:
		return v.String(), true
	case reflect.Func:
		if v.IsNil() {
			return nil, true
		}
		return "[Function]", true
	case reflect.Chan:
		return "[Channel]", true
	case reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
		return toPlain(v.Elem(), seen)
	case reflect.Ptr:
		if v.IsNil() {
			return nil, true
		}
		p := v.Pointer()
		if seen[p] {
			return "[Circular]", true
		}
		seen[p] = true
		defer delete(seen, p)
		return toPlain(v.Elem(), seen)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return nil, true
			}
			p := v.Pointer()
			if p != 0 && seen[p] {
				return "[Circular]", true
			}
			if p != 0 {
				seen[p] = true
				defer delete(seen, p)
			}
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, ok := toPlain(v.Index(i), seen)
			if !ok {
				return nil, false
			}
			out[i] = item
		}
		return out, true
	case reflect.Map:
		if v.IsNil() {
			return nil, true
		}
		p := v.Pointer()
		if seen[p] {
			return "[Circular]", true
		}
		seen[p] = true
		defer delete(seen, p)
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			item, ok := toPlain(iter.Value(), seen)
			if !ok {
				return nil, false
			}
			out[keyString(iter.Key())] = item
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]any)
		for _, f := range jsonFields(v.Type()) {
			fv := v.FieldByIndex(f.index)
			if f.omitEmpty && fv.IsZero() {
				continue
			}
			item, ok := toPlain(fv, seen)
			if !ok {
				return nil, false
			}
			out[f.name] = item
		}
		return out, true
	}
	return nil, false
}

func keyString(k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return fmt.Sprintf("<%s>", n.Data)
	}
	return buf.String()
}
