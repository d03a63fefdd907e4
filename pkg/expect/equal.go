package expect

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	bigIntType = reflect.TypeOf(big.Int{})
)

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// toNumber returns v as a float64 when it has a numeric kind.
func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return valueNumber(reflect.ValueOf(v))
}

func valueNumber(rv reflect.Value) (float64, bool) {
	switch {
	case isIntKind(rv.Kind()):
		return float64(rv.Int()), true
	case isUintKind(rv.Kind()):
		return float64(rv.Uint()), true
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// numberLike converts numbers and numeric strings.
func numberLike(v any) (float64, bool) {
	if f, ok := toNumber(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// sameNumber compares two numeric reflect values. Integers are compared
// exactly; anything involving a float goes through float64.
func sameNumber(a, b reflect.Value, zeroSigned, nanEqual bool) bool {
	switch {
	case isIntKind(a.Kind()) && isIntKind(b.Kind()):
		return a.Int() == b.Int()
	case isUintKind(a.Kind()) && isUintKind(b.Kind()):
		return a.Uint() == b.Uint()
	case isIntKind(a.Kind()) && isUintKind(b.Kind()):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case isUintKind(a.Kind()) && isIntKind(b.Kind()):
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}
	x, _ := valueNumber(a)
	y, _ := valueNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return nanEqual && math.IsNaN(x) && math.IsNaN(y)
	}
	if zeroSigned && x == 0 && y == 0 {
		return math.Signbit(x) == math.Signbit(y)
	}
	return x == y
}

// isNil reports whether v is an untyped nil or a nil pointer, map, slice,
// func, chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// sameValue follows SameValue semantics: numbers compare by value across
// numeric types, NaN equals NaN and +0 differs from -0. Comparable values
// compare with ==, everything else by identity.
func sameValue(a, b any) bool {
	return sameValueOpt(a, b, true)
}

// sameValueZero is sameValue with +0 and -0 considered equal.
func sameValueZero(a, b any) bool {
	return sameValueOpt(a, b, false)
}

func sameValueOpt(a, b any, zeroSigned bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumberKind(ra.Kind()) && isNumberKind(rb.Kind()) {
		return sameNumber(ra, rb, zeroSigned, true)
	}
	if ra.Type() != rb.Type() {
		return false
	}
	return identical(ra, rb)
}

// identical compares two values of the same type with == when possible and
// by reference otherwise.
func identical(a, b reflect.Value) (eq bool) {
	switch a.Kind() {
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Ptr, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	}
	if !a.Type().Comparable() {
		return false
	}
	// Structs and arrays holding interfaces can still panic on ==.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a.Interface() == b.Interface()
}

// strictEqual requires identical dynamic types. Numbers use IEEE comparison,
// so NaN never equals itself and +0 equals -0.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	if isNumberKind(ra.Kind()) {
		return sameNumber(ra, rb, false, false)
	}
	return identical(ra, rb)
}

// looseEqual applies coercing equality: nil equals any nil value, numbers
// compare with numeric strings, and booleans coerce to 0 or 1.
func looseEqual(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := ra.Kind(), rb.Kind()
	if ka == reflect.String && kb == reflect.String {
		return ra.String() == rb.String()
	}
	if ka == reflect.Bool && kb == reflect.Bool {
		return ra.Bool() == rb.Bool()
	}
	scalar := func(k reflect.Kind) bool {
		return isNumberKind(k) || k == reflect.String || k == reflect.Bool
	}
	if scalar(ka) && scalar(kb) {
		x, okx := coerce(ra)
		y, oky := coerce(rb)
		if !okx || !oky {
			return false
		}
		return x == y
	}
	return sameValue(a, b)
}

func coerce(rv reflect.Value) (float64, bool) {
	switch {
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	case rv.Kind() == reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return valueNumber(rv)
}

type visit struct {
	a, b uintptr
	typ  reflect.Type
}

// deepEqual compares a and b structurally. Numbers compare by value, maps
// and structs compare by key or JSON field name, and cyclic references are
// tolerated.
func deepEqual(a, b any) bool {
	return deepValueEqual(reflect.ValueOf(a), reflect.ValueOf(b), map[visit]bool{})
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func nilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func deepValueEqual(a, b reflect.Value, visited map[visit]bool) bool {
	a, b = indirect(a), indirect(b)
	if nilValue(a) || nilValue(b) {
		return nilValue(a) && nilValue(b)
	}

	if isNumberKind(a.Kind()) && isNumberKind(b.Kind()) {
		return sameNumber(a, b, false, true)
	}

	if a.Kind() == reflect.Ptr && b.Kind() == reflect.Ptr {
		v := visit{a.Pointer(), b.Pointer(), a.Type()}
		if visited[v] {
			return true
		}
		visited[v] = true
	}
	if a.Kind() == reflect.Ptr {
		a = a.Elem()
	}
	if b.Kind() == reflect.Ptr {
		b = b.Elem()
	}
	if a.Kind() == reflect.Ptr || b.Kind() == reflect.Ptr {
		return deepValueEqual(a, b, visited)
	}

	if a.Type() == timeType && b.Type() == timeType && a.CanInterface() && b.CanInterface() {
		return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
	}
	if a.Type() == bigIntType && b.Type() == bigIntType && a.CanAddr() && b.CanAddr() {
		return a.Addr().Interface().(*big.Int).Cmp(b.Addr().Interface().(*big.Int)) == 0
	}

	switch a.Kind() {
	case reflect.Bool:
		return b.Kind() == reflect.Bool && a.Bool() == b.Bool()
	case reflect.String:
		return b.Kind() == reflect.String && a.String() == b.String()
	case reflect.Func, reflect.Chan:
		return a.Kind() == b.Kind() && a.Pointer() == b.Pointer()
	case reflect.Slice, reflect.Array:
		if b.Kind() != reflect.Slice && b.Kind() != reflect.Array {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		if a.Kind() == reflect.Slice && b.Kind() == reflect.Slice && a.Len() > 0 {
			v := visit{a.Pointer(), b.Pointer(), a.Type()}
			if visited[v] {
				return true
			}
			visited[v] = true
		}
		for i := 0; i < a.Len(); i++ {
			if !deepValueEqual(a.Index(i), b.Index(i), visited) {
				return false
			}
		}
		return true
	case reflect.Map, reflect.Struct:
		if b.Kind() != reflect.Map && b.Kind() != reflect.Struct {
			return false
		}
		if a.Kind() == reflect.Struct && b.Kind() == reflect.Struct && a.Type() == b.Type() && len(jsonFields(a.Type())) == 0 {
			return identicalStruct(a, b)
		}
		if a.Kind() == reflect.Map && b.Kind() == reflect.Map {
			v := visit{a.Pointer(), b.Pointer(), a.Type()}
			if visited[v] {
				return true
			}
			visited[v] = true
		}
		ea, eb := entries(a), entries(b)
		if len(ea) != len(eb) {
			return false
		}
		for k, va := range ea {
			vb, ok := eb[k]
			if !ok || !deepValueEqual(va, vb, visited) {
				return false
			}
		}
		return true
	}
	return false
}

// identicalStruct handles structs with no exported fields, which can only be
// compared as opaque values.
func identicalStruct(a, b reflect.Value) bool {
	if a.CanInterface() && b.CanInterface() {
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
	return false
}

// entries returns the keyed members of a map or struct. Struct members are
// named by their JSON field name.
func entries(v reflect.Value) map[string]reflect.Value {
	out := make(map[string]reflect.Value)
	switch v.Kind() {
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			out[keyString(iter.Key())] = iter.Value()
		}
	case reflect.Struct:
		for _, f := range jsonFields(v.Type()) {
			fv := v.FieldByIndex(f.index)
			if f.omitEmpty && fv.IsZero() {
				continue
			}
			out[f.name] = fv
		}
	}
	return out
}

// structureEqual compares the key sets of two objects recursively. Leaf
// values and arrays are not compared.
func structureEqual(a, b any) bool {
	return structureValueEqual(reflect.ValueOf(a), reflect.ValueOf(b), 0)
}

func structureValueEqual(a, b reflect.Value, depth int) bool {
	a, b = derefAll(a), derefAll(b)
	oa, ob := isKeyed(a), isKeyed(b)
	if !oa || !ob {
		return oa == ob
	}
	if depth > 64 {
		return true
	}
	ea, eb := entries(a), entries(b)
	if len(ea) != len(eb) {
		return false
	}
	for k, va := range ea {
		vb, ok := eb[k]
		if !ok || !structureValueEqual(va, vb, depth+1) {
			return false
		}
	}
	return true
}

func derefAll(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isKeyed(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	if v.Type() == timeType {
		return false
	}
	return v.Kind() == reflect.Map || v.Kind() == reflect.Struct
}

// isObject reports whether v is an object in the assertion sense: a map,
// struct, slice or array, or a pointer to one.
func isObject(v any) bool {
	rv := derefAll(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return !nilValue(rv)
	case reflect.Struct:
		return true
	}
	return false
}

// shallowEqual compares the top-level members of two objects with sameValue.
func shallowEqual(a, b any) bool {
	ra, rb := derefAll(reflect.ValueOf(a)), derefAll(reflect.ValueOf(b))
	if !ra.IsValid() || !rb.IsValid() {
		return !ra.IsValid() && !rb.IsValid()
	}
	seq := func(v reflect.Value) bool { return v.Kind() == reflect.Slice || v.Kind() == reflect.Array }
	if seq(ra) || seq(rb) {
		if !seq(ra) || !seq(rb) || ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !sameValue(valueInterface(ra.Index(i)), valueInterface(rb.Index(i))) {
				return false
			}
		}
		return true
	}
	ea, eb := entries(ra), entries(rb)
	if len(ea) != len(eb) {
		return false
	}
	for k, va := range ea {
		vb, ok := eb[k]
		if !ok || !sameValue(valueInterface(va), valueInterface(vb)) {
			return false
		}
	}
	return true
}

func valueInterface(v reflect.Value) any {
	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// lookupPath walks a dotted path through maps, structs and slices. found is
// true when the final member exists, even if its value is nil.
func lookupPath(root any, path string) (value any, found bool) {
	cur := reflect.ValueOf(root)
	for _, part := range strings.Split(path, ".") {
		cur = derefAll(cur)
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Map:
			key, ok := mapKey(cur.Type().Key(), part)
			if !ok {
				return nil, false
			}
			next := cur.MapIndex(key)
			if !next.IsValid() {
				return nil, false
			}
			cur = next
		case reflect.Struct:
			next, ok := structMember(cur, part)
			if !ok {
				return nil, false
			}
			cur = next
		case reflect.Slice, reflect.Array:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)
		default:
			return nil, false
		}
	}
	return valueInterface(cur), true
}

func mapKey(t reflect.Type, part string) (reflect.Value, bool) {
	switch {
	case t.Kind() == reflect.String:
		return reflect.ValueOf(part).Convert(t), true
	case t.Kind() == reflect.Interface:
		return reflect.ValueOf(part), true
	case isIntKind(t.Kind()):
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case isUintKind(t.Kind()):
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	}
	return reflect.Value{}, false
}

func structMember(v reflect.Value, name string) (reflect.Value, bool) {
	for _, f := range jsonFields(v.Type()) {
		if f.name == name || f.goName == name {
			return v.FieldByIndex(f.index), true
		}
	}
	return reflect.Value{}, false
}

type field struct {
	name      string
	goName    string
	index     []int
	omitEmpty bool
}

var fieldCache sync.Map // reflect.Type -> []field

// jsonFields lists the exported fields of a struct type under their JSON
// names, flattening embedded structs the way encoding/json does.
func jsonFields(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}
	var fields []field
	seen := map[string]bool{}
	var walk func(t reflect.Type, index []int)
	walk = func(t reflect.Type, index []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			idx := append(append([]int(nil), index...), i)
			tag := sf.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			if sf.Anonymous && name == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Ptr {
					continue
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}
			if name == "" {
				name = sf.Name
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			fields = append(fields, field{
				name:      name,
				goName:    sf.Name,
				index:     idx,
				omitEmpty: strings.Contains(opts, "omitempty"),
			})
		}
	}
	walk(t, nil)
	fieldCache.Store(t, fields)
	return fields
}
