package modelstate

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

// NormalizeValue converts v into a scalar that can be stored or logged as is.
//
// Values are unwrapped in order: json.Marshaler output, backing scalars of
// enum-like types (driver.Valuer or named basic types), fmt.Stringer text,
// the target of pointers, then JSON text for composites. Encoding failures
// return v unchanged.
func NormalizeValue(v any) any {
	if isNilPointer(v) {
		return nil
	}

	if _, ok := v.(json.Marshaler); ok {
		if out, ok := jsonSerialize(v); ok {
			v = out
		}
	}

	if s, ok := backingScalar(v); ok {
		return NormalizeValue(s)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	if b, ok := v.([]byte); ok {
		return string(b)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		// Nullable columns: normalize what the pointer holds.
		return NormalizeValue(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(b)
	}
	return v
}

// jsonSerialize unwraps one level of JSON serialization.
func jsonSerialize(v any) (any, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, false
	}
	if n, ok := out.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return out, true
}

// backingScalar returns the underlying value of an enum-like v.
func backingScalar(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	if valuer, ok := v.(driver.Valuer); ok {
		s, err := valuer.Value()
		if err != nil {
			return nil, false
		}
		// A Valuer returning its own type is unwrapped by kind below.
		if s == nil || reflect.TypeOf(s) != rv.Type() {
			return s, true
		}
	}

	if !rv.IsValid() || rv.Type().PkgPath() == "" {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return rv.String(), true
	}
	return nil, false
}
