package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is one raw field value as produced by the extraction service: a string,
// a number, a bool, or something non-scalar. The zero Value is absent.
type Value struct {
	v any
}

// Of wraps a raw value. Integer and float kinds are kept numeric.
func Of(v any) Value {
	switch t := v.(type) {
	case int:
		return Value{v: float64(t)}
	case int32:
		return Value{v: float64(t)}
	case int64:
		return Value{v: float64(t)}
	case float32:
		return Value{v: float64(t)}
	case Value:
		return t
	}
	return Value{v: v}
}

// Absent is the missing value.
var Absent = Value{}

// Raw returns the underlying value.
func (v Value) Raw() any { return v.v }

// Present reports whether the value carries data. Blank strings count as absent.
func (v Value) Present() bool {
	switch t := v.v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}

// IsNumber reports whether the value was delivered as a number rather than text.
func (v Value) IsNumber() bool {
	switch v.v.(type) {
	case float64, json.Number:
		return true
	}
	return false
}

// Number returns the numeric value when the field was delivered as a number.
func (v Value) Number() (float64, bool) {
	switch t := v.v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// Text returns the scalar value rendered as text.
func (v Value) Text() (string, bool) {
	switch t := v.v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// String renders the value for display; absent or non-scalar values render empty.
func (v Value) String() string {
	s, _ := v.Text()
	return strings.TrimSpace(s)
}
