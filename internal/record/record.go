// Package record models the loosely keyed field map produced by the document
// extraction service. Records are built once per document and never mutated by
// the compliance core.
package record

import (
	"sort"
	"strings"
)

// Record is an ordered raw-key to raw-value map.
type Record struct {
	keys   []string
	values map[string]Value
}

func newRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// FromPairs builds a record from alternating key, value arguments, keeping order.
// A repeated key keeps its first value.
func FromPairs(kv ...any) *Record {
	r := newRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		r.add(k, Of(kv[i+1]))
	}
	return r
}

// FromMap builds a record from an unordered map. Keys are sorted so iteration is deterministic.
func FromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := newRecord()
	for _, k := range keys {
		r.add(k, Of(m[k]))
	}
	return r
}

func (r *Record) add(k string, v Value) {
	if _, exists := r.values[k]; exists {
		return
	}
	r.keys = append(r.keys, k)
	r.values[k] = v
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns field names in document order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value under key, or Absent.
func (r *Record) Get(key string) Value {
	if r == nil {
		return Absent
	}
	return r.values[key]
}

// Lookup returns the value under key, matching case-insensitively when there is no exact hit.
func (r *Record) Lookup(key string) (Value, bool) {
	if r == nil {
		return Absent, false
	}
	if v, ok := r.values[key]; ok {
		return v, true
	}
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return r.values[k], true
		}
	}
	return Absent, false
}

// GetString returns the trimmed text under key if present.
func (r *Record) GetString(key string) (string, bool) {
	v, ok := r.Lookup(key)
	if !ok || !v.Present() {
		return "", false
	}
	s, ok := v.Text()
	return strings.TrimSpace(s), ok
}

// GetNumber returns the number under key if it was delivered as a number.
func (r *Record) GetNumber(key string) (float64, bool) {
	v, ok := r.Lookup(key)
	if !ok {
		return 0, false
	}
	return v.Number()
}

// FirstString returns the first non-empty text among keys.
func (r *Record) FirstString(keys ...string) string {
	for _, k := range keys {
		if s, ok := r.GetString(k); ok && s != "" {
			return s
		}
	}
	return ""
}

// Each calls fn for every field in document order until fn returns false.
func (r *Record) Each(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Map returns a plain copy of the raw values.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.Len())
	r.Each(func(k string, v Value) bool {
		out[k] = v.Raw()
		return true
	})
	return out
}
