// Package changeset computes the minimal top-level patch between two
// versions of a record.
package changeset

import (
	"math"
	"reflect"
)

// Document is a record keyed by field name.
type Document = map[string]any

// DirtyValues returns every top-level key whose value differs between
// initial and current, mapped to the whole current value. The result is
// empty, never nil, when nothing changed.
//
// Presence is treated asymmetrically. A key only current holds is always
// reported, even when its value is nil, so an explicit null reaches the
// server. A key dropped from current is reported as nil unless initial
// already held nil there, since sending null again changes nothing.
func DirtyValues(initial, current Document) Document {
	out := Document{}
	for key, value := range current {
		old, had := initial[key]
		if !had || !Equal(old, value) {
			out[key] = value
		}
	}
	for key, value := range initial {
		if _, ok := current[key]; !ok && value != nil {
			out[key] = nil
		}
	}
	return out
}

// Equal reports structural equality. Maps compare by key set, slices
// element-wise in order, and numbers by value regardless of Go type.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		return ok && (x == y || (math.IsNaN(x) && math.IsNaN(y)))
	}

	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		if sameMap(x, y) {
			return true
		}
		for key, value := range x {
			other, ok := y[key]
			if !ok || !Equal(value, other) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice {
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !Equal(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Apply returns a new document with changes merged over base at the top
// level. Neither argument is modified.
func Apply(base, changes Document) Document {
	out := make(Document, len(base)+len(changes))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range changes {
		out[key] = value
	}
	return out
}

func sameMap(a, b map[string]any) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Clone deep copies a document. Nested maps and slices are copied; other
// values are shared.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return cloneValue(doc).(map[string]any)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, v := range typed {
			out[key] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
