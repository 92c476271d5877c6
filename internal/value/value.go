// Package value implements a tagged dynamic value used to represent
// arbitrary structured payloads (JSON-shaped data of unknown schema)
// without resorting to bare any/interface{} handling at every call site.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSeq
	KindMap
)

// Value is a closed tagged union over the shapes a structured payload can
// take: null, bool, number, string, an ordered sequence, or a string-keyed
// mapping. Field and index lookups are total: a missing key or an
// out-of-range index returns the zero Value and false, never a panic.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Value
	m    map[string]Value
}

// Null is the zero Value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Seq(items []Value) Value { return Value{kind: KindSeq, seq: items} }

func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean value and whether v is a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric value and whether v is a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsString returns the string value and whether v is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsSeq returns the sequence elements and whether v is a sequence.
func (v Value) AsSeq() ([]Value, bool) {
	if v.kind != KindSeq {
		return nil, false
	}
	return v.seq, true
}

// AsMap returns the map entries and whether v is a map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Get looks up a key on a map Value. Returns (Null, false) for any other
// kind or a missing key.
func (v Value) Get(key string) (Value, bool) {
	m, ok := v.AsMap()
	if !ok {
		return Null, false
	}
	child, ok := m[key]
	return child, ok
}

// Index returns the i-th element of a sequence Value. Returns (Null, false)
// for any other kind or an out-of-range index.
func (v Value) Index(i int) (Value, bool) {
	s, ok := v.AsSeq()
	if !ok || i < 0 || i >= len(s) {
		return Null, false
	}
	return s[i], true
}

// Len reports the number of elements in a sequence, or -1 if v is not a
// sequence.
func (v Value) Len() int {
	s, ok := v.AsSeq()
	if !ok {
		return -1
	}
	return len(s)
}

// IsEmpty reports whether v is null, an empty string, an empty sequence, or
// an empty map. Used by completeness/schema checks for "present but blank"
// field detection.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindSeq:
		return len(v.seq) == 0
	case KindMap:
		return len(v.m) == 0
	default:
		return false
	}
}

// FromJSON decodes arbitrary JSON bytes into a Value.
func FromJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Null, fmt.Errorf("value: decode json: %w", err)
	}
	return FromAny(raw), nil
}

// FromAny converts a Go value produced by encoding/json (map[string]any,
// []any, float64, string, bool, nil) into a Value. Unrecognized concrete
// types are rendered through fmt.Sprint as a string, so the conversion is
// total and never panics.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Seq(items)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = FromAny(e)
		}
		return Map(m)
	default:
		return String(fmt.Sprint(t))
	}
}

// Canonical renders v as a stable, deterministic string: object keys are
// sorted, numbers use a minimal decimal form, and the shape is JSON-like
// but not necessarily valid JSON (strings are not quote-escaped beyond
// wrapping). It is used to turn a payload into comparable text for semantic
// similarity scoring, so stability across repeated calls matters more than
// strict JSON compliance.
func Canonical(v Value) string {
	var sb strings.Builder
	writeCanonical(&sb, v)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.n, 'g', -1, 64))
	case KindString:
		sb.WriteByte('"')
		sb.WriteString(v.s)
		sb.WriteByte('"')
	case KindSeq:
		sb.WriteByte('[')
		for i, e := range v.seq {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, e)
		}
		sb.WriteByte(']')
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(k)
			sb.WriteString("\":")
			writeCanonical(sb, v.m[k])
		}
		sb.WriteByte('}')
	}
}

// GoType names the JSON-schema-style type of v ("object", "array", "string",
// "number", "boolean", "null"), used by schema compliance checks.
func GoType(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	default:
		return "null"
	}
}
