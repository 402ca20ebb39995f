package models

import (
	"crypto/sha256"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags which variant of a JSONValue is populated.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// JSONObject is an object whose members keep the order they appeared in the source.
type JSONObject = orderedmap.OrderedMap[string, JSONValue]

// JSONValue represents any JSON value as a tagged union.
// Only the payload matching Kind is meaningful.
type JSONValue struct {
	Kind    Kind
	Bool    bool
	Text    string // string contents, or the literal text of a number
	Items   []JSONValue
	Members *JSONObject
}

// NullValue returns the JSON null.
func NullValue() JSONValue { return JSONValue{Kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) JSONValue { return JSONValue{Kind: Bool, Bool: b} }

// NumberValue wraps a number literal exactly as it appeared in the source.
func NumberValue(literal string) JSONValue { return JSONValue{Kind: Number, Text: literal} }

// StringValue wraps an unescaped string.
func StringValue(s string) JSONValue { return JSONValue{Kind: String, Text: s} }

// ArrayValue wraps a sequence of values.
func ArrayValue(items ...JSONValue) JSONValue {
	if items == nil {
		items = []JSONValue{}
	}
	return JSONValue{Kind: Array, Items: items}
}

// NewObject returns an empty object value ready for Set.
func NewObject() JSONValue {
	return JSONValue{Kind: Object, Members: orderedmap.New[string, JSONValue]()}
}

// Set adds a member to an object. A repeated key keeps its first position
// and takes the new value.
func (v JSONValue) Set(key string, value JSONValue) {
	v.Members.Set(key, value)
}

// Len returns the number of members or items.
func (v JSONValue) Len() int {
	switch v.Kind {
	case Object:
		return v.Members.Len()
	case Array:
		return len(v.Items)
	default:
		return 0
	}
}

// Keys returns object keys in source order.
func (v JSONValue) Keys() []string {
	if v.Kind != Object {
		return nil
	}
	keys := make([]string, 0, v.Members.Len())
	for pair := v.Members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get looks up an object member.
func (v JSONValue) Get(key string) (JSONValue, bool) {
	if v.Kind != Object {
		return JSONValue{}, false
	}
	return v.Members.Get(key)
}

// AppendJSON appends the compact serialization of v to buf.
func (v JSONValue) AppendJSON(buf []byte) []byte {
	switch v.Kind {
	case Null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, v.Bool)
	case Number:
		return append(buf, v.Text...)
	case String:
		return strconv.AppendQuote(buf, v.Text)
	case Array:
		buf = append(buf, '[')
		for i, item := range v.Items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = item.AppendJSON(buf)
		}
		return append(buf, ']')
	case Object:
		buf = append(buf, '{')
		first := true
		for pair := v.Members.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = strconv.AppendQuote(buf, pair.Key)
			buf = append(buf, ':')
			buf = pair.Value.AppendJSON(buf)
		}
		return append(buf, '}')
	}
	return buf
}

// Fingerprint is a digest of the exact serialized value. Two values share a
// fingerprint only when they have the same members, order and data.
// Numbers compare by literal text, so 1 and 1.0 differ.
func (v JSONValue) Fingerprint() [sha256.Size]byte {
	return sha256.Sum256(v.AppendJSON(nil))
}

// ToAny converts the value into the plain Go representation used by
// encoding/json (map[string]any, []any, float64, string, bool, nil).
func (v JSONValue) ToAny() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Number:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return v.Text
		}
		return f
	case String:
		return v.Text
	case Array:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.ToAny()
		}
		return out
	case Object:
		out := make(map[string]any, v.Members.Len())
		for pair := v.Members.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = pair.Value.ToAny()
		}
		return out
	default:
		return nil
	}
}

// IntermediateRepresentation holds a parsed document for the analyzer.
type IntermediateRepresentation struct {
	Root JSONValue
}
