package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind is the runtime type of a JSON value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON document node. Objects remember the order their
// keys appeared in the source so re-rendering keeps the author's layout.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Items  []*Value
	Keys   []string
	Fields map[string]*Value
}

// IsPrimitive reports whether v has no children.
func (v *Value) IsPrimitive() bool {
	return v.Kind != KindArray && v.Kind != KindObject
}

// Field returns the member named key and whether it exists.
func (v *Value) Field(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	f, ok := v.Fields[key]
	return f, ok
}

// Item returns the array element at i and whether it exists.
func (v *Value) Item(i int) (*Value, bool) {
	if v == nil || v.Kind != KindArray || i < 0 || i >= len(v.Items) {
		return nil, false
	}
	return v.Items[i], true
}

// primitiveEqual compares two primitives of the same kind. Numbers compare
// by value, so 1 and 1.0 are equal.
func primitiveEqual(a, b *Value) bool {
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.String == b.String
	case KindNumber:
		if a.Number == b.Number {
			return true
		}
		fa, errA := strconv.ParseFloat(string(a.Number), 64)
		fb, errB := strconv.ParseFloat(string(b.Number), 64)
		if errA != nil || errB != nil {
			return false
		}
		return fa == fb
	default:
		return false
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseJSON decodes a single JSON document. Trailing non-whitespace data is
// an error. For duplicate object keys the last value wins and the key keeps
// its first position.
func ParseJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}

	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t}, nil
	case string:
		return &Value{Kind: KindString, String: t}, nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		}
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindArray, Items: []*Value{}}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindObject, Keys: []string{}, Fields: map[string]*Value{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		field, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if _, dup := v.Fields[key]; !dup {
			v.Keys = append(v.Keys, key)
		}
		v.Fields[key] = field
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

// pretty renders v with two-space indentation. Lines after the first are
// prefixed with depth levels of indentation so the result can be embedded
// at that depth.
func pretty(v *Value, depth int, eol string) string {
	var b strings.Builder
	writePretty(&b, v, depth, eol)
	return b.String()
}

func writePretty(b *strings.Builder, v *Value, depth int, eol string) {
	switch v.Kind {
	case KindArray:
		if len(v.Items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[" + eol)
		for i, item := range v.Items {
			b.WriteString(indent(depth + 1))
			writePretty(b, item, depth+1, eol)
			if i < len(v.Items)-1 {
				b.WriteString(",")
			}
			b.WriteString(eol)
		}
		b.WriteString(indent(depth) + "]")
	case KindObject:
		if len(v.Keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{" + eol)
		for i, key := range v.Keys {
			b.WriteString(indent(depth+1) + quote(key) + ": ")
			writePretty(b, v.Fields[key], depth+1, eol)
			if i < len(v.Keys)-1 {
				b.WriteString(",")
			}
			b.WriteString(eol)
		}
		b.WriteString(indent(depth) + "}")
	default:
		b.WriteString(primitiveText(v))
	}
}

func primitiveText(v *Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return string(v.Number)
	case KindString:
		return quote(v.String)
	default:
		return ""
	}
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
