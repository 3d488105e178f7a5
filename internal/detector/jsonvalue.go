package detector

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxJSONDepth bounds nesting so hostile documents cannot blow the stack.
const maxJSONDepth = 128

// valueKind discriminates the ordered JSON value union.
type valueKind int

const (
	kindObject valueKind = iota
	kindArray
	kindString
	kindLiteral // number, bool or null, kept as its source literal
)

// member is one object entry. A slice of members preserves key order, which
// encoding/json maps would lose.
type member struct {
	key string
	val jsonValue
}

// jsonValue is a decoded JSON value that survives an order- and
// literal-preserving round trip.
type jsonValue struct {
	kind    valueKind
	members []member
	items   []jsonValue
	str     string
	raw     string
}

// decodeValue parses a full JSON document. Any syntax problem, trailing data
// or excessive nesting comes back wrapped in ErrMalformedJSON.
func decodeValue(input string) (jsonValue, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	v, err := parseValue(dec, 0)
	if err != nil {
		return jsonValue{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return jsonValue{}, fmt.Errorf("%w: trailing data after document", ErrMalformedJSON)
	}
	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (jsonValue, error) {
	if depth > maxJSONDepth {
		return jsonValue{}, fmt.Errorf("nesting exceeds %d levels", maxJSONDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return jsonValue{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := jsonValue{kind: kindObject}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return jsonValue{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return jsonValue{}, fmt.Errorf("object key is not a string: %v", kt)
				}
				mv, err := parseValue(dec, depth+1)
				if err != nil {
					return jsonValue{}, err
				}
				v.members = append(v.members, member{key: key, val: mv})
			}
			if _, err := dec.Token(); err != nil {
				return jsonValue{}, err
			}
			return v, nil
		case '[':
			v := jsonValue{kind: kindArray}
			for dec.More() {
				iv, err := parseValue(dec, depth+1)
				if err != nil {
					return jsonValue{}, err
				}
				v.items = append(v.items, iv)
			}
			if _, err := dec.Token(); err != nil {
				return jsonValue{}, err
			}
			return v, nil
		default:
			return jsonValue{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return jsonValue{kind: kindString, str: t}, nil
	case json.Number:
		return jsonValue{kind: kindLiteral, raw: t.String()}, nil
	case bool:
		raw := "false"
		if t {
			raw = "true"
		}
		return jsonValue{kind: kindLiteral, raw: raw}, nil
	case nil:
		return jsonValue{kind: kindLiteral, raw: "null"}, nil
	default:
		return jsonValue{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// encodeValue serialises a value compactly, preserving member order and the
// original number literals.
func encodeValue(v jsonValue) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v jsonValue) {
	switch v.kind {
	case kindObject:
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeString(m.key))
			b.WriteByte(':')
			writeValue(b, m.val)
		}
		b.WriteByte('}')
	case kindArray:
		b.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, it)
		}
		b.WriteByte(']')
	case kindString:
		b.WriteString(encodeString(v.str))
	default:
		b.WriteString(v.raw)
	}
}

// encodeString renders a JSON string literal without HTML escaping, so
// inserted tags like <PythonCode> stay readable.
func encodeString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encode cannot fail for a plain string.
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
