package sequence

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
)

// MarshalJSON encodes lists as arrays and other maps as ordered objects.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if m.IsList() {
		buf.WriteByte('[')
		for i, p := range m.live() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(&buf, p.Value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	buf.WriteByte('{')
	for i, p := range m.live() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, cast.ToString(p.Key)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	buf.Write(b)
	return nil
}

// UnmarshalJSON decodes an object or an array, keeping the key order.
// Nested objects become *Map, nested arrays []any.
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*m = *toMap(v)
	return nil
}

// DecodeJSON decodes a JSON document. Objects decode to *Map in document
// order, arrays to []any, integral numbers to int64 and others to float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode json: unexpected trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}

// DecodeYAML decodes a YAML document. Mappings decode to *Map in document
// order, sequences to []any and integers to int64.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return fromYAML(v), nil
}

func fromYAML(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := NewMap()
		for _, item := range t {
			m.Set(item.Key, fromYAML(item.Value))
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromYAML(e)
		}
		return out
	case int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64(t)
	default:
		return t
	}
}

// toMap wraps a decoded document in a Map: lists are keyed by position and
// scalars become a single element.
func toMap(v any) *Map {
	switch t := v.(type) {
	case *Map:
		return t
	case []any:
		return ListOf(t...)
	default:
		return ListOf(t)
	}
}

// Normalize converts decoded documents into *Map trees: arrays become
// positional Maps, objects keep their order.
func Normalize(v any) any {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for _, p := range t.live() {
			out.Set(p.Key, Normalize(p.Value))
		}
		return out
	case []any:
		out := NewMap()
		for _, e := range t {
			out.Append(Normalize(e))
		}
		return out
	default:
		return v
	}
}
