package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// MarshalJSON implements json.Marshaler. Mapping keys keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	var sb strings.Builder

	writeJSON(&sb, v)

	return []byte(sb.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Object keys keep their order.
func (v *Value) UnmarshalJSON(data []byte) error {
	r, err := FromJSON(data)
	if err != nil {
		return err
	}

	*v = r

	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler. Mappings are emitted as
// ordered yaml.MapSlice.
func (v Value) MarshalYAML() (any, error) {
	return v.Native(), nil
}

// FromJSON decodes a JSON document into a Value, keeping object key order
// and distinguishing integers from floats.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, ErrDecode.Wrap(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrDecode.Wrap(errors.New("trailing data after JSON value"))
	}

	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			seq := []Value{}

			for dec.More() {
				e, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}

				seq = append(seq, e)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return List(seq...), nil
		case '{':
			m := NewMapping(0)

			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}

				key, _ := kt.(string)

				e, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}

				m.Set(key, e)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return MapOf(m), nil
		}

		return Value{}, errors.New("unexpected delimiter " + t.String())
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return Int(i), nil
			}
		}

		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}

		return Float(f), nil
	default:
		return FromNative(t)
	}
}

// FromYAML decodes a YAML document into a Value, keeping mapping key order.
func FromYAML(data []byte) (Value, error) {
	var x any

	if err := yaml.UnmarshalWithOptions(data, &x, yaml.UseOrderedMap()); err != nil {
		return Value{}, ErrDecode.Wrap(err)
	}

	return FromNative(x)
}

// writeJSON writes v as single-line JSON with ", " and ": " separators.
// Non-ASCII text is written as-is.
func writeJSON(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool, KindNumber:
		if f, ok := v.AsFloat(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			sb.WriteString("null")

			return
		}

		sb.WriteString(v.String())
	case KindText:
		writeJSONString(sb, v.s)
	case KindSequence:
		sb.WriteByte('[')

		for i, e := range v.seq {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeJSON(sb, e)
		}

		sb.WriteByte(']')
	case KindMapping:
		sb.WriteByte('{')

		i := 0
		for k, e := range v.m.All() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeJSONString(sb, k)
			sb.WriteString(": ")
			writeJSON(sb, e)

			i++
		}

		sb.WriteByte('}')
	}
}

const hexDigits = "0123456789abcdef"

// QuoteJSON returns s as a JSON string literal without HTML escaping.
func QuoteJSON(s string) string {
	var sb strings.Builder

	writeJSONString(&sb, s)

	return sb.String()
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case utf8.RuneError:
			sb.WriteString(`\ufffd`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[r>>4])
				sb.WriteByte(hexDigits[r&0xf])

				continue
			}

			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')
}
