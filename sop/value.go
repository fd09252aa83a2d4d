package sop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of value shapes an action or condition
// may carry. The set is deliberately closed so the script encoder can be
// exhaustive and total.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// Value is a tagged union over JSON-like scalars, lists, and ordered maps.
// The zero Value is null.
type Value struct {
	Kind   Kind
	Bool   bool
	Num    float64
	Str    string
	List   []Value
	Fields Config
}

// Field is one key/value pair of an ordered configuration map.
type Field struct {
	Key   string
	Value Value
}

// Config is an ordered configuration map. Unlike a Go map it preserves
// insertion order through JSON round trips, which the script encoder
// depends on.
type Config []Field

// Constructors for the common shapes.

func Null() Value                { return Value{Kind: KindNull} }
func BoolOf(b bool) Value        { return Value{Kind: KindBool, Bool: b} }
func Num(n float64) Value        { return Value{Kind: KindNumber, Num: n} }
func Str(s string) Value         { return Value{Kind: KindString, Str: s} }
func ListOf(vs ...Value) Value   { return Value{Kind: KindList, List: vs} }
func MapOf(fs ...Field) Value    { return Value{Kind: KindMap, Fields: fs} }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// formatNumber renders a float the way JSON does: no trailing ".0" for
// integral values.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON emits the value as plain JSON, map keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		buf.WriteString(formatNumber(v.Num))
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, el := range v.List {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := el.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := f.Value.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.Kind)
	}
	return nil
}

// UnmarshalJSON decodes arbitrary JSON into the tagged union. Object key
// order is preserved by walking the token stream instead of decoding into
// a Go map.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolOf(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Num(n), nil
	case string:
		return Str(t), nil
	case json.Delim:
		switch t {
		case '[':
			list := []Value{}
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				list = append(list, el)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return Value{}, err
			}
			return Value{Kind: KindList, List: list}, nil
		case '{':
			fields := Config{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, Field{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing }
				return Value{}, err
			}
			return Value{Kind: KindMap, Fields: fields}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// MarshalJSON emits the config as a JSON object with keys in insertion order.
func (c Config) MarshalJSON() ([]byte, error) {
	return Value{Kind: KindMap, Fields: c}.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (c *Config) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = nil
		return nil
	}
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.Kind != KindMap {
		return fmt.Errorf("config must be a JSON object")
	}
	*c = v.Fields
	return nil
}
