package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDuplicateKey is returned when an object repeats a key.
	ErrDuplicateKey = errors.New("duplicate object key")
	// ErrTrailingData is returned when input continues after the first value.
	ErrTrailingData = errors.New("unexpected data after top-level value")
	// ErrUnsupportedValue is returned when a tree contains a node that cannot be rendered.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Parse converts JSON text into a tree.
func Parse(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	val, err := parseValue(decoder)
	if err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return val, nil
}

func parseValue(decoder *json.Decoder) (Value, error) {
	token, err := decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := token.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for decoder.More() {
				item, err := parseValue(decoder)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
			if _, err := decoder.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyToken)
				}
				if obj.Has(key) {
					return nil, fmt.Errorf("%w %q", ErrDuplicateKey, key)
				}
				item, err := parseValue(decoder)
				if err != nil {
					return nil, err
				}
				obj.Set(key, item)
			}
			if _, err := decoder.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", token)
}

// Marshal renders a tree as compact JSON.
func Marshal(val Value) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeValue(buf, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders a tree as indented JSON.
func MarshalIndent(val Value, prefix, indent string) ([]byte, error) {
	compact, err := Marshal(val)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, compact, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, val Value) error {
	switch v := val.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if !json.Valid([]byte(v)) {
			return fmt.Errorf("%w: invalid number literal %q", ErrUnsupportedValue, string(v))
		}
		buf.WriteString(string(v))
	case String:
		return writeString(buf, string(v))
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, val)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

func (a Array) MarshalJSON() ([]byte, error) {
	return Marshal(a)
}
