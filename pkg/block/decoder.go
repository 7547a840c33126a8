package block

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/tanglekit/blockcodec/pkg/codec"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

// DefaultMaxDepth bounds the nesting of variants and records in a wire tree.
const DefaultMaxDepth = 64

// UnknownFieldPolicy decides what happens to members a shape does not declare.
type UnknownFieldPolicy uint8

const (
	// IgnoreUnknownFields drops undeclared members.
	IgnoreUnknownFields UnknownFieldPolicy = iota
	// RejectUnknownFields fails decoding with ErrUnknownField.
	RejectUnknownFields
)

func (p UnknownFieldPolicy) String() string {
	if p == RejectUnknownFields {
		return "reject"
	}
	return "ignore"
}

// ParseUnknownFieldPolicy parses "ignore" or "reject".
func ParseUnknownFieldPolicy(val string) (UnknownFieldPolicy, error) {
	switch val {
	case "ignore", "":
		return IgnoreUnknownFields, nil
	case "reject":
		return RejectUnknownFields, nil
	}
	return 0, fmt.Errorf("unknown field policy %q must be ignore or reject", val)
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRegistry replaces the default registry.
func WithRegistry(registry *Registry) DecoderOption {
	return func(d *Decoder) {
		d.registry = registry
	}
}

// WithMaxDepth sets the nesting bound. Values below 1 keep the default.
func WithMaxDepth(depth int) DecoderOption {
	return func(d *Decoder) {
		if depth > 0 {
			d.maxDepth = depth
		}
	}
}

// WithUnknownFields sets the unknown field policy.
func WithUnknownFields(policy UnknownFieldPolicy) DecoderOption {
	return func(d *Decoder) {
		d.unknownFields = policy
	}
}

// Decoder turns wire trees into variants. A Decoder holds no mutable state and may be
// shared between goroutines.
type Decoder struct {
	registry      *Registry
	maxDepth      int
	unknownFields UnknownFieldPolicy
}

// NewDecoder creates a decoder over the default registry.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		registry:      defaultRegistry,
		maxDepth:      DefaultMaxDepth,
		unknownFields: IgnoreUnknownFields,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// scope is the innermost variant or record being decoded, used for error context.
type scope struct {
	shape  string
	family Family
	tag    uint64
	hasTag bool
}

func (s scope) errorf(kind ErrorKind, path string, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:   kind,
		Path:   path,
		Shape:  s.shape,
		Family: s.family,
		Tag:    s.tag,
		HasTag: s.hasTag,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Decode resolves tree as a member of family.
func (d *Decoder) Decode(tree wire.Value, family Family) (Variant, error) {
	return d.decodeVariant(tree, family, "$", 1)
}

// DecodeRecord decodes tree against a record shape.
func (d *Decoder) DecodeRecord(tree wire.Value, record *RecordShape) (any, error) {
	return d.decodeRecord(tree, record, scope{}, "$", 1)
}

func (d *Decoder) decodeVariant(tree wire.Value, family Family, path string, depth int) (Variant, error) {
	outer := scope{family: family}
	if depth > d.maxDepth {
		return nil, outer.errorf(KindNestingTooDeep, path, "exceeds maximum depth %d", d.maxDepth)
	}
	obj, ok := tree.(*wire.Object)
	if !ok || obj == nil {
		return nil, d.mismatch(outer, path, family.String()+" object", tree)
	}
	tag, err := readDiscriminator(obj)
	if err != nil {
		return nil, outer.errorf(KindMalformedDiscriminator, joinPath(path, TypeFieldName), "%s", err)
	}
	outer.tag = tag
	outer.hasTag = true
	if tag > 255 {
		return nil, outer.errorf(KindUnknownDiscriminator, path, "no %s variant with type %d", family, tag)
	}
	shape, ok := d.registry.lookup(family, uint8(tag))
	if !ok {
		return nil, outer.errorf(KindUnknownDiscriminator, path, "no %s variant with type %d", family, tag)
	}
	inner := scope{shape: shape.Name, family: family, tag: tag, hasTag: true}
	values, err := d.decodeFields(obj, shape.Fields, inner, path, depth)
	if err != nil {
		return nil, err
	}
	variant, err := shape.Build(values)
	if err != nil {
		return nil, d.invalid(inner, path, err)
	}
	if variant.Family() != family || uint64(variant.Type()) != tag {
		return nil, inner.errorf(KindInvalidValue, path, "shape built %s/%d", variant.Family(), variant.Type())
	}
	return variant, nil
}

func (d *Decoder) decodeRecord(tree wire.Value, record *RecordShape, parent scope, path string, depth int) (any, error) {
	if depth > d.maxDepth {
		return nil, parent.errorf(KindNestingTooDeep, path, "exceeds maximum depth %d", d.maxDepth)
	}
	inner := scope{shape: record.Name}
	obj, ok := tree.(*wire.Object)
	if !ok || obj == nil {
		return nil, d.mismatch(parent, path, record.Name+" object", tree)
	}
	values, err := d.decodeFields(obj, record.Fields, inner, path, depth)
	if err != nil {
		return nil, err
	}
	result, err := record.Build(values)
	if err != nil {
		return nil, d.invalid(inner, path, err)
	}
	return result, nil
}

func readDiscriminator(obj *wire.Object) (uint64, error) {
	val, ok := obj.Get(TypeFieldName)
	if !ok {
		return 0, errors.New("type field is absent")
	}
	num, ok := val.(wire.Number)
	if !ok {
		return 0, fmt.Errorf("type field must be an integer but received %s", val.Kind())
	}
	tag, err := strconv.ParseUint(string(num), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("type field must be a non-negative integer but received %s", string(num))
	}
	return tag, nil
}

func (d *Decoder) decodeFields(obj *wire.Object, fields []Field, s scope, path string, depth int) (Values, error) {
	if d.unknownFields == RejectUnknownFields {
		declared := make(map[string]bool, len(fields)+1)
		declared[TypeFieldName] = s.hasTag
		for _, field := range fields {
			declared[field.Name] = true
		}
		for _, key := range obj.Keys() {
			if !declared[key] {
				err := s.errorf(KindUnknownField, joinPath(path, key), "%q is not declared", key)
				err.Field = key
				return nil, err
			}
		}
	}
	values := make(Values, len(fields))
	for _, field := range fields {
		fieldPath := joinPath(path, field.Name)
		raw, ok := obj.Get(field.Name)
		if ok && raw.Kind() == wire.KindNull && field.Optional {
			ok = false
		}
		if !ok {
			if field.Optional {
				continue
			}
			err := s.errorf(KindMissingField, fieldPath, "%q is required", field.Name)
			err.Field = field.Name
			return nil, err
		}
		val, err := d.decodeField(raw, field, s, fieldPath, depth)
		if err != nil {
			return nil, err
		}
		values[field.Name] = val
	}
	return values, nil
}

func (d *Decoder) decodeField(raw wire.Value, field Field, s scope, path string, depth int) (any, error) {
	switch field.Kind {
	case FieldUint:
		num, ok := raw.(wire.Number)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		val, err := strconv.ParseUint(string(num), 10, field.Bits)
		if err != nil {
			return nil, d.fieldMismatch(s, path, field, "number "+string(num))
		}
		return val, nil
	case FieldUintString:
		str, ok := raw.(wire.String)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		val, err := codec.ParseUint64(string(str))
		if err != nil {
			return nil, d.fieldMismatch(s, path, field, fmt.Sprintf("string %q", string(str)))
		}
		return val, nil
	case FieldU256:
		str, ok := raw.(wire.String)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		val, err := parseU256(string(str))
		if err != nil {
			return nil, d.hexError(s, path, field, &codec.HexFormatError{Reason: err.Error()})
		}
		return val, nil
	case FieldBool:
		b, ok := raw.(wire.Bool)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		return bool(b), nil
	case FieldString:
		str, ok := raw.(wire.String)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		return string(str), nil
	case FieldHex:
		str, ok := raw.(wire.String)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		var (
			val []byte
			err error
		)
		if field.Length > 0 {
			val, err = codec.DecodeFixedHex(string(str), field.Length)
		} else {
			val, err = codec.DecodeHex(string(str))
		}
		if err != nil {
			var hexErr *codec.HexFormatError
			if !errors.As(err, &hexErr) {
				hexErr = &codec.HexFormatError{Reason: err.Error()}
			}
			return nil, d.hexError(s, path, field, hexErr)
		}
		return val, nil
	case FieldVariant:
		return d.decodeVariant(raw, field.Family, path, depth+1)
	case FieldList:
		arr, ok := raw.(wire.Array)
		if !ok {
			return nil, d.fieldMismatch(s, path, field, raw.Kind().String())
		}
		list := make([]Variant, len(arr))
		for i, item := range arr {
			val, err := d.decodeVariant(item, field.Family, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			list[i] = val
		}
		return list, nil
	case FieldRecord:
		return d.decodeRecord(raw, field.Record, s, path, depth+1)
	}
	return nil, s.errorf(KindInvalidValue, path, "field %q has unsupported kind %s", field.Name, field.Kind)
}

func (d *Decoder) mismatch(s scope, path string, expected string, actual wire.Value) *DecodeError {
	actualKind := "nothing"
	if actual != nil {
		actualKind = actual.Kind().String()
	}
	err := s.errorf(KindTypeMismatch, path, "expected %s but received %s", expected, actualKind)
	err.Expected = expected
	err.Actual = actualKind
	return err
}

func (d *Decoder) fieldMismatch(s scope, path string, field Field, actual string) *DecodeError {
	err := s.errorf(KindTypeMismatch, path, "expected %s but received %s", field.expected(), actual)
	err.Field = field.Name
	err.Expected = field.expected()
	err.Actual = actual
	return err
}

func (d *Decoder) hexError(s scope, path string, field Field, hexErr *codec.HexFormatError) *DecodeError {
	attributed := hexErr.WithField(path)
	err := s.errorf(KindHexFormat, path, "%s", attributed.Reason)
	err.Field = field.Name
	err.Err = attributed
	return err
}

func (d *Decoder) invalid(s scope, path string, cause error) *DecodeError {
	err := s.errorf(KindInvalidValue, path, "%s", cause)
	err.Err = cause
	return err
}

// parseU256 accepts only the minimal lowercase form produced by uint256.Int.Hex.
func parseU256(text string) (uint256.Int, error) {
	if strings.ToLower(text) != text {
		return uint256.Int{}, errors.New("uppercase hex digits are not canonical")
	}
	val, err := uint256.FromHex(text)
	if err != nil {
		return uint256.Int{}, err
	}
	return *val, nil
}

func joinPath(path, name string) string {
	return path + "." + name
}
