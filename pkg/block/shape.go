package block

import (
	"fmt"

	"github.com/holiman/uint256"
)

// FieldKind declares how a field is represented on the wire.
type FieldKind uint8

const (
	// FieldUint is a JSON number holding an unsigned integer of Field.Bits width.
	FieldUint FieldKind = iota + 1
	// FieldUintString is a 64-bit unsigned integer carried as a decimal string.
	FieldUintString
	// FieldU256 is a 256-bit unsigned integer carried as minimal 0x-prefixed hex.
	FieldU256
	FieldBool
	FieldString
	// FieldHex is a byte buffer carried as canonical hex. Field.Length fixes its size.
	FieldHex
	// FieldVariant is a single member of Field.Family.
	FieldVariant
	// FieldList is an ordered list of members of Field.Family.
	FieldList
	// FieldRecord is a nested record without discriminator described by Field.Record.
	FieldRecord
)

func (k FieldKind) String() string {
	switch k {
	case FieldUint:
		return "uint"
	case FieldUintString:
		return "uint64 string"
	case FieldU256:
		return "uint256 hex"
	case FieldBool:
		return "bool"
	case FieldString:
		return "string"
	case FieldHex:
		return "hex"
	case FieldVariant:
		return "variant"
	case FieldList:
		return "list"
	case FieldRecord:
		return "record"
	}
	return fmt.Sprintf("FieldKind(%d)", uint8(k))
}

// Field declares a single named field of a shape.
type Field struct {
	Name     string
	Kind     FieldKind
	Bits     int
	Length   int
	Family   Family
	Record   *RecordShape
	Optional bool
}

// expected describes the accepted value for error messages.
func (f Field) expected() string {
	switch f.Kind {
	case FieldUint:
		return fmt.Sprintf("uint%d", f.Bits)
	case FieldHex:
		if f.Length > 0 {
			return fmt.Sprintf("hex string of %d bytes", f.Length)
		}
		return "hex string"
	case FieldVariant:
		return f.Family.String() + " object"
	case FieldList:
		return f.Family.String() + " array"
	case FieldRecord:
		return f.Record.Name + " object"
	}
	return f.Kind.String()
}

func (f Field) optional() Field {
	f.Optional = true
	return f
}

func uintField(name string, bits int) Field {
	return Field{Name: name, Kind: FieldUint, Bits: bits}
}

func amountField(name string) Field {
	return Field{Name: name, Kind: FieldUintString}
}

func u256Field(name string) Field {
	return Field{Name: name, Kind: FieldU256}
}

func boolField(name string) Field {
	return Field{Name: name, Kind: FieldBool}
}

func hexField(name string, length int) Field {
	return Field{Name: name, Kind: FieldHex, Length: length}
}

func bytesField(name string) Field {
	return Field{Name: name, Kind: FieldHex}
}

func variantField(name string, family Family) Field {
	return Field{Name: name, Kind: FieldVariant, Family: family}
}

func listField(name string, family Family) Field {
	return Field{Name: name, Kind: FieldList, Family: family}
}

func recordField(name string, record *RecordShape) Field {
	return Field{Name: name, Kind: FieldRecord, Record: record}
}

// Shape declares a variant: its family, discriminator and fields in canonical order.
// Build constructs the variant from decoded values, Split is its inverse.
type Shape struct {
	Family Family
	Tag    uint8
	Name   string
	Fields []Field
	Build  func(Values) (Variant, error)
	Split  func(Variant) Values
}

// RecordShape declares a composite record which carries no discriminator.
type RecordShape struct {
	Name   string
	Fields []Field
	Build  func(Values) (any, error)
	Split  func(any) Values
}

// Values holds decoded field values keyed by field name.
//
// The Go type of each value follows its FieldKind: uint64 for FieldUint and
// FieldUintString, uint256.Int for FieldU256, bool, string, []byte for FieldHex, Variant,
// []Variant for FieldList and the record's own type for FieldRecord. Absent optional
// fields have no entry.
type Values map[string]any

// Has returns true if name holds a value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Values) Uint64(name string) uint64 {
	val, _ := v[name].(uint64)
	return val
}

func (v Values) Uint32(name string) uint32 {
	return uint32(v.Uint64(name))
}

func (v Values) Uint16(name string) uint16 {
	return uint16(v.Uint64(name))
}

func (v Values) U256(name string) uint256.Int {
	val, _ := v[name].(uint256.Int)
	return val
}

func (v Values) Bool(name string) bool {
	val, _ := v[name].(bool)
	return val
}

func (v Values) Text(name string) string {
	val, _ := v[name].(string)
	return val
}

func (v Values) Bytes(name string) []byte {
	val, _ := v[name].([]byte)
	return val
}

func (v Values) Variant(name string) Variant {
	val, _ := v[name].(Variant)
	return val
}

func (v Values) List(name string) []Variant {
	val, _ := v[name].([]Variant)
	return val
}

func (v Values) Record(name string) any {
	return v[name]
}

// variantAs asserts the concrete family interface of a nested value.
func variantAs[T Variant](vals Values, name string) (T, error) {
	val, ok := vals.Variant(name).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("field %s holds %T", name, vals.Variant(name))
	}
	return val, nil
}

// listAs asserts the concrete family interface of every element of a list.
func listAs[T Variant](vals Values, name string) ([]T, error) {
	list := vals.List(name)
	if len(list) == 0 {
		return nil, nil
	}
	result := make([]T, len(list))
	for i, item := range list {
		typed, ok := item.(T)
		if !ok {
			return nil, fmt.Errorf("field %s[%d] holds %T", name, i, item)
		}
		result[i] = typed
	}
	return result, nil
}

// variants widens a typed list for Split.
func variants[T Variant](items []T) []Variant {
	if len(items) == 0 {
		return nil
	}
	result := make([]Variant, len(items))
	for i, item := range items {
		result[i] = item
	}
	return result
}
