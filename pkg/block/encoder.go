package block

import (
	"fmt"
	"reflect"

	"github.com/holiman/uint256"

	"github.com/tanglekit/blockcodec/pkg/codec"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

// Encoder turns variants into canonical wire trees: the discriminator first, then the
// declared fields in declaration order. Empty optional fields are omitted.
type Encoder struct {
	registry *Registry
}

// NewEncoder creates an encoder over registry, or the default registry if nil.
func NewEncoder(registry *Registry) *Encoder {
	if registry == nil {
		registry = defaultRegistry
	}
	return &Encoder{registry: registry}
}

// Encode renders v. It panics if v's shape is not registered, which cannot happen for
// variants constructed by this package against the default registry. Encoding a nil
// variant, or a zero value whose required nested variant is nil, also panics.
func (e *Encoder) Encode(v Variant) wire.Value {
	if isNilVariant(v) {
		panic(fmt.Sprintf("block: cannot encode nil %T", v))
	}
	shape, ok := e.registry.lookup(v.Family(), v.Type())
	if !ok {
		panic(fmt.Sprintf("block: %T is not registered as %s/%d", v, v.Family(), v.Type()))
	}
	obj := wire.NewObject(wire.Member{Key: TypeFieldName, Value: encodeUint(uint64(v.Type()))})
	e.encodeFields(obj, shape.Name, shape.Fields, shape.Split(v))
	return obj
}

// EncodeRecord renders a record value against its shape.
func (e *Encoder) EncodeRecord(record *RecordShape, val any) wire.Value {
	obj := wire.NewObject()
	e.encodeFields(obj, record.Name, record.Fields, record.Split(val))
	return obj
}

func (e *Encoder) encodeFields(obj *wire.Object, owner string, fields []Field, values Values) {
	for _, field := range fields {
		val, ok := values[field.Name]
		if field.Optional && (!ok || isEmpty(val)) {
			continue
		}
		if !ok {
			panic(fmt.Sprintf("block: %s omitted required field %s", owner, field.Name))
		}
		obj.Set(field.Name, e.encodeField(field, val))
	}
}

func (e *Encoder) encodeField(field Field, val any) wire.Value {
	switch field.Kind {
	case FieldUint:
		return encodeUint(val.(uint64))
	case FieldUintString:
		return wire.String(codec.FormatUint64(val.(uint64)))
	case FieldU256:
		u := val.(uint256.Int)
		return wire.String(u.Hex())
	case FieldBool:
		return wire.Bool(val.(bool))
	case FieldString:
		return wire.String(val.(string))
	case FieldHex:
		return wire.String(codec.EncodeHex(val.([]byte)))
	case FieldVariant:
		return e.Encode(val.(Variant))
	case FieldList:
		list := val.([]Variant)
		arr := make(wire.Array, len(list))
		for i, item := range list {
			arr[i] = e.Encode(item)
		}
		return arr
	case FieldRecord:
		return e.EncodeRecord(field.Record, val)
	}
	panic(fmt.Sprintf("block: field %s has unsupported kind %s", field.Name, field.Kind))
}

func isEmpty(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case []byte:
		return len(v) == 0
	case []Variant:
		return len(v) == 0
	case Variant:
		return isNilVariant(v)
	}
	return false
}

// isNilVariant reports whether v is nil or a nil pointer held in the interface.
func isNilVariant(v Variant) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func encodeUint(val uint64) wire.Number {
	return wire.Number(codec.FormatUint64(val))
}
