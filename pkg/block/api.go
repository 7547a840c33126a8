package block

import (
	"fmt"

	"github.com/tanglekit/blockcodec/pkg/wire"
)

var (
	defaultDecoder = NewDecoder()
	defaultEncoder = NewEncoder(nil)
)

// Decode resolves tree as a member of family with the default decoder.
func Decode(tree wire.Value, family Family) (Variant, error) {
	return defaultDecoder.Decode(tree, family)
}

// Encode renders v with the default encoder.
func Encode(v Variant) wire.Value {
	return defaultEncoder.Encode(v)
}

// DecodeJSON parses data and decodes it as a member of family.
func (d *Decoder) DecodeJSON(data []byte, family Family) (Variant, error) {
	tree, err := wire.Parse(data)
	if err != nil {
		return nil, err
	}
	return d.Decode(tree, family)
}

// DecodeJSON parses data and decodes it as a member of family with the default decoder.
func DecodeJSON(data []byte, family Family) (Variant, error) {
	return defaultDecoder.DecodeJSON(data, family)
}

// EncodeJSON renders v as compact canonical JSON.
func EncodeJSON(v Variant) ([]byte, error) {
	return wire.Marshal(Encode(v))
}

func decodeAs[T Variant](tree wire.Value, family Family) (T, error) {
	var zero T
	v, err := Decode(tree, family)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s variant %T does not implement %T", family, v, zero)
	}
	return typed, nil
}

func DecodeOutput(tree wire.Value) (Output, error) {
	return decodeAs[Output](tree, FamilyOutput)
}

func DecodeSignature(tree wire.Value) (Signature, error) {
	return decodeAs[Signature](tree, FamilySignature)
}

func DecodePublicKey(tree wire.Value) (PublicKey, error) {
	return decodeAs[PublicKey](tree, FamilyPublicKey)
}

func DecodeUnlockCondition(tree wire.Value) (UnlockCondition, error) {
	return decodeAs[UnlockCondition](tree, FamilyUnlockCondition)
}

func DecodeFeature(tree wire.Value) (Feature, error) {
	return decodeAs[Feature](tree, FamilyFeature)
}

func DecodeAddress(tree wire.Value) (Address, error) {
	return decodeAs[Address](tree, FamilyAddress)
}

func DecodeUnlock(tree wire.Value) (Unlock, error) {
	return decodeAs[Unlock](tree, FamilyUnlock)
}

func DecodeContextInput(tree wire.Value) (ContextInput, error) {
	return decodeAs[ContextInput](tree, FamilyContextInput)
}

// DecodeOutputData decodes an output data record with d.
func (d *Decoder) DecodeOutputData(tree wire.Value) (OutputData, error) {
	val, err := d.DecodeRecord(tree, OutputDataRecord)
	if err != nil {
		return OutputData{}, err
	}
	return val.(OutputData), nil
}

// DecodeOutputData decodes an output data record with the default decoder.
func DecodeOutputData(tree wire.Value) (OutputData, error) {
	return defaultDecoder.DecodeOutputData(tree)
}

// EncodeOutputData renders an output data record.
func EncodeOutputData(data OutputData) wire.Value {
	return defaultEncoder.EncodeRecord(OutputDataRecord, data)
}
