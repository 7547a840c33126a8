package block

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanglekit/blockcodec/pkg/wire"
)

func TestRoundTrip(t *testing.T) {
	for _, v := range sampleVariants(t) {
		name := fmt.Sprintf("%T", v)
		tree := Encode(v)
		decoded, err := Decode(tree, v.Family())
		assert.NoError(t, err, name)
		assert.Equal(t, v, decoded, name)
	}
}

func TestEncodeTypeFirst(t *testing.T) {
	for _, v := range sampleVariants(t) {
		obj, ok := Encode(v).(*wire.Object)
		assert.True(t, ok)
		keys := obj.Keys()
		assert.Equal(t, TypeFieldName, keys[0])
		tag, _ := obj.Get(TypeFieldName)
		assert.Equal(t, wire.Number(fmt.Sprint(v.Type())), tag)
	}
}

func TestEncodeFieldOrder(t *testing.T) {
	for _, v := range sampleVariants(t) {
		shape, err := DefaultRegistry().Lookup(v.Family(), v.Type())
		assert.NoError(t, err)
		keys := Encode(v).(*wire.Object).Keys()[1:]
		declared := []string{}
		for _, field := range shape.Fields {
			declared = append(declared, field.Name)
		}
		// Emitted keys are the declared fields in order with empty optionals skipped.
		i := 0
		for _, key := range keys {
			for i < len(declared) && declared[i] != key {
				i++
			}
			assert.Less(t, i, len(declared), "%s emitted %s out of order", shape.Name, key)
		}
	}
}

func TestSamplesCoverRegistry(t *testing.T) {
	covered := map[Family]map[uint8]bool{}
	for _, v := range sampleVariants(t) {
		if covered[v.Family()] == nil {
			covered[v.Family()] = map[uint8]bool{}
		}
		covered[v.Family()][v.Type()] = true
	}
	for _, family := range DefaultRegistry().Families() {
		for _, shape := range DefaultRegistry().Shapes(family) {
			assert.True(t, covered[family][shape.Tag], "no sample for %s", shape.Name)
		}
	}
}

func TestCanonicalIdempotence(t *testing.T) {
	for _, v := range sampleVariants(t) {
		first, err := EncodeJSON(v)
		assert.NoError(t, err)
		decoded, err := DecodeJSON(first, v.Family())
		assert.NoError(t, err)
		second, err := EncodeJSON(decoded)
		assert.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestCanonicalForm(t *testing.T) {
	pubKeyHash := "0x" + strings.Repeat("11", 32)
	cases := []struct {
		name      string
		family    Family
		input     string
		canonical string
	}{
		{
			name:      "members reordered",
			family:    FamilyUnlockCondition,
			input:     `{"address":{"pubKeyHash":"` + pubKeyHash + `","type":0},"type":0}`,
			canonical: `{"type":0,"address":{"type":0,"pubKeyHash":"` + pubKeyHash + `"}}`,
		},
		{
			name:      "empty optional list dropped",
			family:    FamilyOutput,
			input:     `{"type":0,"amount":"10","mana":"0","unlockConditions":[{"type":0,"address":{"type":0,"pubKeyHash":"` + pubKeyHash + `"}}],"features":[]}`,
			canonical: `{"type":0,"amount":"10","mana":"0","unlockConditions":[{"type":0,"address":{"type":0,"pubKeyHash":"` + pubKeyHash + `"}}]}`,
		},
		{
			name:      "null optional dropped",
			family:    FamilyAddress,
			input:     `{"type":48,"address":{"type":0,"pubKeyHash":"` + pubKeyHash + `"},"allowedCapabilities":null}`,
			canonical: `{"type":48,"address":{"type":0,"pubKeyHash":"` + pubKeyHash + `"}}`,
		},
		{
			name:      "undeclared member ignored",
			family:    FamilyContextInput,
			input:     `{"type":2,"index":5,"comment":"x"}`,
			canonical: `{"type":2,"index":5}`,
		},
	}
	for _, testCase := range cases {
		v, err := DecodeJSON([]byte(testCase.input), testCase.family)
		assert.NoError(t, err, testCase.name)
		encoded, err := EncodeJSON(v)
		assert.NoError(t, err, testCase.name)
		assert.Equal(t, testCase.canonical, string(encoded), testCase.name)
	}
}

func TestSignatureEndToEnd(t *testing.T) {
	publicKey := "0x" + strings.Repeat("3b6a27bcceb6a42d", 4)
	signature := "0x" + strings.Repeat("5c0a9f0e", 16)
	input := `{"type":0,"publicKey":{"type":0,"publicKey":"` + publicKey + `"},"signature":"` + signature + `"}`

	tree, err := wire.Parse([]byte(input))
	assert.NoError(t, err)
	sig, err := DecodeSignature(tree)
	assert.NoError(t, err)

	ed, ok := sig.(*Ed25519Signature)
	assert.True(t, ok)
	assert.Equal(t, publicKey, ed.PublicKey().String())
	assert.Equal(t, signature, ed.String())

	assert.True(t, wire.Equal(tree, Encode(sig)))
	encoded, err := EncodeJSON(sig)
	assert.NoError(t, err)
	assert.Equal(t, input, string(encoded))
}

func TestOrderPreservation(t *testing.T) {
	stateController := `{"type":0,"pubKeyHash":"0x` + strings.Repeat("01", 32) + `"}`
	governor := `{"type":8,"accountId":"0x` + strings.Repeat("02", 32) + `"}`
	sender := `{"type":0,"pubKeyHash":"0x` + strings.Repeat("03", 32) + `"}`
	input := `{"type":1,"amount":"1000","mana":"0","accountId":"0x` + strings.Repeat("00", 32) + `",` +
		`"stateIndex":0,"foundryCounter":0,` +
		`"unlockConditions":[{"type":4,"address":` + stateController + `},{"type":5,"address":` + governor + `}],` +
		`"features":[{"type":0,"address":` + sender + `},{"type":2,"data":"0x0102"}]}`

	output, err := DecodeJSON([]byte(input), FamilyOutput)
	assert.NoError(t, err)
	account := output.(*AccountOutput)
	assert.Equal(t, []uint8{UnlockConditionTypeStateControllerAddress, UnlockConditionTypeGovernorAddress}, account.UnlockConditions().Types())
	assert.Equal(t, []uint8{FeatureTypeSender, FeatureTypeMetadata}, account.Features().Types())

	encoded, err := EncodeJSON(output)
	assert.NoError(t, err)
	assert.Equal(t, input, string(encoded))

	// Reversed order is kept as given.
	reversed := strings.Replace(input, `"unlockConditions":[{"type":4,"address":`+stateController+`},{"type":5,"address":`+governor+`}]`,
		`"unlockConditions":[{"type":5,"address":`+governor+`},{"type":4,"address":`+stateController+`}]`, 1)
	output, err = DecodeJSON([]byte(reversed), FamilyOutput)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{UnlockConditionTypeGovernorAddress, UnlockConditionTypeStateControllerAddress}, output.(*AccountOutput).UnlockConditions().Types())
	encoded, err = EncodeJSON(output)
	assert.NoError(t, err)
	assert.Equal(t, reversed, string(encoded))
}

func TestOutputDataRoundTrip(t *testing.T) {
	data := sampleOutputData(t)
	tree := EncodeOutputData(data)
	decoded, err := DecodeOutputData(tree)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)

	keys := tree.(*wire.Object).Keys()
	assert.Equal(t, []string{"outputId", "metadata", "output", "isSpent", "address", "networkId", "remainder", "chain"}, keys)
	networkID, _ := tree.(*wire.Object).Get("networkId")
	assert.Equal(t, wire.String("8342982141227064571"), networkID)

	data.Chain = nil
	decoded, err = DecodeOutputData(EncodeOutputData(data))
	assert.NoError(t, err)
	assert.Nil(t, decoded.Chain)
}

func TestOutputDataMismatchedID(t *testing.T) {
	data := sampleOutputData(t)
	data.Metadata.OutputID[0] ^= 0xff
	_, err := DecodeOutputData(EncodeOutputData(data))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestEncodeNilVariant(t *testing.T) {
	var nilSignature *Ed25519Signature
	cases := []struct {
		name  string
		value Variant
		err   string
	}{
		{name: "nil interface", value: nil, err: "block: cannot encode nil <nil>"},
		{name: "nil pointer", value: nilSignature, err: "block: cannot encode nil *block.Ed25519Signature"},
		{name: "zero signature", value: &Ed25519Signature{}, err: "block: cannot encode nil *block.Ed25519PublicKey"},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.PanicsWithValue(t, testCase.err, func() {
				Encode(testCase.value)
			})
		})
	}
}
