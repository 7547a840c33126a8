package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testShape(family Family, tag uint8, name string, fields ...Field) *Shape {
	return &Shape{
		Family: family,
		Tag:    tag,
		Name:   name,
		Fields: fields,
		Build:  func(Values) (Variant, error) { return nil, nil },
		Split:  func(Variant) Values { return Values{} },
	}
}

func TestNewRegistry(t *testing.T) {
	cases := []struct {
		name   string
		shapes []*Shape
		err    error
	}{
		{
			name:   "valid",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A", hexField("id", 32)), testShape(FamilyAddress, 1, "B")},
		},
		{
			name:   "duplicate tag",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A"), testShape(FamilyAddress, 0, "B")},
			err:    ErrDuplicateShape,
		},
		{
			name:   "same tag in different families",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A"), testShape(FamilyPublicKey, 0, "B")},
		},
		{
			name:   "invalid family",
			shapes: []*Shape{testShape(Family(0), 0, "A")},
			err:    ErrInvalidShape,
		},
		{
			name:   "reserved field name",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A", boolField(TypeFieldName))},
			err:    ErrInvalidShape,
		},
		{
			name:   "repeated field name",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A", boolField("x"), boolField("x"))},
			err:    ErrInvalidShape,
		},
		{
			name:   "unsupported width",
			shapes: []*Shape{testShape(FamilyAddress, 0, "A", uintField("x", 12))},
			err:    ErrInvalidShape,
		},
		{
			name:   "unregistered nested family",
			shapes: []*Shape{testShape(FamilySignature, 0, "A", variantField("publicKey", FamilyPublicKey))},
			err:    ErrInvalidShape,
		},
		{
			name:   "missing constructor",
			shapes: []*Shape{{Family: FamilyAddress, Name: "A"}},
			err:    ErrInvalidShape,
		},
		{
			name:   "nil shape",
			shapes: []*Shape{nil},
			err:    ErrInvalidShape,
		},
	}
	for _, testCase := range cases {
		_, err := NewRegistry(testCase.shapes...)
		if testCase.err == nil {
			assert.NoError(t, err, testCase.name)
			continue
		}
		assert.ErrorIs(t, err, testCase.err, testCase.name)
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := DefaultRegistry()
	shape, err := registry.Lookup(FamilyAddress, AddressTypeRestricted)
	assert.NoError(t, err)
	assert.Equal(t, "RestrictedAddress", shape.Name)

	_, err = registry.Lookup(FamilyAddress, 1)
	assert.ErrorIs(t, err, ErrUnknownDiscriminator)

	tags := []uint8{}
	for _, s := range registry.Shapes(FamilyAddress) {
		tags = append(tags, s.Tag)
	}
	assert.Equal(t, []uint8{0, 8, 16, 48}, tags)
	assert.Equal(t, Families(), registry.Families())
	assert.Len(t, registry.Shapes(FamilyOutput), 5)
	assert.Len(t, registry.Shapes(FamilyUnlockCondition), 7)
	assert.Len(t, registry.Shapes(FamilyFeature), 7)
}

func TestCustomRegistry(t *testing.T) {
	registry, err := NewRegistry(addressShapes...)
	assert.NoError(t, err)
	d := NewDecoder(WithRegistry(registry))
	_, err = d.DecodeJSON([]byte(`{"type":0,"publicKey":"`+testPubKeyHash+`"}`), FamilyPublicKey)
	assert.ErrorIs(t, err, ErrUnknownDiscriminator)
	_, err = d.DecodeJSON([]byte(edAddressJSON(testPubKeyHash)), FamilyAddress)
	assert.NoError(t, err)

	e := NewEncoder(registry)
	assert.Panics(t, func() {
		e.Encode(must(NewEd25519PublicKey(filled(Ed25519PublicKeyLength, 1))))
	})
}

func TestFamilies(t *testing.T) {
	cases := []struct {
		name   string
		family Family
		err    bool
	}{
		{name: "Address", family: FamilyAddress},
		{name: "Output", family: FamilyOutput},
		{name: "ContextInput", family: FamilyContextInput},
		{name: "output", err: true},
		{name: "Block", err: true},
	}
	for _, testCase := range cases {
		family, err := ParseFamily(testCase.name)
		if testCase.err {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, testCase.family, family)
		assert.Equal(t, testCase.name, family.String())
	}
	assert.Len(t, Families(), 10)
	assert.False(t, Family(0).Valid())
}
