// Package block models the typed block object graph of the ledger as closed families of
// tagged variants and converts them to and from the discriminator tagged wire tree.
//
// Every variant belongs to one Family and reports its own discriminator through Type.
// The set of variants is fixed when the package is initialised: a Registry maps each
// (family, discriminator) pair to a Shape which declares the variant's fields in canonical
// order. The Decoder walks a wire tree against those declarations and the Encoder emits
// the structural inverse, so no variant needs hand written JSON handling.
//
// Variants are immutable after construction. Constructors validate their inputs, which
// makes encoding total for every value that can be built.
package block

import "fmt"

// Family is a closed set of variants sharing one discriminator namespace.
type Family uint8

const (
	FamilyAddress Family = iota + 1
	FamilyPublicKey
	FamilySignature
	FamilyUnlockCondition
	FamilyFeature
	FamilyBlockIssuerKey
	FamilyTokenScheme
	FamilyOutput
	FamilyUnlock
	FamilyContextInput
)

var familyNames = map[Family]string{
	FamilyAddress:         "Address",
	FamilyPublicKey:       "PublicKey",
	FamilySignature:       "Signature",
	FamilyUnlockCondition: "UnlockCondition",
	FamilyFeature:         "Feature",
	FamilyBlockIssuerKey:  "BlockIssuerKey",
	FamilyTokenScheme:     "TokenScheme",
	FamilyOutput:          "Output",
	FamilyUnlock:          "Unlock",
	FamilyContextInput:    "ContextInput",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// Valid returns true if f is one of the declared families.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// Families returns all declared families in declaration order.
func Families() []Family {
	families := make([]Family, 0, len(familyNames))
	for f := FamilyAddress; f <= FamilyContextInput; f++ {
		families = append(families, f)
	}
	return families
}

// ParseFamily resolves a family by name. Matching is case sensitive.
func ParseFamily(name string) (Family, error) {
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown family %q", name)
}

// Variant is implemented by every member of every family.
type Variant interface {
	// Family returns the family the variant belongs to.
	Family() Family
	// Type returns the discriminator of the variant within its family.
	Type() uint8
}
