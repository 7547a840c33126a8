package block

import (
	"errors"
	"fmt"
)

const (
	UnlockTypeSignature uint8 = 0
	UnlockTypeReference uint8 = 1
	UnlockTypeAccount   uint8 = 2
	UnlockTypeNft       uint8 = 3

	// MaxInputsCount bounds the index an unlock may reference.
	MaxInputsCount = 128
)

// ErrInvalidReference is returned for a reference outside the input range.
var ErrInvalidReference = errors.New("invalid unlock reference")

// Unlock is a member of the Unlock family.
type Unlock interface {
	Variant
	isUnlock()
}

// ReferentialUnlock points to another unlock of the same transaction.
type ReferentialUnlock interface {
	Unlock
	Reference() uint16
}

// SignatureUnlock unlocks an input with a signature.
type SignatureUnlock struct {
	signature Signature
}

func NewSignatureUnlock(signature Signature) (*SignatureUnlock, error) {
	if signature == nil {
		return nil, errors.New("signature unlock requires a signature")
	}
	return &SignatureUnlock{signature: signature}, nil
}

func (*SignatureUnlock) Family() Family { return FamilyUnlock }
func (*SignatureUnlock) Type() uint8 { return UnlockTypeSignature }
func (*SignatureUnlock) isUnlock() {}

func (u *SignatureUnlock) Signature() Signature { return u.signature }

type referenceUnlock struct {
	reference uint16
}

func newReference(reference uint16) (referenceUnlock, error) {
	if reference >= MaxInputsCount {
		return referenceUnlock{}, fmt.Errorf("%w: %d, must be below %d", ErrInvalidReference, reference, MaxInputsCount)
	}
	return referenceUnlock{reference: reference}, nil
}

func (u referenceUnlock) Reference() uint16 { return u.reference }

// ReferenceUnlock reuses the signature unlock at the referenced index.
type ReferenceUnlock struct {
	referenceUnlock
}

func NewReferenceUnlock(reference uint16) (*ReferenceUnlock, error) {
	ref, err := newReference(reference)
	if err != nil {
		return nil, err
	}
	return &ReferenceUnlock{ref}, nil
}

func (*ReferenceUnlock) Family() Family { return FamilyUnlock }
func (*ReferenceUnlock) Type() uint8 { return UnlockTypeReference }
func (*ReferenceUnlock) isUnlock() {}

// AccountUnlock unlocks an input owned by the account unlocked at the referenced index.
type AccountUnlock struct {
	referenceUnlock
}

func NewAccountUnlock(reference uint16) (*AccountUnlock, error) {
	ref, err := newReference(reference)
	if err != nil {
		return nil, err
	}
	return &AccountUnlock{ref}, nil
}

func (*AccountUnlock) Family() Family { return FamilyUnlock }
func (*AccountUnlock) Type() uint8 { return UnlockTypeAccount }
func (*AccountUnlock) isUnlock() {}

// NftUnlock unlocks an input owned by the NFT unlocked at the referenced index.
type NftUnlock struct {
	referenceUnlock
}

func NewNftUnlock(reference uint16) (*NftUnlock, error) {
	ref, err := newReference(reference)
	if err != nil {
		return nil, err
	}
	return &NftUnlock{ref}, nil
}

func (*NftUnlock) Family() Family { return FamilyUnlock }
func (*NftUnlock) Type() uint8 { return UnlockTypeNft }
func (*NftUnlock) isUnlock() {}

func referenceShape(tag uint8, name string, build func(uint16) (Unlock, error)) *Shape {
	return &Shape{
		Family: FamilyUnlock,
		Tag:    tag,
		Name:   name,
		Fields: []Field{uintField("reference", 16)},
		Build: func(v Values) (Variant, error) {
			return build(v.Uint16("reference"))
		},
		Split: func(v Variant) Values {
			return Values{"reference": uint64(v.(ReferentialUnlock).Reference())}
		},
	}
}

var unlockShapes = []*Shape{
	{
		Family: FamilyUnlock,
		Tag:    UnlockTypeSignature,
		Name:   "SignatureUnlock",
		Fields: []Field{variantField("signature", FamilySignature)},
		Build: func(v Values) (Variant, error) {
			sig, err := variantAs[Signature](v, "signature")
			if err != nil {
				return nil, err
			}
			return NewSignatureUnlock(sig)
		},
		Split: func(v Variant) Values {
			return Values{"signature": v.(*SignatureUnlock).signature}
		},
	},
	referenceShape(UnlockTypeReference, "ReferenceUnlock", func(ref uint16) (Unlock, error) { return NewReferenceUnlock(ref) }),
	referenceShape(UnlockTypeAccount, "AccountUnlock", func(ref uint16) (Unlock, error) { return NewAccountUnlock(ref) }),
	referenceShape(UnlockTypeNft, "NftUnlock", func(ref uint16) (Unlock, error) { return NewNftUnlock(ref) }),
}
