package block

import (
	"errors"
	"fmt"

	"github.com/tanglekit/blockcodec/pkg/codec"
)

const (
	SignatureTypeEd25519 uint8 = 0
)

// Signature is a member of the Signature family.
type Signature interface {
	Variant
	isSignature()
}

// Ed25519Signature is an Ed25519 signature together with the key that produced it.
type Ed25519Signature struct {
	publicKey *Ed25519PublicKey
	signature [Ed25519SignatureLength]byte
}

// NewEd25519Signature creates a signature from its public key and raw signature bytes.
func NewEd25519Signature(publicKey *Ed25519PublicKey, signature []byte) (*Ed25519Signature, error) {
	if publicKey == nil {
		return nil, errors.New("ed25519 signature requires a public key")
	}
	if len(signature) != Ed25519SignatureLength {
		return nil, fmt.Errorf("ed25519 signature must be %d bytes but received %d", Ed25519SignatureLength, len(signature))
	}
	sig := &Ed25519Signature{publicKey: publicKey}
	copy(sig.signature[:], signature)
	return sig, nil
}

func (*Ed25519Signature) Family() Family { return FamilySignature }
func (*Ed25519Signature) Type() uint8 { return SignatureTypeEd25519 }
func (*Ed25519Signature) isSignature() {}

// PublicKey returns the key which produced the signature.
func (s *Ed25519Signature) PublicKey() *Ed25519PublicKey { return s.publicKey }

// Signature returns a copy of the signature bytes.
func (s *Ed25519Signature) Signature() []byte {
	return cloneBytes(s.signature[:])
}

func (s *Ed25519Signature) String() string {
	return codec.EncodeHex(s.signature[:])
}

var signatureShapes = []*Shape{
	{
		Family: FamilySignature,
		Tag:    SignatureTypeEd25519,
		Name:   "Ed25519Signature",
		Fields: []Field{
			variantField("publicKey", FamilyPublicKey),
			hexField("signature", Ed25519SignatureLength),
		},
		Build: func(v Values) (Variant, error) {
			publicKey, err := variantAs[*Ed25519PublicKey](v, "publicKey")
			if err != nil {
				return nil, err
			}
			return NewEd25519Signature(publicKey, v.Bytes("signature"))
		},
		Split: func(v Variant) Values {
			sig := v.(*Ed25519Signature)
			return Values{
				"publicKey": sig.publicKey,
				"signature": sig.Signature(),
			}
		},
	},
}
