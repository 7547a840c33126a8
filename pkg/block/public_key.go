package block

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tanglekit/blockcodec/pkg/codec"
)

const (
	PublicKeyTypeEd25519 uint8 = 0
)

// PublicKey is a member of the PublicKey family.
type PublicKey interface {
	Variant
	isPublicKey()
}

// Ed25519PublicKey is a 32 byte Ed25519 public key.
type Ed25519PublicKey struct {
	publicKey [Ed25519PublicKeyLength]byte
}

// NewEd25519PublicKey creates a public key from raw bytes.
func NewEd25519PublicKey(publicKey []byte) (*Ed25519PublicKey, error) {
	if len(publicKey) != Ed25519PublicKeyLength {
		return nil, fmt.Errorf("ed25519 public key must be %d bytes but received %d", Ed25519PublicKeyLength, len(publicKey))
	}
	key := &Ed25519PublicKey{}
	copy(key.publicKey[:], publicKey)
	return key, nil
}

func (*Ed25519PublicKey) Family() Family { return FamilyPublicKey }
func (*Ed25519PublicKey) Type() uint8 { return PublicKeyTypeEd25519 }
func (*Ed25519PublicKey) isPublicKey() {}

// Bytes returns a copy of the key.
func (k *Ed25519PublicKey) Bytes() []byte {
	return cloneBytes(k.publicKey[:])
}

// String returns the key in canonical hex.
func (k *Ed25519PublicKey) String() string {
	return codec.EncodeHex(k.publicKey[:])
}

// Address derives the Ed25519 address controlled by the key.
func (k *Ed25519PublicKey) Address() *Ed25519Address {
	return NewEd25519Address(blake2b.Sum256(k.publicKey[:]))
}

var publicKeyShapes = []*Shape{
	{
		Family: FamilyPublicKey,
		Tag:    PublicKeyTypeEd25519,
		Name:   "Ed25519PublicKey",
		Fields: []Field{hexField("publicKey", Ed25519PublicKeyLength)},
		Build: func(v Values) (Variant, error) {
			return NewEd25519PublicKey(v.Bytes("publicKey"))
		},
		Split: func(v Variant) Values {
			return Values{"publicKey": v.(*Ed25519PublicKey).Bytes()}
		},
	},
}
