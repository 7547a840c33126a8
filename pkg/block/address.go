package block

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/tanglekit/blockcodec/pkg/codec"
)

const (
	AddressTypeEd25519    uint8 = 0
	AddressTypeAccount    uint8 = 8
	AddressTypeNft        uint8 = 16
	AddressTypeRestricted uint8 = 48

	// MaxAddressCapabilitiesLength bounds the capability bitmask of a restricted address.
	MaxAddressCapabilitiesLength = 8
)

var (
	// ErrNestedRestrictedAddress is returned when a restricted address wraps another one.
	ErrNestedRestrictedAddress = errors.New("restricted address cannot wrap a restricted address")
	// ErrInvalidCapabilities is returned for a non canonical capability bitmask.
	ErrInvalidCapabilities = errors.New("invalid address capabilities")
	// ErrInvalidPackedAddress is returned when packed address bytes cannot be parsed.
	ErrInvalidPackedAddress = errors.New("invalid packed address")
)

// Address is a member of the Address family.
type Address interface {
	Variant
	isAddress()
}

// Ed25519Address is the BLAKE2b-256 hash of an Ed25519 public key.
type Ed25519Address struct {
	pubKeyHash [HashLength]byte
}

func NewEd25519Address(pubKeyHash [HashLength]byte) *Ed25519Address {
	return &Ed25519Address{pubKeyHash: pubKeyHash}
}

func (*Ed25519Address) Family() Family { return FamilyAddress }
func (*Ed25519Address) Type() uint8 { return AddressTypeEd25519 }
func (*Ed25519Address) isAddress() {}

// PubKeyHash returns the hash of the public key.
func (a *Ed25519Address) PubKeyHash() [HashLength]byte { return a.pubKeyHash }

// AccountAddress points to an account output chain.
type AccountAddress struct {
	accountID AccountID
}

func NewAccountAddress(accountID AccountID) *AccountAddress {
	return &AccountAddress{accountID: accountID}
}

func (*AccountAddress) Family() Family { return FamilyAddress }
func (*AccountAddress) Type() uint8 { return AddressTypeAccount }
func (*AccountAddress) isAddress() {}

func (a *AccountAddress) AccountID() AccountID { return a.accountID }

// NftAddress points to an NFT output chain.
type NftAddress struct {
	nftID NftID
}

func NewNftAddress(nftID NftID) *NftAddress {
	return &NftAddress{nftID: nftID}
}

func (*NftAddress) Family() Family { return FamilyAddress }
func (*NftAddress) Type() uint8 { return AddressTypeNft }
func (*NftAddress) isAddress() {}

func (a *NftAddress) NftID() NftID { return a.nftID }

// RestrictedAddress wraps an address with a capability bitmask.
type RestrictedAddress struct {
	address             Address
	allowedCapabilities []byte
}

// NewRestrictedAddress creates a restricted address. Capabilities must not end with a
// zero byte so that every bitmask has a single representation.
func NewRestrictedAddress(address Address, allowedCapabilities []byte) (*RestrictedAddress, error) {
	if address == nil {
		return nil, errors.New("restricted address requires an address")
	}
	if _, ok := address.(*RestrictedAddress); ok {
		return nil, ErrNestedRestrictedAddress
	}
	if len(allowedCapabilities) > MaxAddressCapabilitiesLength {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrInvalidCapabilities, len(allowedCapabilities), MaxAddressCapabilitiesLength)
	}
	if len(allowedCapabilities) > 0 && allowedCapabilities[len(allowedCapabilities)-1] == 0 {
		return nil, fmt.Errorf("%w: trailing zero byte", ErrInvalidCapabilities)
	}
	return &RestrictedAddress{
		address:             address,
		allowedCapabilities: cloneBytes(allowedCapabilities),
	}, nil
}

func (*RestrictedAddress) Family() Family { return FamilyAddress }
func (*RestrictedAddress) Type() uint8 { return AddressTypeRestricted }
func (*RestrictedAddress) isAddress() {}

// Address returns the underlying address.
func (a *RestrictedAddress) Address() Address { return a.address }

// AllowedCapabilities returns a copy of the capability bitmask.
func (a *RestrictedAddress) AllowedCapabilities() []byte {
	return cloneBytes(a.allowedCapabilities)
}

var addressShapes = []*Shape{
	{
		Family: FamilyAddress,
		Tag:    AddressTypeEd25519,
		Name:   "Ed25519Address",
		Fields: []Field{hexField("pubKeyHash", HashLength)},
		Build: func(v Values) (Variant, error) {
			var hash [HashLength]byte
			copy(hash[:], v.Bytes("pubKeyHash"))
			return NewEd25519Address(hash), nil
		},
		Split: func(v Variant) Values {
			hash := v.(*Ed25519Address).pubKeyHash
			return Values{"pubKeyHash": hash[:]}
		},
	},
	{
		Family: FamilyAddress,
		Tag:    AddressTypeAccount,
		Name:   "AccountAddress",
		Fields: []Field{hexField("accountId", HashLength)},
		Build: func(v Values) (Variant, error) {
			var id AccountID
			copy(id[:], v.Bytes("accountId"))
			return NewAccountAddress(id), nil
		},
		Split: func(v Variant) Values {
			id := v.(*AccountAddress).accountID
			return Values{"accountId": id[:]}
		},
	},
	{
		Family: FamilyAddress,
		Tag:    AddressTypeNft,
		Name:   "NftAddress",
		Fields: []Field{hexField("nftId", HashLength)},
		Build: func(v Values) (Variant, error) {
			var id NftID
			copy(id[:], v.Bytes("nftId"))
			return NewNftAddress(id), nil
		},
		Split: func(v Variant) Values {
			id := v.(*NftAddress).nftID
			return Values{"nftId": id[:]}
		},
	},
	{
		Family: FamilyAddress,
		Tag:    AddressTypeRestricted,
		Name:   "RestrictedAddress",
		Fields: []Field{
			variantField("address", FamilyAddress),
			bytesField("allowedCapabilities").optional(),
		},
		Build: func(v Values) (Variant, error) {
			inner, err := variantAs[Address](v, "address")
			if err != nil {
				return nil, err
			}
			return NewRestrictedAddress(inner, v.Bytes("allowedCapabilities"))
		},
		Split: func(v Variant) Values {
			addr := v.(*RestrictedAddress)
			vals := Values{"address": addr.address}
			if len(addr.allowedCapabilities) > 0 {
				vals["allowedCapabilities"] = cloneBytes(addr.allowedCapabilities)
			}
			return vals
		},
	},
}

// PackAddress returns the binary form used by bech32: the kind byte followed by the
// address body.
func PackAddress(addr Address) []byte {
	switch a := addr.(type) {
	case *Ed25519Address:
		return append([]byte{a.Type()}, a.pubKeyHash[:]...)
	case *AccountAddress:
		return append([]byte{a.Type()}, a.accountID[:]...)
	case *NftAddress:
		return append([]byte{a.Type()}, a.nftID[:]...)
	case *RestrictedAddress:
		packed := append([]byte{a.Type()}, PackAddress(a.address)...)
		packed = append(packed, byte(len(a.allowedCapabilities)))
		return append(packed, a.allowedCapabilities...)
	}
	panic(fmt.Sprintf("block: unknown address %T", addr))
}

// UnpackAddress parses the binary form produced by PackAddress.
func UnpackAddress(data []byte) (Address, error) {
	addr, rest, err := unpackAddress(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidPackedAddress, len(rest))
	}
	return addr, nil
}

func unpackAddress(data []byte) (Address, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty", ErrInvalidPackedAddress)
	}
	kind, body := data[0], data[1:]
	switch kind {
	case AddressTypeEd25519, AddressTypeAccount, AddressTypeNft:
		if len(body) < HashLength {
			return nil, nil, fmt.Errorf("%w: kind %d needs %d bytes but received %d", ErrInvalidPackedAddress, kind, HashLength, len(body))
		}
		var id [HashLength]byte
		copy(id[:], body)
		switch kind {
		case AddressTypeAccount:
			return NewAccountAddress(id), body[HashLength:], nil
		case AddressTypeNft:
			return NewNftAddress(id), body[HashLength:], nil
		}
		return NewEd25519Address(id), body[HashLength:], nil
	case AddressTypeRestricted:
		inner, rest, err := unpackAddress(body)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 || len(rest)-1 < int(rest[0]) {
			return nil, nil, fmt.Errorf("%w: truncated capabilities", ErrInvalidPackedAddress)
		}
		size := int(rest[0])
		restricted, err := NewRestrictedAddress(inner, rest[1:1+size])
		if err != nil {
			return nil, nil, err
		}
		return restricted, rest[1+size:], nil
	}
	return nil, nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidPackedAddress, kind)
}

// AddressToBech32 renders addr with the human readable part of a network.
func AddressToBech32(hrp string, addr Address) (string, error) {
	return codec.Bech32Encode(hrp, PackAddress(addr))
}

// ParseBech32Address parses a bech32 address and returns its human readable part.
func ParseBech32Address(text string) (string, Address, error) {
	hrp, data, err := codec.Bech32Decode(text)
	if err != nil {
		return "", nil, err
	}
	addr, err := UnpackAddress(data)
	if err != nil {
		return "", nil, err
	}
	return hrp, addr, nil
}

// AddressEqual reports whether two addresses are identical.
func AddressEqual(a, b Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal(PackAddress(a), PackAddress(b))
}

func cloneBytes(val []byte) []byte {
	if len(val) == 0 {
		return nil
	}
	return slices.Clone(val)
}
