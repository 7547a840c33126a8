package block

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tanglekit/blockcodec/pkg/codec"
)

const (
	// HashLength is the length of identifiers derived from a BLAKE2b-256 digest.
	HashLength = 32
	// SlotIndexLength is the length of the slot index suffix of slot based identifiers.
	SlotIndexLength = 4
	// SlotIdentifierLength is the length of a hash followed by a slot index.
	SlotIdentifierLength = HashLength + SlotIndexLength
	// OutputIndexLength is the length of the output index suffix of an output id.
	OutputIndexLength = 2
	// OutputIDLength is the length of a transaction id followed by an output index.
	OutputIDLength = SlotIdentifierLength + OutputIndexLength
	// FoundryIDLength is the length of a foundry id, which is also a native token id.
	FoundryIDLength = 1 + HashLength + 4 + 1
	// Ed25519PublicKeyLength is the length of an Ed25519 public key.
	Ed25519PublicKeyLength = 32
	// Ed25519SignatureLength is the length of an Ed25519 signature.
	Ed25519SignatureLength = 64
)

type (
	// AccountID identifies an account output chain.
	AccountID [HashLength]byte
	// NftID identifies an NFT output chain.
	NftID [HashLength]byte
	// DelegationID identifies a delegation output chain.
	DelegationID [HashLength]byte
	// TokenID identifies a native token by the foundry that minted it.
	TokenID [FoundryIDLength]byte
	// BlockID identifies a block.
	BlockID [SlotIdentifierLength]byte
	// TransactionID identifies a transaction.
	TransactionID [SlotIdentifierLength]byte
	// SlotCommitmentID identifies a slot commitment.
	SlotCommitmentID [SlotIdentifierLength]byte
	// OutputID identifies an output by its transaction and index.
	OutputID [OutputIDLength]byte
)

func (id AccountID) String() string { return codec.EncodeHex(id[:]) }
func (id NftID) String() string { return codec.EncodeHex(id[:]) }
func (id DelegationID) String() string { return codec.EncodeHex(id[:]) }
func (id TokenID) String() string { return codec.EncodeHex(id[:]) }
func (id BlockID) String() string { return codec.EncodeHex(id[:]) }
func (id TransactionID) String() string { return codec.EncodeHex(id[:]) }
func (id SlotCommitmentID) String() string { return codec.EncodeHex(id[:]) }
func (id OutputID) String() string { return codec.EncodeHex(id[:]) }

// IsNull returns true for the all zero id used by newly created chains.
func (id AccountID) IsNull() bool { return id == AccountID{} }

// IsNull returns true for the all zero id used by newly created chains.
func (id NftID) IsNull() bool { return id == NftID{} }

// Slot returns the slot index the identifier was created in.
func (id BlockID) Slot() uint32 {
	return binary.LittleEndian.Uint32(id[HashLength:])
}

// Slot returns the slot index the identifier was created in.
func (id TransactionID) Slot() uint32 {
	return binary.LittleEndian.Uint32(id[HashLength:])
}

// Slot returns the slot index the identifier was created in.
func (id SlotCommitmentID) Slot() uint32 {
	return binary.LittleEndian.Uint32(id[HashLength:])
}

// NewOutputID creates an output id from its transaction and index.
func NewOutputID(txID TransactionID, index uint16) OutputID {
	var id OutputID
	copy(id[:], txID[:])
	binary.LittleEndian.PutUint16(id[SlotIdentifierLength:], index)
	return id
}

// TransactionID returns the transaction which created the output.
func (id OutputID) TransactionID() TransactionID {
	var txID TransactionID
	copy(txID[:], id[:SlotIdentifierLength])
	return txID
}

// Index returns the index of the output within its transaction.
func (id OutputID) Index() uint16 {
	return binary.LittleEndian.Uint16(id[SlotIdentifierLength:])
}

// ParseOutputID parses the hex representation of an output id.
func ParseOutputID(text string) (OutputID, error) {
	var id OutputID
	decoded, err := codec.DecodeFixedHex(text, OutputIDLength)
	if err != nil {
		return id, fmt.Errorf("output id: %w", err)
	}
	copy(id[:], decoded)
	return id, nil
}

// ParseAccountID parses the hex representation of an account id.
func ParseAccountID(text string) (AccountID, error) {
	var id AccountID
	decoded, err := codec.DecodeFixedHex(text, HashLength)
	if err != nil {
		return id, fmt.Errorf("account id: %w", err)
	}
	copy(id[:], decoded)
	return id, nil
}

// AccountIDFromOutputID derives the id of an account created by outputID.
func AccountIDFromOutputID(outputID OutputID) AccountID {
	return blake2b.Sum256(outputID[:])
}

// NftIDFromOutputID derives the id of an NFT created by outputID.
func NftIDFromOutputID(outputID OutputID) NftID {
	return blake2b.Sum256(outputID[:])
}
