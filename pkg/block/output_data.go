package block

import (
	"errors"
	"fmt"
)

// CoinTypeIOTA is the registered BIP-44 coin type of the network.
const CoinTypeIOTA uint32 = 4218

// OutputMetadata is the ledger state of an output as reported by a node.
type OutputMetadata struct {
	BlockID              BlockID
	OutputID             OutputID
	IsSpent              bool
	CommitmentIDSpent    *SlotCommitmentID
	TransactionIDSpent   *TransactionID
	IncludedCommitmentID *SlotCommitmentID
	LatestCommitmentID   SlotCommitmentID
}

// Bip44 is the derivation chain of the key controlling an output.
type Bip44 struct {
	CoinType     uint32
	Account      uint32
	Change       uint32
	AddressIndex uint32
}

// NewBip44 returns the chain for addressIndex of account on the default coin type.
func NewBip44(account, change, addressIndex uint32) Bip44 {
	return Bip44{CoinType: CoinTypeIOTA, Account: account, Change: change, AddressIndex: addressIndex}
}

// String renders the chain as a hardened SLIP-10 path.
func (b Bip44) String() string {
	return fmt.Sprintf("m/44'/%d'/%d'/%d'/%d'", b.CoinType, b.Account, b.Change, b.AddressIndex)
}

// OutputData is an output together with the wallet information about it.
type OutputData struct {
	OutputID  OutputID
	Metadata  OutputMetadata
	Output    Output
	IsSpent   bool
	Address   Address
	NetworkID uint64
	Remainder bool
	Chain     *Bip44
}

func optionalCommitmentID(vals Values, name string) *SlotCommitmentID {
	if !vals.Has(name) {
		return nil
	}
	var id SlotCommitmentID
	copy(id[:], vals.Bytes(name))
	return &id
}

func optionalTransactionID(vals Values, name string) *TransactionID {
	if !vals.Has(name) {
		return nil
	}
	var id TransactionID
	copy(id[:], vals.Bytes(name))
	return &id
}

// OutputMetadataRecord is the record shape of OutputMetadata.
var OutputMetadataRecord = &RecordShape{
	Name: "OutputMetadata",
	Fields: []Field{
		hexField("blockId", SlotIdentifierLength),
		hexField("outputId", OutputIDLength),
		boolField("isSpent"),
		hexField("commitmentIdSpent", SlotIdentifierLength).optional(),
		hexField("transactionIdSpent", SlotIdentifierLength).optional(),
		hexField("includedCommitmentId", SlotIdentifierLength).optional(),
		hexField("latestCommitmentId", SlotIdentifierLength),
	},
	Build: func(v Values) (any, error) {
		meta := OutputMetadata{
			IsSpent:              v.Bool("isSpent"),
			CommitmentIDSpent:    optionalCommitmentID(v, "commitmentIdSpent"),
			TransactionIDSpent:   optionalTransactionID(v, "transactionIdSpent"),
			IncludedCommitmentID: optionalCommitmentID(v, "includedCommitmentId"),
		}
		copy(meta.BlockID[:], v.Bytes("blockId"))
		copy(meta.OutputID[:], v.Bytes("outputId"))
		copy(meta.LatestCommitmentID[:], v.Bytes("latestCommitmentId"))
		if !meta.IsSpent && (meta.CommitmentIDSpent != nil || meta.TransactionIDSpent != nil) {
			return nil, errors.New("unspent output carries spending information")
		}
		return meta, nil
	},
	Split: func(val any) Values {
		meta := val.(OutputMetadata)
		vals := Values{
			"blockId":            meta.BlockID[:],
			"outputId":           meta.OutputID[:],
			"isSpent":            meta.IsSpent,
			"latestCommitmentId": meta.LatestCommitmentID[:],
		}
		if meta.CommitmentIDSpent != nil {
			vals["commitmentIdSpent"] = meta.CommitmentIDSpent[:]
		}
		if meta.TransactionIDSpent != nil {
			vals["transactionIdSpent"] = meta.TransactionIDSpent[:]
		}
		if meta.IncludedCommitmentID != nil {
			vals["includedCommitmentId"] = meta.IncludedCommitmentID[:]
		}
		return vals
	},
}

// Bip44Record is the record shape of Bip44.
var Bip44Record = &RecordShape{
	Name: "Bip44",
	Fields: []Field{
		uintField("coinType", 32),
		uintField("account", 32),
		uintField("change", 32),
		uintField("addressIndex", 32),
	},
	Build: func(v Values) (any, error) {
		return Bip44{
			CoinType:     v.Uint32("coinType"),
			Account:      v.Uint32("account"),
			Change:       v.Uint32("change"),
			AddressIndex: v.Uint32("addressIndex"),
		}, nil
	},
	Split: func(val any) Values {
		chain := val.(Bip44)
		return Values{
			"coinType":     uint64(chain.CoinType),
			"account":      uint64(chain.Account),
			"change":       uint64(chain.Change),
			"addressIndex": uint64(chain.AddressIndex),
		}
	},
}

// OutputDataRecord is the record shape of OutputData.
var OutputDataRecord = &RecordShape{
	Name: "OutputData",
	Fields: []Field{
		hexField("outputId", OutputIDLength),
		recordField("metadata", OutputMetadataRecord),
		variantField("output", FamilyOutput),
		boolField("isSpent"),
		variantField("address", FamilyAddress),
		amountField("networkId"),
		boolField("remainder"),
		recordField("chain", Bip44Record).optional(),
	},
	Build: func(v Values) (any, error) {
		output, err := variantAs[Output](v, "output")
		if err != nil {
			return nil, err
		}
		address, err := variantAs[Address](v, "address")
		if err != nil {
			return nil, err
		}
		data := OutputData{
			Metadata:  v.Record("metadata").(OutputMetadata),
			Output:    output,
			IsSpent:   v.Bool("isSpent"),
			Address:   address,
			NetworkID: v.Uint64("networkId"),
			Remainder: v.Bool("remainder"),
		}
		copy(data.OutputID[:], v.Bytes("outputId"))
		if v.Has("chain") {
			chain := v.Record("chain").(Bip44)
			data.Chain = &chain
		}
		if data.Metadata.OutputID != data.OutputID {
			return nil, fmt.Errorf("output id %s does not match metadata output id %s", data.OutputID, data.Metadata.OutputID)
		}
		return data, nil
	},
	Split: func(val any) Values {
		data := val.(OutputData)
		vals := Values{
			"outputId":  data.OutputID[:],
			"metadata":  data.Metadata,
			"output":    data.Output,
			"isSpent":   data.IsSpent,
			"address":   data.Address,
			"networkId": data.NetworkID,
			"remainder": data.Remainder,
		}
		if data.Chain != nil {
			vals["chain"] = *data.Chain
		}
		return vals
	},
}
