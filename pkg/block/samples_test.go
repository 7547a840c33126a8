package block

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func filled(size int, val byte) []byte {
	return bytes.Repeat([]byte{val}, size)
}

func hash(val byte) [HashLength]byte {
	var h [HashLength]byte
	copy(h[:], filled(HashLength, val))
	return h
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// sampleVariants returns at least one instance of every registered shape.
func sampleVariants(t *testing.T) []Variant {
	t.Helper()
	ed := NewEd25519Address(hash(0x11))
	account := NewAccountAddress(hash(0x22))
	nft := NewNftAddress(hash(0x33))
	restricted := must(NewRestrictedAddress(ed, []byte{0x01, 0x02}))
	restrictedNoCaps := must(NewRestrictedAddress(account, nil))

	publicKey := must(NewEd25519PublicKey(filled(Ed25519PublicKeyLength, 0x44)))
	signature := must(NewEd25519Signature(publicKey, filled(Ed25519SignatureLength, 0x55)))

	addressUC := must(NewAddressUnlockCondition(ed))
	sdrUC := must(NewStorageDepositReturnUnlockCondition(nft, 50_000))
	timelockUC := must(NewTimelockUnlockCondition(1000))
	expirationUC := must(NewExpirationUnlockCondition(restricted, 2000))
	stateUC := must(NewStateControllerAddressUnlockCondition(ed))
	governorUC := must(NewGovernorAddressUnlockCondition(account))
	immutableUC := must(NewImmutableAccountAddressUnlockCondition(account))

	sender := must(NewSenderFeature(ed))
	issuer := must(NewIssuerFeature(nft))
	metadata := must(NewMetadataFeature([]byte("hello")))
	tag := must(NewTagFeature([]byte("tag")))
	var tokenID TokenID
	copy(tokenID[:], filled(FoundryIDLength, 0x66))
	nativeToken := must(NewNativeTokenFeature(tokenID, uint256.NewInt(1_000_000)))
	issuerKey := must(NewEd25519BlockIssuerKey(filled(Ed25519PublicKeyLength, 0x77)))
	blockIssuer := must(NewBlockIssuerFeature(500, []BlockIssuerKey{issuerKey}))
	staking := must(NewStakingFeature(100, 5, 10, 20))

	scheme := must(NewSimpleTokenScheme(uint256.NewInt(100), uint256.NewInt(40), uint256.NewInt(1000)))

	basic := must(NewBasicOutput(1_000_000, 25, []UnlockCondition{addressUC, sdrUC, timelockUC, expirationUC}, []Feature{sender, metadata, tag, nativeToken}))
	basicBare := must(NewBasicOutput(0, 0, []UnlockCondition{addressUC}, nil))
	accountOutput := must(NewAccountOutput(AccountOutputParams{
		Amount:            2_000_000,
		Mana:              7,
		AccountID:         hash(0x22),
		StateIndex:        3,
		StateMetadata:     []byte{0xca, 0xfe},
		FoundryCounter:    1,
		UnlockConditions:  []UnlockCondition{stateUC, governorUC},
		Features:          []Feature{sender, blockIssuer, staking},
		ImmutableFeatures: []Feature{issuer, metadata},
	}))
	foundry := must(NewFoundryOutput(300, 1, scheme, []UnlockCondition{immutableUC}, []Feature{nativeToken}, []Feature{metadata}))
	nftOutput := must(NewNftOutput(400, 9, hash(0x33), []UnlockCondition{addressUC, expirationUC}, []Feature{tag}, []Feature{issuer}))
	delegation := must(NewDelegationOutput(DelegationOutputParams{
		Amount:           500,
		DelegatedAmount:  450,
		DelegationID:     hash(0x88),
		ValidatorAddress: account,
		StartEpoch:       4,
		EndEpoch:         8,
		UnlockConditions: []UnlockCondition{addressUC},
	}))

	var commitment SlotCommitmentID
	copy(commitment[:], filled(SlotIdentifierLength, 0x99))

	return []Variant{
		ed, account, nft, restricted, restrictedNoCaps,
		publicKey, signature,
		addressUC, sdrUC, timelockUC, expirationUC, stateUC, governorUC, immutableUC,
		sender, issuer, metadata, tag, nativeToken, blockIssuer, staking,
		issuerKey,
		scheme,
		basic, basicBare, accountOutput, foundry, nftOutput, delegation,
		must(NewSignatureUnlock(signature)),
		must(NewReferenceUnlock(0)),
		must(NewAccountUnlock(1)),
		must(NewNftUnlock(127)),
		NewCommitmentContextInput(commitment),
		NewBlockIssuanceCreditContextInput(hash(0x22)),
		must(NewRewardContextInput(2)),
	}
}

func sampleOutputData(t *testing.T) OutputData {
	t.Helper()
	var txID TransactionID
	copy(txID[:], filled(SlotIdentifierLength, 0xaa))
	outputID := NewOutputID(txID, 1)
	var blockID BlockID
	copy(blockID[:], filled(SlotIdentifierLength, 0xbb))
	var latest SlotCommitmentID
	copy(latest[:], filled(SlotIdentifierLength, 0xcc))
	addr := NewEd25519Address(hash(0x11))
	output := must(NewBasicOutput(42, 0, []UnlockCondition{must(NewAddressUnlockCondition(addr))}, nil))
	chain := NewBip44(0, 0, 3)
	return OutputData{
		OutputID: outputID,
		Metadata: OutputMetadata{
			BlockID:              blockID,
			OutputID:             outputID,
			IncludedCommitmentID: &latest,
			LatestCommitmentID:   latest,
		},
		Output:    output,
		Address:   addr,
		NetworkID: 8342982141227064571,
		Chain:     &chain,
	}
}
