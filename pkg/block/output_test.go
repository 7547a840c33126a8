package block

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestNewBasicOutputRules(t *testing.T) {
	ed := NewEd25519Address(hash(0x01))
	addressUC := must(NewAddressUnlockCondition(ed))
	stateUC := must(NewStateControllerAddressUnlockCondition(ed))
	sender := must(NewSenderFeature(ed))
	issuer := must(NewIssuerFeature(ed))
	staking := must(NewStakingFeature(1, 1, 0, 0))

	tooManyFeatures := []Feature{}
	for i := 0; i <= MaxFeaturesCount; i++ {
		tooManyFeatures = append(tooManyFeatures, sender)
	}
	tooManyConditions := []UnlockCondition{}
	for i := 0; i <= MaxUnlockConditionsCount; i++ {
		tooManyConditions = append(tooManyConditions, addressUC)
	}

	cases := []struct {
		name     string
		uc       []UnlockCondition
		features []Feature
		err      error
	}{
		{name: "address only", uc: []UnlockCondition{addressUC}},
		{name: "missing address", uc: nil, err: ErrMissingUnlockCondition},
		{name: "state controller", uc: []UnlockCondition{addressUC, stateUC}, err: ErrUnlockConditionNotAllowed},
		{name: "issuer feature", uc: []UnlockCondition{addressUC}, features: []Feature{issuer}, err: ErrFeatureNotAllowed},
		{name: "staking feature", uc: []UnlockCondition{addressUC}, features: []Feature{staking}, err: ErrFeatureNotAllowed},
		{name: "too many features", uc: []UnlockCondition{addressUC}, features: tooManyFeatures, err: ErrTooManyItems},
		{name: "too many unlock conditions", uc: tooManyConditions, err: ErrTooManyItems},
		// Duplicates are kept as given.
		{name: "repeated feature", uc: []UnlockCondition{addressUC}, features: []Feature{sender, sender}},
	}
	for _, testCase := range cases {
		output, err := NewBasicOutput(1, 0, testCase.uc, testCase.features)
		if testCase.err != nil {
			assert.ErrorIs(t, err, testCase.err, testCase.name)
			continue
		}
		assert.NoError(t, err, testCase.name)
		assert.Equal(t, Features(testCase.features), output.Features())
	}
}

func TestAccountOutputRules(t *testing.T) {
	ed := NewEd25519Address(hash(0x01))
	stateUC := must(NewStateControllerAddressUnlockCondition(ed))
	governorUC := must(NewGovernorAddressUnlockCondition(ed))
	metadata := must(NewMetadataFeature([]byte{1}))
	tag := must(NewTagFeature([]byte{1}))

	_, err := NewAccountOutput(AccountOutputParams{UnlockConditions: []UnlockCondition{stateUC}})
	assert.ErrorIs(t, err, ErrMissingUnlockCondition)

	_, err = NewAccountOutput(AccountOutputParams{
		UnlockConditions:  []UnlockCondition{governorUC, stateUC},
		ImmutableFeatures: []Feature{tag},
	})
	assert.ErrorIs(t, err, ErrFeatureNotAllowed)

	_, err = NewAccountOutput(AccountOutputParams{
		UnlockConditions: []UnlockCondition{governorUC, stateUC},
		StateMetadata:    filled(MaxMetadataLength+1, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidMetadata)

	output, err := NewAccountOutput(AccountOutputParams{
		Amount:            10,
		UnlockConditions:  []UnlockCondition{governorUC, stateUC},
		ImmutableFeatures: []Feature{metadata},
	})
	assert.NoError(t, err)
	assert.Equal(t, ed, output.UnlockConditions().StateControllerAddress().Address())
	assert.Equal(t, ed, output.UnlockConditions().GovernorAddress().Address())
	assert.Nil(t, output.UnlockConditions().Address())
	assert.Equal(t, metadata, output.ImmutableFeatures().Metadata())
	assert.Nil(t, output.Features().Sender())

	var outputID OutputID
	outputID[0] = 1
	assert.Equal(t, AccountIDFromOutputID(outputID), output.ChainID(outputID))
}

func TestFoundryOutput(t *testing.T) {
	account := NewAccountAddress(hash(0x05))
	immutableUC := must(NewImmutableAccountAddressUnlockCondition(account))
	scheme := must(NewSimpleTokenScheme(uint256.NewInt(10), uint256.NewInt(0), uint256.NewInt(10)))

	foundry, err := NewFoundryOutput(1, 7, scheme, []UnlockCondition{immutableUC}, nil, nil)
	assert.NoError(t, err)
	id := foundry.FoundryID()
	assert.Equal(t, AddressTypeAccount, id[0])
	accountHash := hash(0x05)
	assert.Equal(t, accountHash[:], id[1:1+HashLength])
	assert.Equal(t, []byte{7, 0, 0, 0}, id[1+HashLength:1+HashLength+4])
	assert.Equal(t, TokenSchemeTypeSimple, id[FoundryIDLength-1])

	_, err = NewFoundryOutput(1, 7, nil, []UnlockCondition{immutableUC}, nil, nil)
	assert.Error(t, err)
	_, err = NewFoundryOutput(1, 7, scheme, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMissingUnlockCondition)
}

func TestDelegationOutput(t *testing.T) {
	ed := NewEd25519Address(hash(0x01))
	addressUC := must(NewAddressUnlockCondition(ed))
	_, err := NewDelegationOutput(DelegationOutputParams{UnlockConditions: []UnlockCondition{addressUC}})
	assert.ErrorIs(t, err, ErrMissingAddress)

	output, err := NewDelegationOutput(DelegationOutputParams{
		Amount:           5,
		ValidatorAddress: NewAccountAddress(hash(0x02)),
		UnlockConditions: []UnlockCondition{addressUC},
	})
	assert.NoError(t, err)
	assert.Nil(t, output.Features())
	assert.Equal(t, uint64(5), output.Amount())

	input := `{"type":4,"amount":"5","delegatedAmount":"0","delegationId":"` + testPubKeyHash + `",` +
		`"validatorAddress":` + edAddressJSON(testPubKeyHash) + `,"startEpoch":0,"endEpoch":0,` +
		`"unlockConditions":[{"type":0,"address":` + edAddressJSON(testPubKeyHash) + `}]}`
	_, err = DecodeJSON([]byte(input), FamilyOutput)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.ErrorIs(t, err, ErrNotAccountAddress)
}

func TestSimpleTokenScheme(t *testing.T) {
	cases := []struct {
		name                    string
		minted, melted, maximum uint64
		err                     bool
	}{
		{name: "fresh", minted: 0, melted: 0, maximum: 1},
		{name: "full supply", minted: 100, melted: 0, maximum: 100},
		{name: "melted", minted: 150, melted: 50, maximum: 100},
		{name: "zero maximum", minted: 0, melted: 0, maximum: 0, err: true},
		{name: "melted above minted", minted: 1, melted: 2, maximum: 10, err: true},
		{name: "above maximum", minted: 11, melted: 0, maximum: 10, err: true},
	}
	for _, testCase := range cases {
		scheme, err := NewSimpleTokenScheme(uint256.NewInt(testCase.minted), uint256.NewInt(testCase.melted), uint256.NewInt(testCase.maximum))
		if testCase.err {
			assert.ErrorIs(t, err, ErrInvalidTokenScheme, testCase.name)
			continue
		}
		assert.NoError(t, err, testCase.name)
		assert.Equal(t, testCase.minted-testCase.melted, scheme.CirculatingSupply().Uint64())
	}

	// u256 values beyond 64 bits survive the wire.
	maximum, err := uint256.FromHex("0xffffffffffffffffffffffffffffffffffffffff")
	assert.NoError(t, err)
	scheme := must(NewSimpleTokenScheme(maximum, uint256.NewInt(0), maximum))
	encoded, err := EncodeJSON(scheme)
	assert.NoError(t, err)
	assert.Equal(t, `{"type":0,"mintedTokens":"0xffffffffffffffffffffffffffffffffffffffff","meltedTokens":"0x0","maximumSupply":"0xffffffffffffffffffffffffffffffffffffffff"}`, string(encoded))
	decoded, err := DecodeJSON(encoded, FamilyTokenScheme)
	assert.NoError(t, err)
	assert.Equal(t, scheme, decoded)
}

func TestFeatureBounds(t *testing.T) {
	_, err := NewMetadataFeature(filled(MaxMetadataLength, 1))
	assert.NoError(t, err)
	_, err = NewMetadataFeature(filled(MaxMetadataLength+1, 1))
	assert.ErrorIs(t, err, ErrInvalidMetadata)
	_, err = NewTagFeature(filled(MaxTagLength+1, 1))
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = NewTagFeature(nil)
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = NewNativeTokenFeature(TokenID{}, uint256.NewInt(0))
	assert.ErrorIs(t, err, ErrZeroNativeTokenAmount)
	_, err = NewBlockIssuerFeature(0, nil)
	assert.ErrorIs(t, err, ErrInvalidBlockIssuerKeys)
	_, err = NewStakingFeature(1, 1, 10, 5)
	assert.Error(t, err)

	data := []byte{1, 2, 3}
	feature := must(NewMetadataFeature(data))
	data[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, feature.Data())
}

func TestUnlocks(t *testing.T) {
	_, err := NewReferenceUnlock(MaxInputsCount)
	assert.ErrorIs(t, err, ErrInvalidReference)
	_, err = NewRewardContextInput(MaxInputsCount)
	assert.Error(t, err)
	_, err = NewSignatureUnlock(nil)
	assert.Error(t, err)

	cases := []struct {
		input string
		tag   uint8
		ref   uint16
	}{
		{input: `{"type":1,"reference":3}`, tag: UnlockTypeReference, ref: 3},
		{input: `{"type":2,"reference":4}`, tag: UnlockTypeAccount, ref: 4},
		{input: `{"type":3,"reference":127}`, tag: UnlockTypeNft, ref: 127},
	}
	for _, testCase := range cases {
		unlock, err := DecodeJSON([]byte(testCase.input), FamilyUnlock)
		assert.NoError(t, err)
		assert.Equal(t, testCase.tag, unlock.Type())
		assert.Equal(t, testCase.ref, unlock.(ReferentialUnlock).Reference())
	}
}
