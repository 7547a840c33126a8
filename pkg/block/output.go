package block

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

const (
	OutputTypeBasic      uint8 = 0
	OutputTypeAccount    uint8 = 1
	OutputTypeFoundry    uint8 = 2
	OutputTypeNft        uint8 = 3
	OutputTypeDelegation uint8 = 4

	MaxUnlockConditionsCount = 7
	MaxFeaturesCount         = 8
)

var (
	// ErrUnlockConditionNotAllowed is returned for an unlock condition the output kind does
	// not accept.
	ErrUnlockConditionNotAllowed = errors.New("unlock condition not allowed")
	// ErrMissingUnlockCondition is returned when a mandatory unlock condition is absent.
	ErrMissingUnlockCondition = errors.New("missing unlock condition")
	// ErrFeatureNotAllowed is returned for a feature the output kind does not accept.
	ErrFeatureNotAllowed = errors.New("feature not allowed")
	// ErrTooManyItems is returned when a list exceeds its bound.
	ErrTooManyItems = errors.New("too many items")
)

// Output is a member of the Output family.
type Output interface {
	Variant
	isOutput()
	// Amount returns the base token amount held by the output.
	Amount() uint64
	UnlockConditions() UnlockConditions
	Features() Features
}

type listRules struct {
	unlockConditions  []uint8
	required          []uint8
	features          []uint8
	immutableFeatures []uint8
}

func (r listRules) check(uc UnlockConditions, feats, immutable Features) error {
	if len(uc) > MaxUnlockConditionsCount {
		return fmt.Errorf("%w: %d unlock conditions, at most %d", ErrTooManyItems, len(uc), MaxUnlockConditionsCount)
	}
	for i, cond := range uc {
		if !slices.Contains(r.unlockConditions, cond.Type()) {
			return fmt.Errorf("%w: unlock condition %d has type %d", ErrUnlockConditionNotAllowed, i, cond.Type())
		}
	}
	for _, tag := range r.required {
		if _, ok := uc.Get(tag); !ok {
			return fmt.Errorf("%w: type %d", ErrMissingUnlockCondition, tag)
		}
	}
	if err := checkFeatures("feature", r.features, feats); err != nil {
		return err
	}
	return checkFeatures("immutable feature", r.immutableFeatures, immutable)
}

func checkFeatures(label string, allowed []uint8, feats Features) error {
	if len(feats) > MaxFeaturesCount {
		return fmt.Errorf("%w: %d %ss, at most %d", ErrTooManyItems, len(feats), label, MaxFeaturesCount)
	}
	for i, feat := range feats {
		if !slices.Contains(allowed, feat.Type()) {
			return fmt.Errorf("%w: %s %d has type %d", ErrFeatureNotAllowed, label, i, feat.Type())
		}
	}
	return nil
}

var (
	basicRules = listRules{
		unlockConditions: []uint8{UnlockConditionTypeAddress, UnlockConditionTypeStorageDepositReturn, UnlockConditionTypeTimelock, UnlockConditionTypeExpiration},
		required:         []uint8{UnlockConditionTypeAddress},
		features:         []uint8{FeatureTypeSender, FeatureTypeMetadata, FeatureTypeTag, FeatureTypeNativeToken},
	}
	accountRules = listRules{
		unlockConditions:  []uint8{UnlockConditionTypeStateControllerAddress, UnlockConditionTypeGovernorAddress},
		required:          []uint8{UnlockConditionTypeStateControllerAddress, UnlockConditionTypeGovernorAddress},
		features:          []uint8{FeatureTypeSender, FeatureTypeMetadata, FeatureTypeBlockIssuer, FeatureTypeStaking},
		immutableFeatures: []uint8{FeatureTypeIssuer, FeatureTypeMetadata},
	}
	foundryRules = listRules{
		unlockConditions:  []uint8{UnlockConditionTypeImmutableAccountAddress},
		required:          []uint8{UnlockConditionTypeImmutableAccountAddress},
		features:          []uint8{FeatureTypeMetadata, FeatureTypeNativeToken},
		immutableFeatures: []uint8{FeatureTypeMetadata},
	}
	nftRules = listRules{
		unlockConditions:  []uint8{UnlockConditionTypeAddress, UnlockConditionTypeStorageDepositReturn, UnlockConditionTypeTimelock, UnlockConditionTypeExpiration},
		required:          []uint8{UnlockConditionTypeAddress},
		features:          []uint8{FeatureTypeSender, FeatureTypeMetadata, FeatureTypeTag},
		immutableFeatures: []uint8{FeatureTypeIssuer, FeatureTypeMetadata},
	}
	delegationRules = listRules{
		unlockConditions: []uint8{UnlockConditionTypeAddress},
		required:         []uint8{UnlockConditionTypeAddress},
	}
)

// BasicOutput holds base tokens, mana and native tokens owned by an address.
type BasicOutput struct {
	amount           uint64
	mana             uint64
	unlockConditions UnlockConditions
	features         Features
}

func NewBasicOutput(amount, mana uint64, unlockConditions []UnlockCondition, features []Feature) (*BasicOutput, error) {
	if err := basicRules.check(unlockConditions, features, nil); err != nil {
		return nil, fmt.Errorf("basic output: %w", err)
	}
	return &BasicOutput{
		amount:           amount,
		mana:             mana,
		unlockConditions: cloneList(unlockConditions),
		features:         cloneList(features),
	}, nil
}

func (*BasicOutput) Family() Family { return FamilyOutput }
func (*BasicOutput) Type() uint8 { return OutputTypeBasic }
func (*BasicOutput) isOutput() {}

func (o *BasicOutput) Amount() uint64 { return o.amount }
func (o *BasicOutput) Mana() uint64 { return o.mana }
func (o *BasicOutput) UnlockConditions() UnlockConditions { return cloneList(o.unlockConditions) }
func (o *BasicOutput) Features() Features { return cloneList(o.features) }

// AccountOutput is the state of an account chain.
type AccountOutput struct {
	amount            uint64
	mana              uint64
	accountID         AccountID
	stateIndex        uint32
	stateMetadata     []byte
	foundryCounter    uint32
	unlockConditions  UnlockConditions
	features          Features
	immutableFeatures Features
}

// AccountOutputParams carries the fields of an account output.
type AccountOutputParams struct {
	Amount            uint64
	Mana              uint64
	AccountID         AccountID
	StateIndex        uint32
	StateMetadata     []byte
	FoundryCounter    uint32
	UnlockConditions  []UnlockCondition
	Features          []Feature
	ImmutableFeatures []Feature
}

func NewAccountOutput(params AccountOutputParams) (*AccountOutput, error) {
	if err := accountRules.check(params.UnlockConditions, params.Features, params.ImmutableFeatures); err != nil {
		return nil, fmt.Errorf("account output: %w", err)
	}
	if len(params.StateMetadata) > MaxMetadataLength {
		return nil, fmt.Errorf("account output: %w: state metadata has %d bytes", ErrInvalidMetadata, len(params.StateMetadata))
	}
	return &AccountOutput{
		amount:            params.Amount,
		mana:              params.Mana,
		accountID:         params.AccountID,
		stateIndex:        params.StateIndex,
		stateMetadata:     cloneBytes(params.StateMetadata),
		foundryCounter:    params.FoundryCounter,
		unlockConditions:  cloneList(params.UnlockConditions),
		features:          cloneList(params.Features),
		immutableFeatures: cloneList(params.ImmutableFeatures),
	}, nil
}

func (*AccountOutput) Family() Family { return FamilyOutput }
func (*AccountOutput) Type() uint8 { return OutputTypeAccount }
func (*AccountOutput) isOutput() {}

func (o *AccountOutput) Amount() uint64 { return o.amount }
func (o *AccountOutput) Mana() uint64 { return o.mana }
func (o *AccountOutput) AccountID() AccountID { return o.accountID }
func (o *AccountOutput) StateIndex() uint32 { return o.stateIndex }
func (o *AccountOutput) StateMetadata() []byte { return cloneBytes(o.stateMetadata) }
func (o *AccountOutput) FoundryCounter() uint32 { return o.foundryCounter }
func (o *AccountOutput) UnlockConditions() UnlockConditions { return cloneList(o.unlockConditions) }
func (o *AccountOutput) Features() Features { return cloneList(o.features) }
func (o *AccountOutput) ImmutableFeatures() Features { return cloneList(o.immutableFeatures) }

// ChainID returns the account id, or the id derived from outputID for a freshly
// created account whose id is still zero.
func (o *AccountOutput) ChainID(outputID OutputID) AccountID {
	if o.accountID.IsNull() {
		return AccountIDFromOutputID(outputID)
	}
	return o.accountID
}

// FoundryOutput controls the supply of a native token.
type FoundryOutput struct {
	amount            uint64
	serialNumber      uint32
	tokenScheme       TokenScheme
	unlockConditions  UnlockConditions
	features          Features
	immutableFeatures Features
}

func NewFoundryOutput(amount uint64, serialNumber uint32, tokenScheme TokenScheme, unlockConditions []UnlockCondition, features, immutableFeatures []Feature) (*FoundryOutput, error) {
	if tokenScheme == nil {
		return nil, errors.New("foundry output: token scheme is required")
	}
	if err := foundryRules.check(unlockConditions, features, immutableFeatures); err != nil {
		return nil, fmt.Errorf("foundry output: %w", err)
	}
	return &FoundryOutput{
		amount:            amount,
		serialNumber:      serialNumber,
		tokenScheme:       tokenScheme,
		unlockConditions:  cloneList(unlockConditions),
		features:          cloneList(features),
		immutableFeatures: cloneList(immutableFeatures),
	}, nil
}

func (*FoundryOutput) Family() Family { return FamilyOutput }
func (*FoundryOutput) Type() uint8 { return OutputTypeFoundry }
func (*FoundryOutput) isOutput() {}

func (o *FoundryOutput) Amount() uint64 { return o.amount }
func (o *FoundryOutput) SerialNumber() uint32 { return o.serialNumber }
func (o *FoundryOutput) TokenScheme() TokenScheme { return o.tokenScheme }
func (o *FoundryOutput) UnlockConditions() UnlockConditions { return cloneList(o.unlockConditions) }
func (o *FoundryOutput) Features() Features { return cloneList(o.features) }
func (o *FoundryOutput) ImmutableFeatures() Features { return cloneList(o.immutableFeatures) }

// FoundryID returns the id of the foundry, which also identifies its native token.
func (o *FoundryOutput) FoundryID() TokenID {
	var id TokenID
	if cond, ok := o.unlockConditions.Get(UnlockConditionTypeImmutableAccountAddress); ok {
		copy(id[:], PackAddress(cond.(*ImmutableAccountAddressUnlockCondition).address))
	}
	binary.LittleEndian.PutUint32(id[1+HashLength:], o.serialNumber)
	id[FoundryIDLength-1] = o.tokenScheme.Type()
	return id
}

// NftOutput is the state of an NFT chain.
type NftOutput struct {
	amount            uint64
	mana              uint64
	nftID             NftID
	unlockConditions  UnlockConditions
	features          Features
	immutableFeatures Features
}

func NewNftOutput(amount, mana uint64, nftID NftID, unlockConditions []UnlockCondition, features, immutableFeatures []Feature) (*NftOutput, error) {
	if err := nftRules.check(unlockConditions, features, immutableFeatures); err != nil {
		return nil, fmt.Errorf("nft output: %w", err)
	}
	return &NftOutput{
		amount:            amount,
		mana:              mana,
		nftID:             nftID,
		unlockConditions:  cloneList(unlockConditions),
		features:          cloneList(features),
		immutableFeatures: cloneList(immutableFeatures),
	}, nil
}

func (*NftOutput) Family() Family { return FamilyOutput }
func (*NftOutput) Type() uint8 { return OutputTypeNft }
func (*NftOutput) isOutput() {}

func (o *NftOutput) Amount() uint64 { return o.amount }
func (o *NftOutput) Mana() uint64 { return o.mana }
func (o *NftOutput) NftID() NftID { return o.nftID }
func (o *NftOutput) UnlockConditions() UnlockConditions { return cloneList(o.unlockConditions) }
func (o *NftOutput) Features() Features { return cloneList(o.features) }
func (o *NftOutput) ImmutableFeatures() Features { return cloneList(o.immutableFeatures) }

// DelegationOutput delegates base tokens to a validator.
type DelegationOutput struct {
	amount           uint64
	delegatedAmount  uint64
	delegationID     DelegationID
	validatorAddress *AccountAddress
	startEpoch       uint32
	endEpoch         uint32
	unlockConditions UnlockConditions
}

// DelegationOutputParams carries the fields of a delegation output.
type DelegationOutputParams struct {
	Amount           uint64
	DelegatedAmount  uint64
	DelegationID     DelegationID
	ValidatorAddress *AccountAddress
	StartEpoch       uint32
	EndEpoch         uint32
	UnlockConditions []UnlockCondition
}

func NewDelegationOutput(params DelegationOutputParams) (*DelegationOutput, error) {
	if params.ValidatorAddress == nil {
		return nil, fmt.Errorf("delegation output: validator %w", ErrMissingAddress)
	}
	if err := delegationRules.check(params.UnlockConditions, nil, nil); err != nil {
		return nil, fmt.Errorf("delegation output: %w", err)
	}
	return &DelegationOutput{
		amount:           params.Amount,
		delegatedAmount:  params.DelegatedAmount,
		delegationID:     params.DelegationID,
		validatorAddress: params.ValidatorAddress,
		startEpoch:       params.StartEpoch,
		endEpoch:         params.EndEpoch,
		unlockConditions: cloneList(params.UnlockConditions),
	}, nil
}

func (*DelegationOutput) Family() Family { return FamilyOutput }
func (*DelegationOutput) Type() uint8 { return OutputTypeDelegation }
func (*DelegationOutput) isOutput() {}

func (o *DelegationOutput) Amount() uint64 { return o.amount }
func (o *DelegationOutput) DelegatedAmount() uint64 { return o.delegatedAmount }
func (o *DelegationOutput) DelegationID() DelegationID { return o.delegationID }
func (o *DelegationOutput) ValidatorAddress() *AccountAddress { return o.validatorAddress }
func (o *DelegationOutput) StartEpoch() uint32 { return o.startEpoch }
func (o *DelegationOutput) EndEpoch() uint32 { return o.endEpoch }
func (o *DelegationOutput) UnlockConditions() UnlockConditions { return cloneList(o.unlockConditions) }

// Features returns nil, delegation outputs carry no features.
func (o *DelegationOutput) Features() Features { return nil }

func cloneList[S ~[]E, E any](list S) S {
	if len(list) == 0 {
		return nil
	}
	return append(S(nil), list...)
}

func outputLists(v Values) (UnlockConditions, Features, Features, error) {
	uc, err := listAs[UnlockCondition](v, "unlockConditions")
	if err != nil {
		return nil, nil, nil, err
	}
	feats, err := listAs[Feature](v, "features")
	if err != nil {
		return nil, nil, nil, err
	}
	immutable, err := listAs[Feature](v, "immutableFeatures")
	if err != nil {
		return nil, nil, nil, err
	}
	return uc, feats, immutable, nil
}

func splitLists(vals Values, uc UnlockConditions, feats, immutable Features) Values {
	vals["unlockConditions"] = variants(uc)
	if len(feats) > 0 {
		vals["features"] = variants(feats)
	}
	if len(immutable) > 0 {
		vals["immutableFeatures"] = variants(immutable)
	}
	return vals
}

var outputShapes = []*Shape{
	{
		Family: FamilyOutput,
		Tag:    OutputTypeBasic,
		Name:   "BasicOutput",
		Fields: []Field{
			amountField("amount"),
			amountField("mana"),
			listField("unlockConditions", FamilyUnlockCondition),
			listField("features", FamilyFeature).optional(),
		},
		Build: func(v Values) (Variant, error) {
			uc, feats, _, err := outputLists(v)
			if err != nil {
				return nil, err
			}
			return NewBasicOutput(v.Uint64("amount"), v.Uint64("mana"), uc, feats)
		},
		Split: func(v Variant) Values {
			o := v.(*BasicOutput)
			return splitLists(Values{"amount": o.amount, "mana": o.mana}, o.unlockConditions, o.features, nil)
		},
	},
	{
		Family: FamilyOutput,
		Tag:    OutputTypeAccount,
		Name:   "AccountOutput",
		Fields: []Field{
			amountField("amount"),
			amountField("mana"),
			hexField("accountId", HashLength),
			uintField("stateIndex", 32),
			bytesField("stateMetadata").optional(),
			uintField("foundryCounter", 32),
			listField("unlockConditions", FamilyUnlockCondition),
			listField("features", FamilyFeature).optional(),
			listField("immutableFeatures", FamilyFeature).optional(),
		},
		Build: func(v Values) (Variant, error) {
			uc, feats, immutable, err := outputLists(v)
			if err != nil {
				return nil, err
			}
			params := AccountOutputParams{
				Amount:            v.Uint64("amount"),
				Mana:              v.Uint64("mana"),
				StateIndex:        v.Uint32("stateIndex"),
				StateMetadata:     v.Bytes("stateMetadata"),
				FoundryCounter:    v.Uint32("foundryCounter"),
				UnlockConditions:  uc,
				Features:          feats,
				ImmutableFeatures: immutable,
			}
			copy(params.AccountID[:], v.Bytes("accountId"))
			return NewAccountOutput(params)
		},
		Split: func(v Variant) Values {
			o := v.(*AccountOutput)
			vals := Values{
				"amount":         o.amount,
				"mana":           o.mana,
				"accountId":      o.accountID[:],
				"stateIndex":     uint64(o.stateIndex),
				"foundryCounter": uint64(o.foundryCounter),
			}
			if len(o.stateMetadata) > 0 {
				vals["stateMetadata"] = o.StateMetadata()
			}
			return splitLists(vals, o.unlockConditions, o.features, o.immutableFeatures)
		},
	},
	{
		Family: FamilyOutput,
		Tag:    OutputTypeFoundry,
		Name:   "FoundryOutput",
		Fields: []Field{
			amountField("amount"),
			uintField("serialNumber", 32),
			variantField("tokenScheme", FamilyTokenScheme),
			listField("unlockConditions", FamilyUnlockCondition),
			listField("features", FamilyFeature).optional(),
			listField("immutableFeatures", FamilyFeature).optional(),
		},
		Build: func(v Values) (Variant, error) {
			scheme, err := variantAs[TokenScheme](v, "tokenScheme")
			if err != nil {
				return nil, err
			}
			uc, feats, immutable, err := outputLists(v)
			if err != nil {
				return nil, err
			}
			return NewFoundryOutput(v.Uint64("amount"), v.Uint32("serialNumber"), scheme, uc, feats, immutable)
		},
		Split: func(v Variant) Values {
			o := v.(*FoundryOutput)
			vals := Values{
				"amount":       o.amount,
				"serialNumber": uint64(o.serialNumber),
				"tokenScheme":  o.tokenScheme,
			}
			return splitLists(vals, o.unlockConditions, o.features, o.immutableFeatures)
		},
	},
	{
		Family: FamilyOutput,
		Tag:    OutputTypeNft,
		Name:   "NftOutput",
		Fields: []Field{
			amountField("amount"),
			amountField("mana"),
			hexField("nftId", HashLength),
			listField("unlockConditions", FamilyUnlockCondition),
			listField("features", FamilyFeature).optional(),
			listField("immutableFeatures", FamilyFeature).optional(),
		},
		Build: func(v Values) (Variant, error) {
			uc, feats, immutable, err := outputLists(v)
			if err != nil {
				return nil, err
			}
			var id NftID
			copy(id[:], v.Bytes("nftId"))
			return NewNftOutput(v.Uint64("amount"), v.Uint64("mana"), id, uc, feats, immutable)
		},
		Split: func(v Variant) Values {
			o := v.(*NftOutput)
			vals := Values{"amount": o.amount, "mana": o.mana, "nftId": o.nftID[:]}
			return splitLists(vals, o.unlockConditions, o.features, o.immutableFeatures)
		},
	},
	{
		Family: FamilyOutput,
		Tag:    OutputTypeDelegation,
		Name:   "DelegationOutput",
		Fields: []Field{
			amountField("amount"),
			amountField("delegatedAmount"),
			hexField("delegationId", HashLength),
			variantField("validatorAddress", FamilyAddress),
			uintField("startEpoch", 32),
			uintField("endEpoch", 32),
			listField("unlockConditions", FamilyUnlockCondition),
		},
		Build: func(v Values) (Variant, error) {
			validator, ok := v.Variant("validatorAddress").(*AccountAddress)
			if !ok {
				return nil, fmt.Errorf("validator %w: received %T", ErrNotAccountAddress, v.Variant("validatorAddress"))
			}
			uc, _, _, err := outputLists(v)
			if err != nil {
				return nil, err
			}
			params := DelegationOutputParams{
				Amount:           v.Uint64("amount"),
				DelegatedAmount:  v.Uint64("delegatedAmount"),
				ValidatorAddress: validator,
				StartEpoch:       v.Uint32("startEpoch"),
				EndEpoch:         v.Uint32("endEpoch"),
				UnlockConditions: uc,
			}
			copy(params.DelegationID[:], v.Bytes("delegationId"))
			return NewDelegationOutput(params)
		},
		Split: func(v Variant) Values {
			o := v.(*DelegationOutput)
			vals := Values{
				"amount":           o.amount,
				"delegatedAmount":  o.delegatedAmount,
				"delegationId":     o.delegationID[:],
				"validatorAddress": o.validatorAddress,
				"startEpoch":       uint64(o.startEpoch),
				"endEpoch":         uint64(o.endEpoch),
			}
			return splitLists(vals, o.unlockConditions, nil, nil)
		},
	},
}
