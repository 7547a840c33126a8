package block

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	FeatureTypeSender      uint8 = 0
	FeatureTypeIssuer      uint8 = 1
	FeatureTypeMetadata    uint8 = 2
	FeatureTypeTag         uint8 = 3
	FeatureTypeNativeToken uint8 = 4
	FeatureTypeBlockIssuer uint8 = 5
	FeatureTypeStaking     uint8 = 6

	BlockIssuerKeyTypeEd25519 uint8 = 0

	MaxMetadataLength = 8192
	MaxTagLength      = 64

	MinBlockIssuerKeys = 1
	MaxBlockIssuerKeys = 128
)

var (
	// ErrInvalidMetadata is returned for metadata outside 1..MaxMetadataLength bytes.
	ErrInvalidMetadata = errors.New("invalid metadata length")
	// ErrInvalidTag is returned for a tag outside 1..MaxTagLength bytes.
	ErrInvalidTag = errors.New("invalid tag length")
	// ErrZeroNativeTokenAmount is returned for a native token feature without tokens.
	ErrZeroNativeTokenAmount = errors.New("native token amount must be greater than zero")
	// ErrInvalidBlockIssuerKeys is returned when the key count is out of bounds.
	ErrInvalidBlockIssuerKeys = errors.New("invalid number of block issuer keys")
)

// Feature is a member of the Feature family.
type Feature interface {
	Variant
	isFeature()
}

// SenderFeature identifies the sender of an output.
type SenderFeature struct {
	address Address
}

func NewSenderFeature(address Address) (*SenderFeature, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &SenderFeature{address: address}, nil
}

func (*SenderFeature) Family() Family { return FamilyFeature }
func (*SenderFeature) Type() uint8 { return FeatureTypeSender }
func (*SenderFeature) isFeature() {}

func (f *SenderFeature) Address() Address { return f.address }

// IssuerFeature identifies the issuer of a chain output.
type IssuerFeature struct {
	address Address
}

func NewIssuerFeature(address Address) (*IssuerFeature, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &IssuerFeature{address: address}, nil
}

func (*IssuerFeature) Family() Family { return FamilyFeature }
func (*IssuerFeature) Type() uint8 { return FeatureTypeIssuer }
func (*IssuerFeature) isFeature() {}

func (f *IssuerFeature) Address() Address { return f.address }

// MetadataFeature carries arbitrary binary data.
type MetadataFeature struct {
	data []byte
}

func NewMetadataFeature(data []byte) (*MetadataFeature, error) {
	if len(data) == 0 || len(data) > MaxMetadataLength {
		return nil, fmt.Errorf("%w: %d bytes, must be 1..%d", ErrInvalidMetadata, len(data), MaxMetadataLength)
	}
	return &MetadataFeature{data: cloneBytes(data)}, nil
}

func (*MetadataFeature) Family() Family { return FamilyFeature }
func (*MetadataFeature) Type() uint8 { return FeatureTypeMetadata }
func (*MetadataFeature) isFeature() {}

func (f *MetadataFeature) Data() []byte { return cloneBytes(f.data) }

// TagFeature carries an indexation tag.
type TagFeature struct {
	tag []byte
}

func NewTagFeature(tag []byte) (*TagFeature, error) {
	if len(tag) == 0 || len(tag) > MaxTagLength {
		return nil, fmt.Errorf("%w: %d bytes, must be 1..%d", ErrInvalidTag, len(tag), MaxTagLength)
	}
	return &TagFeature{tag: cloneBytes(tag)}, nil
}

func (*TagFeature) Family() Family { return FamilyFeature }
func (*TagFeature) Type() uint8 { return FeatureTypeTag }
func (*TagFeature) isFeature() {}

func (f *TagFeature) Tag() []byte { return cloneBytes(f.tag) }

// NativeTokenFeature holds an amount of a native token.
type NativeTokenFeature struct {
	id     TokenID
	amount uint256.Int
}

func NewNativeTokenFeature(id TokenID, amount *uint256.Int) (*NativeTokenFeature, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrZeroNativeTokenAmount
	}
	return &NativeTokenFeature{id: id, amount: *amount}, nil
}

func (*NativeTokenFeature) Family() Family { return FamilyFeature }
func (*NativeTokenFeature) Type() uint8 { return FeatureTypeNativeToken }
func (*NativeTokenFeature) isFeature() {}

func (f *NativeTokenFeature) ID() TokenID { return f.id }

// Amount returns a copy of the token amount.
func (f *NativeTokenFeature) Amount() *uint256.Int { return f.amount.Clone() }

// BlockIssuerFeature allows an account to issue blocks with its keys.
type BlockIssuerFeature struct {
	expirySlot      uint32
	blockIssuerKeys []BlockIssuerKey
}

func NewBlockIssuerFeature(expirySlot uint32, keys []BlockIssuerKey) (*BlockIssuerFeature, error) {
	if len(keys) < MinBlockIssuerKeys || len(keys) > MaxBlockIssuerKeys {
		return nil, fmt.Errorf("%w: %d, must be %d..%d", ErrInvalidBlockIssuerKeys, len(keys), MinBlockIssuerKeys, MaxBlockIssuerKeys)
	}
	return &BlockIssuerFeature{
		expirySlot:      expirySlot,
		blockIssuerKeys: append([]BlockIssuerKey(nil), keys...),
	}, nil
}

func (*BlockIssuerFeature) Family() Family { return FamilyFeature }
func (*BlockIssuerFeature) Type() uint8 { return FeatureTypeBlockIssuer }
func (*BlockIssuerFeature) isFeature() {}

func (f *BlockIssuerFeature) ExpirySlot() uint32 { return f.expirySlot }
func (f *BlockIssuerFeature) BlockIssuerKeys() []BlockIssuerKey {
	return append([]BlockIssuerKey(nil), f.blockIssuerKeys...)
}

// StakingFeature locks funds of an account for validation.
type StakingFeature struct {
	stakedAmount uint64
	fixedCost    uint64
	startEpoch   uint32
	endEpoch     uint32
}

func NewStakingFeature(stakedAmount, fixedCost uint64, startEpoch, endEpoch uint32) (*StakingFeature, error) {
	if endEpoch != 0 && endEpoch < startEpoch {
		return nil, fmt.Errorf("staking end epoch %d precedes start epoch %d", endEpoch, startEpoch)
	}
	return &StakingFeature{
		stakedAmount: stakedAmount,
		fixedCost:    fixedCost,
		startEpoch:   startEpoch,
		endEpoch:     endEpoch,
	}, nil
}

func (*StakingFeature) Family() Family { return FamilyFeature }
func (*StakingFeature) Type() uint8 { return FeatureTypeStaking }
func (*StakingFeature) isFeature() {}

func (f *StakingFeature) StakedAmount() uint64 { return f.stakedAmount }
func (f *StakingFeature) FixedCost() uint64 { return f.fixedCost }
func (f *StakingFeature) StartEpoch() uint32 { return f.startEpoch }
func (f *StakingFeature) EndEpoch() uint32 { return f.endEpoch }

// BlockIssuerKey is a member of the BlockIssuerKey family.
type BlockIssuerKey interface {
	Variant
	isBlockIssuerKey()
}

// Ed25519BlockIssuerKey is an Ed25519 public key allowed to issue blocks.
type Ed25519BlockIssuerKey struct {
	publicKey [Ed25519PublicKeyLength]byte
}

func NewEd25519BlockIssuerKey(publicKey []byte) (*Ed25519BlockIssuerKey, error) {
	if len(publicKey) != Ed25519PublicKeyLength {
		return nil, fmt.Errorf("block issuer key must be %d bytes but received %d", Ed25519PublicKeyLength, len(publicKey))
	}
	key := &Ed25519BlockIssuerKey{}
	copy(key.publicKey[:], publicKey)
	return key, nil
}

func (*Ed25519BlockIssuerKey) Family() Family { return FamilyBlockIssuerKey }
func (*Ed25519BlockIssuerKey) Type() uint8 { return BlockIssuerKeyTypeEd25519 }
func (*Ed25519BlockIssuerKey) isBlockIssuerKey() {}

func (k *Ed25519BlockIssuerKey) PublicKey() []byte { return cloneBytes(k.publicKey[:]) }

// Features is an ordered list of features.
type Features []Feature

// Get returns the first feature with the given type.
func (f Features) Get(tag uint8) (Feature, bool) {
	for _, feat := range f {
		if feat.Type() == tag {
			return feat, true
		}
	}
	return nil, false
}

func (f Features) Sender() *SenderFeature {
	feat, _ := f.Get(FeatureTypeSender)
	val, _ := feat.(*SenderFeature)
	return val
}

func (f Features) Issuer() *IssuerFeature {
	feat, _ := f.Get(FeatureTypeIssuer)
	val, _ := feat.(*IssuerFeature)
	return val
}

func (f Features) Metadata() *MetadataFeature {
	feat, _ := f.Get(FeatureTypeMetadata)
	val, _ := feat.(*MetadataFeature)
	return val
}

func (f Features) Tag() *TagFeature {
	feat, _ := f.Get(FeatureTypeTag)
	val, _ := feat.(*TagFeature)
	return val
}

func (f Features) NativeToken() *NativeTokenFeature {
	feat, _ := f.Get(FeatureTypeNativeToken)
	val, _ := feat.(*NativeTokenFeature)
	return val
}

// Types returns the discriminators in order.
func (f Features) Types() []uint8 {
	types := make([]uint8, len(f))
	for i, feat := range f {
		types[i] = feat.Type()
	}
	return types
}

func addressFeatureShape(tag uint8, name string, build func(Address) (Feature, error), address func(Variant) Address) *Shape {
	return &Shape{
		Family: FamilyFeature,
		Tag:    tag,
		Name:   name,
		Fields: []Field{variantField("address", FamilyAddress)},
		Build: func(v Values) (Variant, error) {
			addr, err := variantAs[Address](v, "address")
			if err != nil {
				return nil, err
			}
			return build(addr)
		},
		Split: func(v Variant) Values {
			return Values{"address": address(v)}
		},
	}
}

var featureShapes = []*Shape{
	addressFeatureShape(FeatureTypeSender, "SenderFeature",
		func(a Address) (Feature, error) { return NewSenderFeature(a) },
		func(v Variant) Address { return v.(*SenderFeature).address },
	),
	addressFeatureShape(FeatureTypeIssuer, "IssuerFeature",
		func(a Address) (Feature, error) { return NewIssuerFeature(a) },
		func(v Variant) Address { return v.(*IssuerFeature).address },
	),
	{
		Family: FamilyFeature,
		Tag:    FeatureTypeMetadata,
		Name:   "MetadataFeature",
		Fields: []Field{bytesField("data")},
		Build: func(v Values) (Variant, error) {
			return NewMetadataFeature(v.Bytes("data"))
		},
		Split: func(v Variant) Values {
			return Values{"data": v.(*MetadataFeature).Data()}
		},
	},
	{
		Family: FamilyFeature,
		Tag:    FeatureTypeTag,
		Name:   "TagFeature",
		Fields: []Field{bytesField("tag")},
		Build: func(v Values) (Variant, error) {
			return NewTagFeature(v.Bytes("tag"))
		},
		Split: func(v Variant) Values {
			return Values{"tag": v.(*TagFeature).Tag()}
		},
	},
	{
		Family: FamilyFeature,
		Tag:    FeatureTypeNativeToken,
		Name:   "NativeTokenFeature",
		Fields: []Field{
			hexField("id", FoundryIDLength),
			u256Field("amount"),
		},
		Build: func(v Values) (Variant, error) {
			var id TokenID
			copy(id[:], v.Bytes("id"))
			amount := v.U256("amount")
			return NewNativeTokenFeature(id, &amount)
		},
		Split: func(v Variant) Values {
			feat := v.(*NativeTokenFeature)
			return Values{"id": feat.id[:], "amount": feat.amount}
		},
	},
	{
		Family: FamilyFeature,
		Tag:    FeatureTypeBlockIssuer,
		Name:   "BlockIssuerFeature",
		Fields: []Field{
			uintField("expirySlot", 32),
			listField("blockIssuerKeys", FamilyBlockIssuerKey),
		},
		Build: func(v Values) (Variant, error) {
			keys, err := listAs[BlockIssuerKey](v, "blockIssuerKeys")
			if err != nil {
				return nil, err
			}
			return NewBlockIssuerFeature(v.Uint32("expirySlot"), keys)
		},
		Split: func(v Variant) Values {
			feat := v.(*BlockIssuerFeature)
			return Values{
				"expirySlot":      uint64(feat.expirySlot),
				"blockIssuerKeys": variants(feat.blockIssuerKeys),
			}
		},
	},
	{
		Family: FamilyFeature,
		Tag:    FeatureTypeStaking,
		Name:   "StakingFeature",
		Fields: []Field{
			amountField("stakedAmount"),
			amountField("fixedCost"),
			uintField("startEpoch", 32),
			uintField("endEpoch", 32),
		},
		Build: func(v Values) (Variant, error) {
			return NewStakingFeature(v.Uint64("stakedAmount"), v.Uint64("fixedCost"), v.Uint32("startEpoch"), v.Uint32("endEpoch"))
		},
		Split: func(v Variant) Values {
			feat := v.(*StakingFeature)
			return Values{
				"stakedAmount": feat.stakedAmount,
				"fixedCost":    feat.fixedCost,
				"startEpoch":   uint64(feat.startEpoch),
				"endEpoch":     uint64(feat.endEpoch),
			}
		},
	},
}

var blockIssuerKeyShapes = []*Shape{
	{
		Family: FamilyBlockIssuerKey,
		Tag:    BlockIssuerKeyTypeEd25519,
		Name:   "Ed25519BlockIssuerKey",
		Fields: []Field{hexField("publicKey", Ed25519PublicKeyLength)},
		Build: func(v Values) (Variant, error) {
			return NewEd25519BlockIssuerKey(v.Bytes("publicKey"))
		},
		Split: func(v Variant) Values {
			return Values{"publicKey": v.(*Ed25519BlockIssuerKey).PublicKey()}
		},
	},
}
