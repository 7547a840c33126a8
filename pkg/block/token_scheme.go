package block

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	TokenSchemeTypeSimple uint8 = 0
)

// ErrInvalidTokenScheme is returned for supply values which contradict each other.
var ErrInvalidTokenScheme = errors.New("invalid token scheme")

// TokenScheme is a member of the TokenScheme family.
type TokenScheme interface {
	Variant
	isTokenScheme()
}

// SimpleTokenScheme tracks minted and melted tokens against a maximum supply.
type SimpleTokenScheme struct {
	mintedTokens  uint256.Int
	meltedTokens  uint256.Int
	maximumSupply uint256.Int
}

// NewSimpleTokenScheme requires a non zero maximum supply, melted tokens not exceeding
// minted tokens, and a circulating supply within the maximum.
func NewSimpleTokenScheme(minted, melted, maximum *uint256.Int) (*SimpleTokenScheme, error) {
	if minted == nil || melted == nil || maximum == nil {
		return nil, fmt.Errorf("%w: supply values are required", ErrInvalidTokenScheme)
	}
	if maximum.IsZero() {
		return nil, fmt.Errorf("%w: maximum supply must be greater than zero", ErrInvalidTokenScheme)
	}
	if melted.Gt(minted) {
		return nil, fmt.Errorf("%w: melted tokens %s exceed minted tokens %s", ErrInvalidTokenScheme, melted.Dec(), minted.Dec())
	}
	circulating := new(uint256.Int).Sub(minted, melted)
	if circulating.Gt(maximum) {
		return nil, fmt.Errorf("%w: circulating supply %s exceeds maximum supply %s", ErrInvalidTokenScheme, circulating.Dec(), maximum.Dec())
	}
	return &SimpleTokenScheme{
		mintedTokens:  *minted,
		meltedTokens:  *melted,
		maximumSupply: *maximum,
	}, nil
}

func (*SimpleTokenScheme) Family() Family { return FamilyTokenScheme }
func (*SimpleTokenScheme) Type() uint8 { return TokenSchemeTypeSimple }
func (*SimpleTokenScheme) isTokenScheme() {}

func (s *SimpleTokenScheme) MintedTokens() *uint256.Int { return s.mintedTokens.Clone() }
func (s *SimpleTokenScheme) MeltedTokens() *uint256.Int { return s.meltedTokens.Clone() }
func (s *SimpleTokenScheme) MaximumSupply() *uint256.Int { return s.maximumSupply.Clone() }

// CirculatingSupply returns minted minus melted tokens.
func (s *SimpleTokenScheme) CirculatingSupply() *uint256.Int {
	return new(uint256.Int).Sub(&s.mintedTokens, &s.meltedTokens)
}

var tokenSchemeShapes = []*Shape{
	{
		Family: FamilyTokenScheme,
		Tag:    TokenSchemeTypeSimple,
		Name:   "SimpleTokenScheme",
		Fields: []Field{
			u256Field("mintedTokens"),
			u256Field("meltedTokens"),
			u256Field("maximumSupply"),
		},
		Build: func(v Values) (Variant, error) {
			minted, melted, maximum := v.U256("mintedTokens"), v.U256("meltedTokens"), v.U256("maximumSupply")
			return NewSimpleTokenScheme(&minted, &melted, &maximum)
		},
		Split: func(v Variant) Values {
			s := v.(*SimpleTokenScheme)
			return Values{
				"mintedTokens":  s.mintedTokens,
				"meltedTokens":  s.meltedTokens,
				"maximumSupply": s.maximumSupply,
			}
		},
	},
}
