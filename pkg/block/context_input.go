package block

import "fmt"

const (
	ContextInputTypeCommitment          uint8 = 0
	ContextInputTypeBlockIssuanceCredit uint8 = 1
	ContextInputTypeReward              uint8 = 2
)

// ContextInput is a member of the ContextInput family.
type ContextInput interface {
	Variant
	isContextInput()
}

// CommitmentContextInput references a slot commitment.
type CommitmentContextInput struct {
	commitmentID SlotCommitmentID
}

func NewCommitmentContextInput(commitmentID SlotCommitmentID) *CommitmentContextInput {
	return &CommitmentContextInput{commitmentID: commitmentID}
}

func (*CommitmentContextInput) Family() Family { return FamilyContextInput }
func (*CommitmentContextInput) Type() uint8 { return ContextInputTypeCommitment }
func (*CommitmentContextInput) isContextInput() {}

func (c *CommitmentContextInput) CommitmentID() SlotCommitmentID { return c.commitmentID }

// BlockIssuanceCreditContextInput references the block issuance credit of an account.
type BlockIssuanceCreditContextInput struct {
	accountID AccountID
}

func NewBlockIssuanceCreditContextInput(accountID AccountID) *BlockIssuanceCreditContextInput {
	return &BlockIssuanceCreditContextInput{accountID: accountID}
}

func (*BlockIssuanceCreditContextInput) Family() Family { return FamilyContextInput }
func (*BlockIssuanceCreditContextInput) Type() uint8 { return ContextInputTypeBlockIssuanceCredit }
func (*BlockIssuanceCreditContextInput) isContextInput() {}

func (c *BlockIssuanceCreditContextInput) AccountID() AccountID { return c.accountID }

// RewardContextInput references the input whose rewards are claimed.
type RewardContextInput struct {
	index uint16
}

func NewRewardContextInput(index uint16) (*RewardContextInput, error) {
	if index >= MaxInputsCount {
		return nil, fmt.Errorf("reward input index %d must be below %d", index, MaxInputsCount)
	}
	return &RewardContextInput{index: index}, nil
}

func (*RewardContextInput) Family() Family { return FamilyContextInput }
func (*RewardContextInput) Type() uint8 { return ContextInputTypeReward }
func (*RewardContextInput) isContextInput() {}

func (c *RewardContextInput) Index() uint16 { return c.index }

var contextInputShapes = []*Shape{
	{
		Family: FamilyContextInput,
		Tag:    ContextInputTypeCommitment,
		Name:   "CommitmentContextInput",
		Fields: []Field{hexField("commitmentId", SlotIdentifierLength)},
		Build: func(v Values) (Variant, error) {
			var id SlotCommitmentID
			copy(id[:], v.Bytes("commitmentId"))
			return NewCommitmentContextInput(id), nil
		},
		Split: func(v Variant) Values {
			id := v.(*CommitmentContextInput).commitmentID
			return Values{"commitmentId": id[:]}
		},
	},
	{
		Family: FamilyContextInput,
		Tag:    ContextInputTypeBlockIssuanceCredit,
		Name:   "BlockIssuanceCreditContextInput",
		Fields: []Field{hexField("accountId", HashLength)},
		Build: func(v Values) (Variant, error) {
			var id AccountID
			copy(id[:], v.Bytes("accountId"))
			return NewBlockIssuanceCreditContextInput(id), nil
		},
		Split: func(v Variant) Values {
			id := v.(*BlockIssuanceCreditContextInput).accountID
			return Values{"accountId": id[:]}
		},
	},
	{
		Family: FamilyContextInput,
		Tag:    ContextInputTypeReward,
		Name:   "RewardContextInput",
		Fields: []Field{uintField("index", 16)},
		Build: func(v Values) (Variant, error) {
			return NewRewardContextInput(v.Uint16("index"))
		},
		Split: func(v Variant) Values {
			return Values{"index": uint64(v.(*RewardContextInput).index)}
		},
	},
}
