package block

import (
	"errors"
	"fmt"
)

const (
	UnlockConditionTypeAddress                 uint8 = 0
	UnlockConditionTypeStorageDepositReturn    uint8 = 1
	UnlockConditionTypeTimelock                uint8 = 2
	UnlockConditionTypeExpiration              uint8 = 3
	UnlockConditionTypeStateControllerAddress  uint8 = 4
	UnlockConditionTypeGovernorAddress         uint8 = 5
	UnlockConditionTypeImmutableAccountAddress uint8 = 6
)

var (
	// ErrMissingAddress is returned when an address carrying variant receives none.
	ErrMissingAddress = errors.New("address is required")
	// ErrNotAccountAddress is returned where only an account address is allowed.
	ErrNotAccountAddress = errors.New("address must be an account address")
)

// UnlockCondition is a member of the UnlockCondition family.
type UnlockCondition interface {
	Variant
	isUnlockCondition()
}

// AddressUnlockCondition defines the address which can unlock an output.
type AddressUnlockCondition struct {
	address Address
}

func NewAddressUnlockCondition(address Address) (*AddressUnlockCondition, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &AddressUnlockCondition{address: address}, nil
}

func (*AddressUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*AddressUnlockCondition) Type() uint8 { return UnlockConditionTypeAddress }
func (*AddressUnlockCondition) isUnlockCondition() {}

func (c *AddressUnlockCondition) Address() Address { return c.address }

// StorageDepositReturnUnlockCondition requires the consuming transaction to return an
// amount to an address.
type StorageDepositReturnUnlockCondition struct {
	returnAddress Address
	amount        uint64
}

func NewStorageDepositReturnUnlockCondition(returnAddress Address, amount uint64) (*StorageDepositReturnUnlockCondition, error) {
	if returnAddress == nil {
		return nil, ErrMissingAddress
	}
	return &StorageDepositReturnUnlockCondition{returnAddress: returnAddress, amount: amount}, nil
}

func (*StorageDepositReturnUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*StorageDepositReturnUnlockCondition) Type() uint8 {
	return UnlockConditionTypeStorageDepositReturn
}
func (*StorageDepositReturnUnlockCondition) isUnlockCondition() {}

func (c *StorageDepositReturnUnlockCondition) ReturnAddress() Address { return c.returnAddress }
func (c *StorageDepositReturnUnlockCondition) Amount() uint64 { return c.amount }

// TimelockUnlockCondition locks an output until a slot.
type TimelockUnlockCondition struct {
	slotIndex uint32
}

func NewTimelockUnlockCondition(slotIndex uint32) (*TimelockUnlockCondition, error) {
	return &TimelockUnlockCondition{slotIndex: slotIndex}, nil
}

func (*TimelockUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*TimelockUnlockCondition) Type() uint8 { return UnlockConditionTypeTimelock }
func (*TimelockUnlockCondition) isUnlockCondition() {}

func (c *TimelockUnlockCondition) SlotIndex() uint32 { return c.slotIndex }

// ExpirationUnlockCondition hands an output to the return address after a slot.
type ExpirationUnlockCondition struct {
	returnAddress Address
	slotIndex     uint32
}

func NewExpirationUnlockCondition(returnAddress Address, slotIndex uint32) (*ExpirationUnlockCondition, error) {
	if returnAddress == nil {
		return nil, ErrMissingAddress
	}
	return &ExpirationUnlockCondition{returnAddress: returnAddress, slotIndex: slotIndex}, nil
}

func (*ExpirationUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*ExpirationUnlockCondition) Type() uint8 { return UnlockConditionTypeExpiration }
func (*ExpirationUnlockCondition) isUnlockCondition() {}

func (c *ExpirationUnlockCondition) ReturnAddress() Address { return c.returnAddress }
func (c *ExpirationUnlockCondition) SlotIndex() uint32 { return c.slotIndex }

// StateControllerAddressUnlockCondition defines the state controller of an account.
type StateControllerAddressUnlockCondition struct {
	address Address
}

func NewStateControllerAddressUnlockCondition(address Address) (*StateControllerAddressUnlockCondition, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &StateControllerAddressUnlockCondition{address: address}, nil
}

func (*StateControllerAddressUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*StateControllerAddressUnlockCondition) Type() uint8 {
	return UnlockConditionTypeStateControllerAddress
}
func (*StateControllerAddressUnlockCondition) isUnlockCondition() {}

func (c *StateControllerAddressUnlockCondition) Address() Address { return c.address }

// GovernorAddressUnlockCondition defines the governor of an account.
type GovernorAddressUnlockCondition struct {
	address Address
}

func NewGovernorAddressUnlockCondition(address Address) (*GovernorAddressUnlockCondition, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &GovernorAddressUnlockCondition{address: address}, nil
}

func (*GovernorAddressUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*GovernorAddressUnlockCondition) Type() uint8 { return UnlockConditionTypeGovernorAddress }
func (*GovernorAddressUnlockCondition) isUnlockCondition() {}

func (c *GovernorAddressUnlockCondition) Address() Address { return c.address }

// ImmutableAccountAddressUnlockCondition binds a foundry to its controlling account.
type ImmutableAccountAddressUnlockCondition struct {
	address *AccountAddress
}

func NewImmutableAccountAddressUnlockCondition(address *AccountAddress) (*ImmutableAccountAddressUnlockCondition, error) {
	if address == nil {
		return nil, ErrMissingAddress
	}
	return &ImmutableAccountAddressUnlockCondition{address: address}, nil
}

func (*ImmutableAccountAddressUnlockCondition) Family() Family { return FamilyUnlockCondition }
func (*ImmutableAccountAddressUnlockCondition) Type() uint8 {
	return UnlockConditionTypeImmutableAccountAddress
}
func (*ImmutableAccountAddressUnlockCondition) isUnlockCondition() {}

func (c *ImmutableAccountAddressUnlockCondition) Address() *AccountAddress { return c.address }

// UnlockConditions is an ordered list of unlock conditions.
type UnlockConditions []UnlockCondition

// Get returns the first unlock condition with the given type.
func (u UnlockConditions) Get(tag uint8) (UnlockCondition, bool) {
	for _, cond := range u {
		if cond.Type() == tag {
			return cond, true
		}
	}
	return nil, false
}

// Address returns the address unlock condition if present.
func (u UnlockConditions) Address() *AddressUnlockCondition {
	cond, _ := u.Get(UnlockConditionTypeAddress)
	val, _ := cond.(*AddressUnlockCondition)
	return val
}

// StateControllerAddress returns the state controller unlock condition if present.
func (u UnlockConditions) StateControllerAddress() *StateControllerAddressUnlockCondition {
	cond, _ := u.Get(UnlockConditionTypeStateControllerAddress)
	val, _ := cond.(*StateControllerAddressUnlockCondition)
	return val
}

// GovernorAddress returns the governor unlock condition if present.
func (u UnlockConditions) GovernorAddress() *GovernorAddressUnlockCondition {
	cond, _ := u.Get(UnlockConditionTypeGovernorAddress)
	val, _ := cond.(*GovernorAddressUnlockCondition)
	return val
}

// Types returns the discriminators in order.
func (u UnlockConditions) Types() []uint8 {
	types := make([]uint8, len(u))
	for i, cond := range u {
		types[i] = cond.Type()
	}
	return types
}

func addressUnlockConditionShape(tag uint8, name string, build func(Address) (UnlockCondition, error), address func(Variant) Address) *Shape {
	return &Shape{
		Family: FamilyUnlockCondition,
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

var unlockConditionShapes = []*Shape{
	addressUnlockConditionShape(UnlockConditionTypeAddress, "AddressUnlockCondition",
		func(a Address) (UnlockCondition, error) { return NewAddressUnlockCondition(a) },
		func(v Variant) Address { return v.(*AddressUnlockCondition).address },
	),
	{
		Family: FamilyUnlockCondition,
		Tag:    UnlockConditionTypeStorageDepositReturn,
		Name:   "StorageDepositReturnUnlockCondition",
		Fields: []Field{
			variantField("returnAddress", FamilyAddress),
			amountField("amount"),
		},
		Build: func(v Values) (Variant, error) {
			addr, err := variantAs[Address](v, "returnAddress")
			if err != nil {
				return nil, err
			}
			return NewStorageDepositReturnUnlockCondition(addr, v.Uint64("amount"))
		},
		Split: func(v Variant) Values {
			cond := v.(*StorageDepositReturnUnlockCondition)
			return Values{"returnAddress": cond.returnAddress, "amount": cond.amount}
		},
	},
	{
		Family: FamilyUnlockCondition,
		Tag:    UnlockConditionTypeTimelock,
		Name:   "TimelockUnlockCondition",
		Fields: []Field{uintField("slotIndex", 32)},
		Build: func(v Values) (Variant, error) {
			return NewTimelockUnlockCondition(v.Uint32("slotIndex"))
		},
		Split: func(v Variant) Values {
			return Values{"slotIndex": uint64(v.(*TimelockUnlockCondition).slotIndex)}
		},
	},
	{
		Family: FamilyUnlockCondition,
		Tag:    UnlockConditionTypeExpiration,
		Name:   "ExpirationUnlockCondition",
		Fields: []Field{
			variantField("returnAddress", FamilyAddress),
			uintField("slotIndex", 32),
		},
		Build: func(v Values) (Variant, error) {
			addr, err := variantAs[Address](v, "returnAddress")
			if err != nil {
				return nil, err
			}
			return NewExpirationUnlockCondition(addr, v.Uint32("slotIndex"))
		},
		Split: func(v Variant) Values {
			cond := v.(*ExpirationUnlockCondition)
			return Values{"returnAddress": cond.returnAddress, "slotIndex": uint64(cond.slotIndex)}
		},
	},
	addressUnlockConditionShape(UnlockConditionTypeStateControllerAddress, "StateControllerAddressUnlockCondition",
		func(a Address) (UnlockCondition, error) { return NewStateControllerAddressUnlockCondition(a) },
		func(v Variant) Address { return v.(*StateControllerAddressUnlockCondition).address },
	),
	addressUnlockConditionShape(UnlockConditionTypeGovernorAddress, "GovernorAddressUnlockCondition",
		func(a Address) (UnlockCondition, error) { return NewGovernorAddressUnlockCondition(a) },
		func(v Variant) Address { return v.(*GovernorAddressUnlockCondition).address },
	),
	addressUnlockConditionShape(UnlockConditionTypeImmutableAccountAddress, "ImmutableAccountAddressUnlockCondition",
		func(a Address) (UnlockCondition, error) {
			account, ok := a.(*AccountAddress)
			if !ok {
				return nil, fmt.Errorf("%w: received %T", ErrNotAccountAddress, a)
			}
			return NewImmutableAccountAddressUnlockCondition(account)
		},
		func(v Variant) Address { return v.(*ImmutableAccountAddressUnlockCondition).address },
	),
}
