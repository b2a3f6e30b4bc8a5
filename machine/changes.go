package machine

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/chain"
	"github.com/0xPolygon/evm-machine/types"
)

// ChangeType classifies the effect of a transaction on one account
type ChangeType int

const (
	// ChangeIncreaseBalance is a pure balance credit
	ChangeIncreaseBalance ChangeType = iota

	// ChangeDecreaseBalance is a pure balance debit
	ChangeDecreaseBalance

	// ChangeFull replaces the state of an account that already existed
	ChangeFull

	// ChangeCreated carries the complete state of a new account
	ChangeCreated

	// ChangeRemoved deletes the account
	ChangeRemoved
)

func (c ChangeType) String() string {
	switch c {
	case ChangeIncreaseBalance:
		return "increase_balance"
	case ChangeDecreaseBalance:
		return "decrease_balance"
	case ChangeFull:
		return "full"
	case ChangeCreated:
		return "created"
	case ChangeRemoved:
		return "removed"
	}

	return "unknown"
}

// StorageEntry is one written storage slot
type StorageEntry struct {
	Key   types.Hash
	Value types.Hash
}

// AccountChange is one entry of the frozen account diff. Amount is only set
// for the balance variants, the state fields only for Full and Created.
type AccountChange struct {
	Type    ChangeType
	Address types.Address

	// Amount is the balance delta for ChangeIncreaseBalance and
	// ChangeDecreaseBalance
	Amount *uint256.Int

	// Nonce, Balance, Storage and Code are the resulting account state for
	// ChangeFull and ChangeCreated
	Nonce   uint64
	Balance *uint256.Int
	Storage []StorageEntry
	Code    []byte
}

func (a *AccountChange) String() string {
	switch a.Type {
	case ChangeIncreaseBalance, ChangeDecreaseBalance:
		return fmt.Sprintf("%s %s amount=%s", a.Type, a.Address, a.Amount)
	case ChangeRemoved:
		return fmt.Sprintf("%s %s", a.Type, a.Address)
	default:
		return fmt.Sprintf("%s %s nonce=%d balance=%s storage=%d code=%d",
			a.Type, a.Address, a.Nonce, a.Balance, len(a.Storage), len(a.Code))
	}
}

// Copy returns a deep copy of the change
func (a *AccountChange) Copy() *AccountChange {
	aa := new(AccountChange)
	*aa = *a

	aa.Amount = types.U256Copy(a.Amount)
	aa.Balance = types.U256Copy(a.Balance)
	aa.Code = append([]byte{}, a.Code...)
	aa.Storage = append([]StorageEntry{}, a.Storage...)

	return aa
}

// freeze collapses the journal into the account diff. Addresses come out in
// byte order because the journal keys them that way, so two sessions given
// the same inputs freeze the same diff.
func (j *journal) freeze(facts *factDB, patch chain.Patch) []*AccountChange {
	tree := j.txn.CommitOnly()
	root := tree.Root()

	changes := []*AccountChange{}

	root.WalkPrefix([]byte{accountPrefix}, func(k []byte, v interface{}) bool {
		addr := types.BytesToAddress(k[1:])
		delta := v.(*accountDelta)

		if change := j.collapse(addr, delta, facts, patch); change != nil {
			changes = append(changes, change)
		}

		return false
	})

	return changes
}

func (j *journal) collapse(
	addr types.Address,
	delta *accountDelta,
	facts *factDB,
	patch chain.Patch,
) *AccountChange {
	if delta.removed {
		return &AccountChange{Type: ChangeRemoved, Address: addr}
	}

	base, baseKnown := facts.account(addr)
	baseExists := baseKnown && base.exists

	if delta.created || (baseKnown && !base.exists) {
		return j.collapseCreated(addr, delta, base, baseExists, patch)
	}

	if delta.nonceSet || delta.codeSet || delta.storageTouched {
		return j.collapseFull(addr, delta, base, baseExists)
	}

	amount, positive := delta.net()
	if amount.IsZero() {
		return nil
	}

	typ := ChangeIncreaseBalance
	if !positive {
		typ = ChangeDecreaseBalance
	}

	return &AccountChange{Type: typ, Address: addr, Amount: amount}
}

func (j *journal) collapseCreated(
	addr types.Address,
	delta *accountDelta,
	base *accountFact,
	baseExists bool,
	patch chain.Patch,
) *AccountChange {
	nonce := patch.InitialNonce
	if delta.nonceSet {
		nonce = delta.nonce
	}

	balance := uint256.NewInt(0)
	if baseExists {
		balance.Set(base.balance)
	}

	balance.Add(balance, types.U256Copy(delta.credit))
	balance.Sub(balance, types.U256Copy(delta.debit))

	code := []byte{}
	if delta.codeSet {
		code = append([]byte{}, delta.code...)
	}

	return &AccountChange{
		Type:    ChangeCreated,
		Address: addr,
		Nonce:   nonce,
		Balance: balance,
		Storage: j.collapseStorage(addr),
		Code:    code,
	}
}

func (j *journal) collapseFull(
	addr types.Address,
	delta *accountDelta,
	base *accountFact,
	baseExists bool,
) *AccountChange {
	var (
		nonce   uint64
		balance = uint256.NewInt(0)
		code    = []byte{}
	)

	if baseExists {
		nonce = base.nonce
		balance.Set(base.balance)

		if base.codeKnown {
			code = append([]byte{}, base.code...)
		}
	}

	if delta.nonceSet {
		nonce = delta.nonce
	}

	if delta.codeSet {
		code = append([]byte{}, delta.code...)
	}

	balance.Add(balance, types.U256Copy(delta.credit))
	balance.Sub(balance, types.U256Copy(delta.debit))

	return &AccountChange{
		Type:    ChangeFull,
		Address: addr,
		Nonce:   nonce,
		Balance: balance,
		Storage: j.collapseStorage(addr),
		Code:    code,
	}
}

// collapseStorage gathers the written slots of one address in key order
func (j *journal) collapseStorage(addr types.Address) []StorageEntry {
	tree := j.txn.CommitOnly()
	root := tree.Root()

	prefix := append([]byte{storagePrefix}, addr.Bytes()...)

	entries := []StorageEntry{}

	root.WalkPrefix(prefix, func(k []byte, v interface{}) bool {
		entries = append(entries, StorageEntry{
			Key:   types.BytesToHash(k[len(prefix):]),
			Value: v.(types.Hash),
		})

		return false
	})

	return entries
}
