package machine

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/chain"
	"github.com/0xPolygon/evm-machine/crypto"
	"github.com/0xPolygon/evm-machine/runtime"
	"github.com/0xPolygon/evm-machine/types"
)

// hostView is the runtime.Host handed to the interpreter. Reads go to the
// journal first, then to the committed facts. A miss on the facts suspends
// the execution goroutine until the outer host commits the answer.
type hostView struct {
	s     *Session
	txCtx runtime.TxContext

	// unsupported is raised when the runtime cannot handle a frame, it
	// poisons the whole session
	unsupported bool
}

// require hands the requirement to the session and blocks until the outer
// host resumes it. A closed session unwinds the goroutine instead.
func (h *hostView) require(req Require) {
	select {
	case h.s.reqCh <- req:
	case <-h.s.stopCh:
		panic(errUnwind)
	}

	select {
	case <-h.s.resumeCh:
	case <-h.s.stopCh:
		panic(errUnwind)
	}
}

// accountFact returns the committed shell of the account, suspending until
// it is known. An uncommitted resume asks again with the same requirement.
func (h *hostView) accountFact(addr types.Address) *accountFact {
	for {
		if fact, ok := h.s.facts.account(addr); ok {
			return fact
		}

		h.require(Require{Type: RequireAccount, Address: addr})
	}
}

// codeFact returns the committed code of the account. The shell is resolved
// first so that nonexistent accounts read as empty code without a second
// round trip.
func (h *hostView) codeFact(addr types.Address) []byte {
	for {
		fact := h.accountFact(addr)
		if !fact.exists {
			return []byte{}
		}

		if fact.codeKnown {
			return fact.code
		}

		h.require(Require{Type: RequireAccountCode, Address: addr})
	}
}

// storageValue returns the effective value of the slot: the write of this
// transaction if there is one, the committed fact otherwise. Reads consult
// the host even on accounts born in this transaction, so the first read of
// an unwritten slot on a fresh contract still surfaces a requirement.
func (h *hostView) storageValue(addr types.Address, key types.Hash) types.Hash {
	if value, ok := h.s.journal.StorageWrite(addr, key); ok {
		return value
	}

	for {
		if value, ok := h.s.facts.storageValue(addr, key); ok {
			return value
		}

		h.require(Require{Type: RequireAccountStorage, Address: addr, StorageKey: key})
	}
}

func (h *hostView) AccountExists(addr types.Address) bool {
	if h.s.journal.IsRemoved(addr) {
		return false
	}

	if delta, ok := h.s.journal.delta(addr); ok && delta.created {
		return true
	}

	return h.accountFact(addr).exists
}

func (h *hostView) GetStorage(addr types.Address, key types.Hash) types.Hash {
	if h.s.journal.IsRemoved(addr) {
		return types.ZeroHash
	}

	return h.storageValue(addr, key)
}

func (h *hostView) SetStorage(
	addr types.Address,
	key types.Hash,
	value types.Hash,
	config *chain.ForksInTime,
) runtime.StorageStatus {
	if h.s.journal.IsRemoved(addr) {
		return runtime.StorageUnchanged
	}

	oldValue := h.storageValue(addr, key)
	if oldValue == value {
		return runtime.StorageUnchanged
	}

	h.s.journal.SetStorage(addr, key, value)

	if oldValue == types.ZeroHash {
		return runtime.StorageAdded
	}

	if value == types.ZeroHash {
		h.s.journal.AddRefund(15000)

		return runtime.StorageDeleted
	}

	return runtime.StorageModified
}

func (h *hostView) GetBalance(addr types.Address) *uint256.Int {
	if h.s.journal.IsRemoved(addr) {
		return uint256.NewInt(0)
	}

	balance := uint256.NewInt(0)

	if fact := h.accountFact(addr); fact.exists {
		balance.Set(fact.balance)
	}

	if delta, ok := h.s.journal.delta(addr); ok {
		balance.Add(balance, types.U256Copy(delta.credit))
		balance.Sub(balance, types.U256Copy(delta.debit))
	}

	return balance
}

func (h *hostView) GetCodeSize(addr types.Address) int {
	return len(h.GetCode(addr))
}

func (h *hostView) GetCodeHash(addr types.Address) types.Hash {
	if !h.AccountExists(addr) {
		return types.ZeroHash
	}

	return crypto.Keccak256Hash(h.GetCode(addr))
}

func (h *hostView) GetCode(addr types.Address) []byte {
	if h.s.journal.IsRemoved(addr) {
		return []byte{}
	}

	if delta, ok := h.s.journal.delta(addr); ok {
		if delta.codeSet {
			return delta.code
		}

		if delta.created {
			return []byte{}
		}
	}

	return h.codeFact(addr)
}

func (h *hostView) Selfdestruct(addr types.Address, beneficiary types.Address) {
	if h.s.journal.IsRemoved(addr) {
		return
	}

	balance := h.GetBalance(addr)

	h.s.journal.SubBalance(addr, balance)
	h.s.journal.AddBalance(beneficiary, balance)
	h.s.journal.Suicide(addr)
}

func (h *hostView) GetTxContext() runtime.TxContext {
	return h.txCtx
}

func (h *hostView) GetBlockHash(number uint64) types.Hash {
	for {
		if hash, ok := h.s.facts.blockhash(number); ok {
			return hash
		}

		h.require(Require{Type: RequireBlockhash, BlockNumber: number})
	}
}

func (h *hostView) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	h.s.journal.AddLog(&Log{
		Address: addr,
		Topics:  append([]types.Hash{}, topics...),
		Data:    append([]byte{}, data...),
	})
}

func (h *hostView) Callx(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if c.Type == runtime.Create {
		return h.applyCreate(c, host)
	}

	return h.applyCall(c, host)
}

func (h *hostView) Empty(addr types.Address) bool {
	if !h.AccountExists(addr) {
		return true
	}

	return h.GetNonce(addr) == h.s.patch.InitialNonce &&
		h.GetBalance(addr).IsZero() &&
		h.GetCodeSize(addr) == 0
}

func (h *hostView) GetNonce(addr types.Address) uint64 {
	if h.s.journal.IsRemoved(addr) {
		return h.s.patch.InitialNonce
	}

	if delta, ok := h.s.journal.delta(addr); ok {
		if delta.nonceSet {
			return delta.nonce
		}

		if delta.created {
			return h.s.patch.InitialNonce
		}
	}

	if fact := h.accountFact(addr); fact.exists {
		return fact.nonce
	}

	return h.s.patch.InitialNonce
}

func (h *hostView) Transfer(from types.Address, to types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	if h.GetBalance(from).Lt(amount) {
		return runtime.ErrInsufficientBalance
	}

	h.s.journal.SubBalance(from, amount)
	h.s.journal.AddBalance(to, amount)

	return nil
}

func (h *hostView) AddRefund(gas uint64) {
	h.s.journal.AddRefund(gas)
}

func (h *hostView) GetRefund() uint64 {
	return h.s.journal.GetRefund()
}
