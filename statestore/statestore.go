package statestore

import (
	"fmt"

	"github.com/0xPolygon/evm-machine/machine"
	"github.com/0xPolygon/evm-machine/types"
)

// Source is read access to the account state a session executes against.
// Returned accounts and code are owned by the caller.
type Source interface {
	// GetAccount returns the account shell of addr, or false when the
	// account does not exist
	GetAccount(addr types.Address) (*Account, bool)

	// GetCode returns the code stored under hash
	GetCode(hash types.Hash) ([]byte, bool)

	// GetStorage returns the value of one storage slot. Unset slots are
	// the zero hash.
	GetStorage(addr types.Address, key types.Hash) types.Hash
}

// Writer is write access to the stored account state
type Writer interface {
	SetAccount(addr types.Address, account *Account) error

	// DeleteAccount removes the account shell and all its storage slots.
	// Code is content addressed and stays.
	DeleteAccount(addr types.Address) error

	SetCode(hash types.Hash, code []byte) error

	// SetStorage writes one storage slot. A zero value deletes the slot.
	SetStorage(addr types.Address, key types.Hash, value types.Hash) error
}

// Store is an account store that can both serve and persist session state
type Store interface {
	Source
	Writer

	Close() error
}

// GetHashByNumber returns the hash of the block at the given number
type GetHashByNumber = func(i uint64) types.Hash

// Drive runs a session to completion, answering every requirement it fires
// from the source. getHash answers Blockhash requirements and may be nil.
// The session is left terminal unless a commit fails.
func Drive(s *machine.Session, src Source, getHash GetHashByNumber) (machine.Status, error) {
	for {
		req := s.Fire()
		if req == nil {
			return s.Status(), nil
		}

		if err := commit(s, src, getHash, req); err != nil {
			return s.Status(), err
		}
	}
}

func commit(s *machine.Session, src Source, getHash GetHashByNumber, req *machine.Require) error {
	switch req.Type {
	case machine.RequireAccount:
		acct, ok := src.GetAccount(req.Address)
		if !ok {
			return s.CommitNonexist(req.Address)
		}

		// nil code means not supplied and the code travels on a later
		// AccountCode requirement. An empty code hash is known empty.
		var code []byte
		if acct.CodeHash == types.EmptyCodeHash || acct.CodeHash == types.ZeroHash {
			code = []byte{}
		}

		return s.CommitAccount(req.Address, acct.Nonce, acct.Balance, code)

	case machine.RequireAccountCode:
		acct, ok := src.GetAccount(req.Address)
		if !ok {
			return fmt.Errorf("code of %s required but the account is not in the store", req.Address)
		}

		code, ok := src.GetCode(acct.CodeHash)
		if !ok {
			return fmt.Errorf("code %s of account %s not found", acct.CodeHash, req.Address)
		}

		return s.CommitAccountCode(req.Address, code)

	case machine.RequireAccountStorage:
		return s.CommitAccountStorage(req.Address, req.StorageKey, src.GetStorage(req.Address, req.StorageKey))

	case machine.RequireBlockhash:
		if getHash == nil {
			return s.CommitBlockhash(req.BlockNumber, types.ZeroHash)
		}

		return s.CommitBlockhash(req.BlockNumber, getHash(req.BlockNumber))
	}

	return fmt.Errorf("cannot answer requirement: %s", req)
}
