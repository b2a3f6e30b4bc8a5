package machine

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/types"
)

// accountFact is the committed base state of one address. An account can be
// committed without its code: the shell is then known and the code is
// requested separately if execution ever needs it.
type accountFact struct {
	exists    bool
	nonce     uint64
	balance   *uint256.Int
	code      []byte
	codeKnown bool
}

type storageSlot struct {
	addr types.Address
	key  types.Hash
}

// factDB holds every fact the host has committed to the session. Facts are
// written at most once and never change for the lifetime of the session.
// The session is single threaded by contract, so plain maps suffice.
type factDB struct {
	accounts map[types.Address]*accountFact
	storage  map[storageSlot]types.Hash
	hashes   map[uint64]types.Hash
}

func newFactDB() *factDB {
	return &factDB{
		accounts: map[types.Address]*accountFact{},
		storage:  map[storageSlot]types.Hash{},
		hashes:   map[uint64]types.Hash{},
	}
}

func (f *factDB) account(addr types.Address) (*accountFact, bool) {
	acct, ok := f.accounts[addr]

	return acct, ok
}

func (f *factDB) storageValue(addr types.Address, key types.Hash) (types.Hash, bool) {
	value, ok := f.storage[storageSlot{addr: addr, key: key}]

	return value, ok
}

func (f *factDB) blockhash(number uint64) (types.Hash, bool) {
	hash, ok := f.hashes[number]

	return hash, ok
}

// setAccount records a full account. A nil code means the code was not
// supplied and stays requestable; an empty non-nil code is known empty.
func (f *factDB) setAccount(addr types.Address, nonce uint64, balance *uint256.Int, code []byte) {
	acct := &accountFact{
		exists:  true,
		nonce:   nonce,
		balance: types.U256Copy(balance),
	}

	if code != nil {
		acct.code = append([]byte{}, code...)
		acct.codeKnown = true
	}

	f.accounts[addr] = acct
}

// setNonexist records that the address has no account. It reads as zero
// nonce, zero balance and empty code from here on.
func (f *factDB) setNonexist(addr types.Address) {
	f.accounts[addr] = &accountFact{
		balance:   uint256.NewInt(0),
		code:      []byte{},
		codeKnown: true,
	}
}

func (f *factDB) setCode(addr types.Address, code []byte) {
	acct := f.accounts[addr]
	acct.code = append([]byte{}, code...)
	acct.codeKnown = true
}

func (f *factDB) setStorage(addr types.Address, key types.Hash, value types.Hash) {
	f.storage[storageSlot{addr: addr, key: key}] = value
}

func (f *factDB) setBlockhash(number uint64, hash types.Hash) {
	f.hashes[number] = hash
}
