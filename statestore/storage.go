package statestore

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/0xPolygon/evm-machine/types"
)

var (
	// accountPrefix is the account shell prefix for leveldb
	accountPrefix = []byte("a")

	// storagePrefix is the storage slot prefix for leveldb
	storagePrefix = []byte("s")

	// codePrefix is the code prefix for leveldb
	codePrefix = []byte("code")

	// leveldb not found error message
	levelDBNotFoundMsg = "leveldb: not found"
)

func accountKey(addr types.Address) []byte {
	return append(accountPrefix, addr.Bytes()...)
}

func storageSlotKey(addr types.Address, key types.Hash) []byte {
	k := append(storagePrefix, addr.Bytes()...)

	return append(k, key.Bytes()...)
}

func codeKey(hash types.Hash) []byte {
	return append(codePrefix, hash.Bytes()...)
}

// KVStore is an account store on leveldb. Accounts are RLP encoded under
// their address, storage slots under address and key, code under its hash.
type KVStore struct {
	logger hclog.Logger
	db     *leveldb.DB
	cache  *lru.Cache
}

// NewLevelDBStore opens or creates the store at path
func NewLevelDBStore(path string, logger hclog.Logger) (*KVStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cache, _ := lru.New(128)

	return &KVStore{
		logger: logger.Named("statestore"),
		db:     db,
		cache:  cache,
	}, nil
}

func (kv *KVStore) get(k []byte) ([]byte, bool) {
	data, err := kv.db.Get(k, nil)
	if err != nil {
		if err.Error() != levelDBNotFoundMsg {
			kv.logger.Error("read failed", "err", err)
		}

		return nil, false
	}

	return data, true
}

func (kv *KVStore) GetAccount(addr types.Address) (*Account, bool) {
	data, ok := kv.get(accountKey(addr))
	if !ok {
		return nil, false
	}

	acct := &Account{}
	if err := acct.UnmarshalRLP(data); err != nil {
		kv.logger.Error("bad account entry", "addr", addr, "err", err)

		return nil, false
	}

	return acct, true
}

func (kv *KVStore) GetCode(hash types.Hash) ([]byte, bool) {
	if hash == types.EmptyCodeHash {
		return []byte{}, true
	}

	if v, ok := kv.cache.Get(hash); ok {
		code, _ := v.([]byte)

		return append([]byte{}, code...), true
	}

	code, ok := kv.get(codeKey(hash))
	if !ok {
		return nil, false
	}

	kv.cache.Add(hash, code)

	return append([]byte{}, code...), true
}

func (kv *KVStore) GetStorage(addr types.Address, key types.Hash) types.Hash {
	data, ok := kv.get(storageSlotKey(addr, key))
	if !ok {
		return types.Hash{}
	}

	return types.BytesToHash(data)
}

func (kv *KVStore) SetAccount(addr types.Address, account *Account) error {
	return kv.db.Put(accountKey(addr), account.MarshalRLPTo(nil), nil)
}

func (kv *KVStore) DeleteAccount(addr types.Address) error {
	batch := new(leveldb.Batch)
	batch.Delete(accountKey(addr))

	it := kv.db.NewIterator(util.BytesPrefix(append(storagePrefix, addr.Bytes()...)), nil)
	for it.Next() {
		batch.Delete(append([]byte{}, it.Key()...))
	}

	it.Release()

	if err := it.Error(); err != nil {
		return err
	}

	return kv.db.Write(batch, nil)
}

func (kv *KVStore) SetCode(hash types.Hash, code []byte) error {
	return kv.db.Put(codeKey(hash), code, nil)
}

func (kv *KVStore) SetStorage(addr types.Address, key types.Hash, value types.Hash) error {
	if value == types.ZeroHash {
		return kv.db.Delete(storageSlotKey(addr, key), nil)
	}

	return kv.db.Put(storageSlotKey(addr, key), value.Bytes(), nil)
}

func (kv *KVStore) Close() error {
	return kv.db.Close()
}

// memStore is an in-memory account store
type memStore struct {
	l        *sync.Mutex
	accounts map[types.Address]*Account
	storage  map[types.Address]map[types.Hash]types.Hash
	code     map[types.Hash][]byte
}

// NewMemoryStore creates an in-memory account store
func NewMemoryStore() Store {
	return &memStore{
		l:        new(sync.Mutex),
		accounts: map[types.Address]*Account{},
		storage:  map[types.Address]map[types.Hash]types.Hash{},
		code:     map[types.Hash][]byte{},
	}
}

func (m *memStore) GetAccount(addr types.Address) (*Account, bool) {
	m.l.Lock()
	defer m.l.Unlock()

	acct, ok := m.accounts[addr]
	if !ok {
		return nil, false
	}

	return acct.Copy(), true
}

func (m *memStore) GetCode(hash types.Hash) ([]byte, bool) {
	if hash == types.EmptyCodeHash {
		return []byte{}, true
	}

	m.l.Lock()
	defer m.l.Unlock()

	code, ok := m.code[hash]
	if !ok {
		return nil, false
	}

	return append([]byte{}, code...), true
}

func (m *memStore) GetStorage(addr types.Address, key types.Hash) types.Hash {
	m.l.Lock()
	defer m.l.Unlock()

	return m.storage[addr][key]
}

func (m *memStore) SetAccount(addr types.Address, account *Account) error {
	m.l.Lock()
	defer m.l.Unlock()

	m.accounts[addr] = account.Copy()

	return nil
}

func (m *memStore) DeleteAccount(addr types.Address) error {
	m.l.Lock()
	defer m.l.Unlock()

	delete(m.accounts, addr)
	delete(m.storage, addr)

	return nil
}

func (m *memStore) SetCode(hash types.Hash, code []byte) error {
	m.l.Lock()
	defer m.l.Unlock()

	m.code[hash] = append([]byte{}, code...)

	return nil
}

func (m *memStore) SetStorage(addr types.Address, key types.Hash, value types.Hash) error {
	m.l.Lock()
	defer m.l.Unlock()

	if value == types.ZeroHash {
		delete(m.storage[addr], key)

		return nil
	}

	slots, ok := m.storage[addr]
	if !ok {
		slots = map[types.Hash]types.Hash{}
		m.storage[addr] = slots
	}

	slots[key] = value

	return nil
}

func (m *memStore) Close() error {
	return nil
}
