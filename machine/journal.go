package machine

import (
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/types"
)

// journal key prefixes. Account deltas and storage writes are keyed under
// their own prefixes so that a prefix walk visits them in byte order, which
// is what keeps the frozen diff deterministic.
const (
	accountPrefix = 0x1
	storagePrefix = 0x2
)

var (
	// logsIndex is the reserved key of the log list
	logsIndex = []byte{0x3}

	// refundIndex is the reserved key of the refund counter
	refundIndex = []byte{0x4}

	// suicidesIndex is the reserved key of the self-destruct list
	suicidesIndex = []byte{0x5}
)

func accountKey(addr types.Address) []byte {
	return append([]byte{accountPrefix}, addr.Bytes()...)
}

func storageKey(addr types.Address, key types.Hash) []byte {
	k := make([]byte, 0, 1+types.AddressLength+types.HashLength)
	k = append(k, storagePrefix)
	k = append(k, addr.Bytes()...)

	return append(k, key.Bytes()...)
}

// accountDelta accumulates everything the transaction did to one address.
// Values stored in the radix tree are immutable: every mutation copies the
// delta first, so snapshots stay consistent.
type accountDelta struct {
	credit  *uint256.Int
	debit   *uint256.Int
	nonce   uint64
	code    []byte
	created bool
	removed bool

	nonceSet       bool
	codeSet        bool
	storageTouched bool
}

func (d *accountDelta) Copy() *accountDelta {
	dd := new(accountDelta)
	*dd = *d

	dd.credit = types.U256Copy(d.credit)
	dd.debit = types.U256Copy(d.debit)
	dd.code = d.code

	return dd
}

// net returns the balance delta as a magnitude plus its sign. A zero delta
// reports positive.
func (d *accountDelta) net() (*uint256.Int, bool) {
	credit := types.U256Copy(d.credit)
	debit := types.U256Copy(d.debit)

	if credit.Lt(debit) {
		return debit.Sub(debit, credit), false
	}

	return credit.Sub(credit, debit), true
}

// journal is the in-flight write state of a session, layered over the
// committed facts. Deltas, storage writes, logs, the refund counter and the
// self-destruct list all live in one immutable radix transaction so that
// snapshot and revert cover everything at once.
type journal struct {
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

func newJournal() *journal {
	i := iradix.New()

	return &journal{
		snapshots: []*iradix.Tree{},
		txn:       i.Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (j *journal) Snapshot() int {
	t := j.txn.CommitOnly()

	id := len(j.snapshots)
	j.snapshots = append(j.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot
func (j *journal) RevertToSnapshot(id int) {
	if id > len(j.snapshots) {
		panic("BUG: snapshot id out of range")
	}

	tree := j.snapshots[id]
	j.txn = tree.Txn()
}

func (j *journal) delta(addr types.Address) (*accountDelta, bool) {
	data, ok := j.txn.Get(accountKey(addr))
	if !ok {
		return nil, false
	}

	return data.(*accountDelta), true
}

// mutate applies f to a copy of the address delta and stores it back.
// Removed addresses are terminal: nothing is recorded for them anymore.
func (j *journal) mutate(addr types.Address, f func(*accountDelta)) {
	delta, ok := j.delta(addr)
	if !ok {
		delta = &accountDelta{}
	} else {
		if delta.removed {
			return
		}

		delta = delta.Copy()
	}

	f(delta)
	j.txn.Insert(accountKey(addr), delta)
}

func (j *journal) AddBalance(addr types.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}

	j.mutate(addr, func(d *accountDelta) {
		credit := types.U256Copy(d.credit)
		d.credit = credit.Add(credit, amount)
	})
}

func (j *journal) SubBalance(addr types.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}

	j.mutate(addr, func(d *accountDelta) {
		debit := types.U256Copy(d.debit)
		d.debit = debit.Add(debit, amount)
	})
}

func (j *journal) SetNonce(addr types.Address, nonce uint64) {
	j.mutate(addr, func(d *accountDelta) {
		d.nonce = nonce
		d.nonceSet = true
	})
}

func (j *journal) SetCode(addr types.Address, code []byte) {
	j.mutate(addr, func(d *accountDelta) {
		d.code = append([]byte{}, code...)
		d.codeSet = true
	})
}

// Create marks the address as born in this transaction. Earlier balance
// credit to the address, if any, is preserved.
func (j *journal) Create(addr types.Address) {
	j.mutate(addr, func(d *accountDelta) {
		d.created = true
	})
}

// Suicide marks the address removed and appends it to the self-destruct
// list. The balance is expected to have been moved already.
func (j *journal) Suicide(addr types.Address) {
	delta, ok := j.delta(addr)
	if ok && delta.removed {
		return
	}

	if !ok {
		delta = &accountDelta{}
	} else {
		delta = delta.Copy()
	}

	delta.removed = true
	j.txn.Insert(accountKey(addr), delta)

	suicides := j.Suicides()
	suicides = append(suicides, addr)
	j.txn.Insert(suicidesIndex, suicides)
}

func (j *journal) IsRemoved(addr types.Address) bool {
	delta, ok := j.delta(addr)

	return ok && delta.removed
}

func (j *journal) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	if j.IsRemoved(addr) {
		return
	}

	j.txn.Insert(storageKey(addr, key), value)
	j.mutate(addr, func(d *accountDelta) {
		d.storageTouched = true
	})
}

func (j *journal) StorageWrite(addr types.Address, key types.Hash) (types.Hash, bool) {
	data, ok := j.txn.Get(storageKey(addr, key))
	if !ok {
		return types.ZeroHash, false
	}

	return data.(types.Hash), true
}

// AddLog adds a new log
func (j *journal) AddLog(log *Log) {
	var logs []*Log

	data, ok := j.txn.Get(logsIndex)
	if ok {
		logs = data.([]*Log)
	}

	logs = append(logs, log)
	j.txn.Insert(logsIndex, logs)
}

func (j *journal) Logs() []*Log {
	data, ok := j.txn.Get(logsIndex)
	if !ok {
		return nil
	}

	return data.([]*Log)
}

func (j *journal) AddRefund(gas uint64) {
	refund := j.GetRefund() + gas
	j.txn.Insert(refundIndex, refund)
}

func (j *journal) GetRefund() uint64 {
	data, ok := j.txn.Get(refundIndex)
	if !ok {
		return 0
	}

	return data.(uint64)
}

func (j *journal) Suicides() []types.Address {
	data, ok := j.txn.Get(suicidesIndex)
	if !ok {
		return nil
	}

	return data.([]types.Address)
}
