package statestore

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/evm-machine/types"
)

var accountArenaPool fastrlp.ArenaPool

// Account is the stored shell of one address. Code is kept separately under
// its hash, storage slots under the address.
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash types.Hash
}

// NewAccount returns an empty account with the initial nonce of the patch
func NewAccount(initialNonce uint64) *Account {
	return &Account{
		Nonce:    initialNonce,
		Balance:  uint256.NewInt(0),
		CodeHash: types.EmptyCodeHash,
	}
}

func (a *Account) String() string {
	return fmt.Sprintf("%d %s", a.Nonce, a.Balance.String())
}

func (a *Account) Copy() *Account {
	aa := new(Account)

	aa.Nonce = a.Nonce
	aa.Balance = types.U256Copy(a.Balance)
	aa.CodeHash = a.CodeHash

	return aa
}

func (a *Account) MarshalRLPTo(dst []byte) []byte {
	ar := accountArenaPool.Get()
	dst = a.MarshalRLPWith(ar).MarshalTo(dst)
	accountArenaPool.Put(ar)

	return dst
}

func (a *Account) MarshalRLPWith(ar *fastrlp.Arena) *fastrlp.Value {
	vv := ar.NewArray()

	vv.Set(ar.NewUint(a.Nonce))
	vv.Set(ar.NewBytes(a.Balance.Bytes()))
	vv.Set(ar.NewBytes(a.CodeHash.Bytes()))

	return vv
}

func (a *Account) UnmarshalRLP(input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return a.UnmarshalRLPFrom(pr, v)
}

func (a *Account) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 3 {
		return fmt.Errorf("not enough elements to decode account, expected 3 but found %d", len(elems))
	}

	if a.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}

	buf, err := elems[1].GetBytes(nil)
	if err != nil {
		return err
	}

	if len(buf) > 32 {
		return fmt.Errorf("balance is longer than 32 bytes")
	}

	a.Balance = new(uint256.Int).SetBytes(buf)

	if err = elems[2].GetHash(a.CodeHash[:]); err != nil {
		return err
	}

	return nil
}
