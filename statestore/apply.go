package statestore

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/0xPolygon/evm-machine/chain"
	"github.com/0xPolygon/evm-machine/crypto"
	"github.com/0xPolygon/evm-machine/machine"
	"github.com/0xPolygon/evm-machine/types"
)

// Apply writes a frozen account diff to the store. Changes apply in the
// order the session reported them and a failing change does not stop the
// ones after it.
func Apply(src Source, w Writer, patch chain.Patch, changes []*machine.AccountChange) error {
	var errs error

	for _, c := range changes {
		if err := applyChange(src, w, patch, c); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs
}

func applyChange(src Source, w Writer, patch chain.Patch, c *machine.AccountChange) error {
	switch c.Type {
	case machine.ChangeIncreaseBalance:
		acct, ok := src.GetAccount(c.Address)
		if !ok {
			acct = NewAccount(patch.InitialNonce)
		}

		acct.Balance.Add(acct.Balance, c.Amount)

		return w.SetAccount(c.Address, acct)

	case machine.ChangeDecreaseBalance:
		acct, ok := src.GetAccount(c.Address)
		if !ok {
			return fmt.Errorf("cannot decrease balance of %s, account not found", c.Address)
		}

		if acct.Balance.Lt(c.Amount) {
			return fmt.Errorf("cannot decrease balance of %s, balance %s is lower than %s",
				c.Address, acct.Balance, c.Amount)
		}

		acct.Balance.Sub(acct.Balance, c.Amount)

		return w.SetAccount(c.Address, acct)

	case machine.ChangeFull:
		return writeAccountState(w, c)

	case machine.ChangeCreated:
		// the created account replaces whatever was stored at the
		// address, old storage included
		if err := w.DeleteAccount(c.Address); err != nil {
			return err
		}

		return writeAccountState(w, c)

	case machine.ChangeRemoved:
		return w.DeleteAccount(c.Address)
	}

	return fmt.Errorf("cannot apply change of unknown type: %s", c)
}

// writeAccountState stores the complete resulting state carried by a Full
// or Created change
func writeAccountState(w Writer, c *machine.AccountChange) error {
	acct := &Account{
		Nonce:    c.Nonce,
		Balance:  types.U256Copy(c.Balance),
		CodeHash: types.EmptyCodeHash,
	}

	if len(c.Code) != 0 {
		acct.CodeHash = crypto.Keccak256Hash(c.Code)

		if err := w.SetCode(acct.CodeHash, c.Code); err != nil {
			return err
		}
	}

	if err := w.SetAccount(c.Address, acct); err != nil {
		return err
	}

	for _, entry := range c.Storage {
		if err := w.SetStorage(c.Address, entry.Key, entry.Value); err != nil {
			return err
		}
	}

	return nil
}

// IncrementNonce bumps the stored nonce of a transaction sender. The session
// reports the sender only through balance changes, the nonce of the top
// level caller is bookkeeping of the host.
func IncrementNonce(src Source, w Writer, patch chain.Patch, addr types.Address) error {
	acct, ok := src.GetAccount(addr)
	if !ok {
		acct = NewAccount(patch.InitialNonce)
	}

	acct.Nonce++

	return w.SetAccount(addr, acct)
}
