package machine

import (
	"fmt"

	"github.com/0xPolygon/evm-machine/types"
)

// RequireType tags the kind of fact a session is waiting on
type RequireType int

const (
	// RequireNone means nothing is pending
	RequireNone RequireType = iota
	// RequireAccount asks for the full account at Address, or a declaration
	// that it does not exist
	RequireAccount
	// RequireAccountCode asks for the code of an account whose shell is
	// already committed
	RequireAccountCode
	// RequireAccountStorage asks for one storage value of Address at StorageKey
	RequireAccountStorage
	// RequireBlockhash asks for the hash of the block at BlockNumber
	RequireBlockhash
)

func (t RequireType) String() string {
	switch t {
	case RequireNone:
		return "none"
	case RequireAccount:
		return "account"
	case RequireAccountCode:
		return "code"
	case RequireAccountStorage:
		return "storage"
	case RequireBlockhash:
		return "blockhash"
	}

	return "unknown"
}

// Require is the single outstanding fact request of a session. Only the
// fields relevant to Type are set.
type Require struct {
	Type        RequireType
	Address     types.Address
	StorageKey  types.Hash
	BlockNumber uint64
}

func (r Require) String() string {
	switch r.Type {
	case RequireAccount, RequireAccountCode:
		return fmt.Sprintf("require %s at %s", r.Type, r.Address)
	case RequireAccountStorage:
		return fmt.Sprintf("require storage %s of %s", r.StorageKey, r.Address)
	case RequireBlockhash:
		return fmt.Sprintf("require blockhash of %d", r.BlockNumber)
	}

	return "require none"
}
