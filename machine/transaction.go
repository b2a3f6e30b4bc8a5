package machine

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/types"
)

// Action is the kind of transaction being executed
type Action int

const (
	// Call runs the code of an existing account, or transfers value to it
	Call Action = iota
	// Create deploys the input as init code at the derived address
	Create
)

func (a Action) String() string {
	switch a {
	case Call:
		return "call"
	case Create:
		return "create"
	}

	return "unknown"
}

// Transaction is the message a session executes. The target address is
// only meaningful for the Call action. The session copies the transaction
// at construction and never observes later mutation.
type Transaction struct {
	Caller   types.Address
	GasPrice *uint256.Int
	GasLimit uint64
	Action   Action
	Address  types.Address
	Value    *uint256.Int
	Input    []byte
	Nonce    uint64
}

func (t *Transaction) Copy() *Transaction {
	tt := new(Transaction)
	*tt = *t

	tt.GasPrice = types.U256Copy(t.GasPrice)
	tt.Value = types.U256Copy(t.Value)

	tt.Input = make([]byte, len(t.Input))
	copy(tt.Input, t.Input)

	return tt
}

// HeaderParams carries the fields of the enclosing block header that
// execution can observe.
type HeaderParams struct {
	Beneficiary types.Address
	Timestamp   uint64
	Number      uint64
	Difficulty  *uint256.Int
	GasLimit    uint64
}

func (h *HeaderParams) Copy() *HeaderParams {
	hh := new(HeaderParams)
	*hh = *h

	hh.Difficulty = types.U256Copy(h.Difficulty)

	return hh
}
