package machine

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/types"
)

// Log is one event record emitted by the executed code
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

func (l *Log) Copy() *Log {
	return &Log{
		Address: l.Address,
		Topics:  append([]types.Hash{}, l.Topics...),
		Data:    append([]byte{}, l.Data...),
	}
}

// sessionResult is the sealed outcome of a terminal session
type sessionResult struct {
	gasUsed  uint64
	refund   uint64
	output   []byte
	err      error
	logs     []*Log
	changes  []*AccountChange
	suicides []types.Address
}

// All result accessors hand out values the caller owns. Before the session
// is terminal they return zero values.

// UsedGas returns the gas consumed by the transaction, net of refunds
func (s *Session) UsedGas() *uint256.Int {
	if s.result == nil {
		return uint256.NewInt(0)
	}

	return uint256.NewInt(s.result.gasUsed)
}

// Refund returns the refund that was credited back to the sender, already
// capped to half of the used gas
func (s *Session) Refund() *uint256.Int {
	if s.result == nil {
		return uint256.NewInt(0)
	}

	return uint256.NewInt(s.result.refund)
}

// Output returns the return data of the transaction. For a create this is
// the deployed code.
func (s *Session) Output() []byte {
	if s.result == nil {
		return nil
	}

	return append([]byte{}, s.result.output...)
}

// Err returns the failure reason of an ExitedErr session
func (s *Session) Err() error {
	if s.result == nil {
		return nil
	}

	return s.result.err
}

// Logs returns the logs emitted by the transaction
func (s *Session) Logs() []*Log {
	if s.result == nil {
		return nil
	}

	logs := make([]*Log, len(s.result.logs))
	for i, log := range s.result.logs {
		logs[i] = log.Copy()
	}

	return logs
}

// AccountChanges returns the frozen account diff of the transaction, in
// address byte order
func (s *Session) AccountChanges() []*AccountChange {
	if s.result == nil {
		return nil
	}

	changes := make([]*AccountChange, len(s.result.changes))
	for i, change := range s.result.changes {
		changes[i] = change.Copy()
	}

	return changes
}

// Suicides returns the addresses removed by the transaction, in the order
// they were removed
func (s *Session) Suicides() []types.Address {
	if s.result == nil {
		return nil
	}

	return append([]types.Address{}, s.result.suicides...)
}
