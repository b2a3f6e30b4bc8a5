package machine

import (
	"errors"
	"math"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/chain"
	"github.com/0xPolygon/evm-machine/crypto"
	"github.com/0xPolygon/evm-machine/runtime"
	"github.com/0xPolygon/evm-machine/types"
)

const callCreateDepth = 1024

var (
	// ErrNonceIncorrect is returned when the transaction nonce does not
	// match the nonce of the sender account
	ErrNonceIncorrect = errors.New("nonce is incorrect")

	// ErrNotEnoughFundsForGas is returned when the sender cannot cover the
	// gas purchase plus the transferred value
	ErrNotEnoughFundsForGas = errors.New("not enough funds to cover gas costs")

	// ErrIntrinsicGas is returned when the gas limit is below the intrinsic
	// cost of the transaction
	ErrIntrinsicGas = errors.New("intrinsic gas too low")

	// errUnsupported marks an execution the configured runtime cannot
	// handle, it surfaces as the Unsupported session status
	errUnsupported = errors.New("execution not supported")
)

// txOutcome is what the execution goroutine reports back when it finishes
type txOutcome struct {
	status  Status
	err     error
	output  []byte
	gasUsed uint64
	refund  uint64
}

// transition runs the whole transaction against the host view. Rejections
// before execution leave the journal untouched so that the frozen diff of a
// rejected transaction is empty.
func (h *hostView) transition() *txOutcome {
	tx := h.s.tx

	if !h.s.patch.Fork.Supported() {
		return &txOutcome{status: Unsupported}
	}

	if tx.Action != Call && tx.Action != Create {
		return &txOutcome{status: Unsupported}
	}

	if nonce := h.GetNonce(tx.Caller); nonce != tx.Nonce {
		return &txOutcome{status: ExitedErr, err: ErrNonceIncorrect}
	}

	gasCost := uint256.NewInt(tx.GasLimit)
	gasCost.Mul(gasCost, tx.GasPrice)

	upfront := new(uint256.Int).Add(gasCost, tx.Value)
	if h.GetBalance(tx.Caller).Lt(upfront) {
		return &txOutcome{status: ExitedErr, err: ErrNotEnoughFundsForGas}
	}

	intrinsic, err := txIntrinsicGas(tx, &h.s.forks)
	if err != nil {
		return &txOutcome{status: ExitedErr, err: err}
	}

	if tx.GasLimit < intrinsic {
		return &txOutcome{status: ExitedErr, err: ErrIntrinsicGas}
	}

	// buy gas
	h.s.journal.SubBalance(tx.Caller, gasCost)

	gasLeft := tx.GasLimit - intrinsic

	var result *runtime.ExecutionResult

	if tx.Action == Create {
		address := crypto.CreateAddress(tx.Caller, tx.Nonce)
		c := runtime.NewContractCreation(1, tx.Caller, tx.Caller, address, tx.Value, gasLeft, tx.Input)

		result = h.applyCreate(c, h)
	} else {
		code := h.GetCode(tx.Address)
		c := runtime.NewContractCall(1, tx.Caller, tx.Caller, tx.Address, tx.Value, gasLeft, code, tx.Input)

		result = h.applyCall(c, h)
	}

	if h.unsupported || errors.Is(result.Err, errUnsupported) {
		return &txOutcome{status: Unsupported}
	}

	// Apply the refund counter, capped to half of the used gas
	refund := h.s.journal.GetRefund()
	if maxRefund := (tx.GasLimit - result.GasLeft) / 2; refund > maxRefund {
		refund = maxRefund
	}

	result.UpdateGasUsed(tx.GasLimit, h.s.journal.GetRefund())

	// Return the value of the remaining gas, exchanged at the original rate
	remaining := uint256.NewInt(result.GasLeft)
	remaining.Mul(remaining, tx.GasPrice)
	h.s.journal.AddBalance(tx.Caller, remaining)

	// The beneficiary fee is journal bookkeeping, it never raises a
	// requirement for the beneficiary account
	fee := uint256.NewInt(result.GasUsed)
	fee.Mul(fee, tx.GasPrice)
	h.s.journal.AddBalance(h.s.header.Beneficiary, fee)

	outcome := &txOutcome{
		status:  ExitedOk,
		output:  append([]byte{}, result.ReturnValue...),
		gasUsed: result.GasUsed,
		refund:  refund,
	}

	if result.Failed() {
		outcome.status = ExitedErr
		outcome.err = result.Err

		if !result.Reverted() {
			outcome.output = nil
		}
	}

	return outcome
}

// txIntrinsicGas computes the fixed gas cost of the transaction before any
// code runs. Zero and non-zero payload bytes are priced differently.
func txIntrinsicGas(tx *Transaction, forks *chain.ForksInTime) (uint64, error) {
	var gas uint64

	if tx.Action == Create && forks.Homestead {
		gas = chain.TxGasContractCreation
	} else {
		gas = chain.TxGas
	}

	if len(tx.Input) > 0 {
		var nz uint64

		for _, b := range tx.Input {
			if b != 0 {
				nz++
			}
		}

		if (math.MaxUint64-gas)/chain.TxDataNonZeroGas < nz {
			return 0, ErrIntrinsicGas
		}

		gas += nz * chain.TxDataNonZeroGas

		z := uint64(len(tx.Input)) - nz
		if (math.MaxUint64-gas)/chain.TxDataZeroGas < z {
			return 0, ErrIntrinsicGas
		}

		gas += z * chain.TxDataZeroGas
	}

	return gas, nil
}

func callValue(c *runtime.Contract) *uint256.Int {
	if c.Value == nil {
		return uint256.NewInt(0)
	}

	return c.Value
}

func (h *hostView) applyCall(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if c.Depth > callCreateDepth+1 {
		return &runtime.ExecutionResult{GasLeft: c.Gas, Err: runtime.ErrDepth}
	}

	value := callValue(c)

	if c.Type == runtime.CallCode {
		if h.GetBalance(c.Caller).Lt(value) {
			return &runtime.ExecutionResult{GasLeft: c.Gas, Err: runtime.ErrNotEnoughFunds}
		}
	}

	snapshot := h.s.journal.Snapshot()

	if c.Type == runtime.Call {
		if !h.AccountExists(c.Address) {
			// a touched account exists from here on, even if the value
			// transferred to it is zero
			h.s.journal.Create(c.Address)
		}

		if err := h.Transfer(c.Caller, c.Address, value); err != nil {
			h.s.journal.RevertToSnapshot(snapshot)

			return &runtime.ExecutionResult{GasLeft: c.Gas, Err: err}
		}
	}

	result := h.run(c, host)

	if result.Failed() {
		h.s.journal.RevertToSnapshot(snapshot)

		if !result.Reverted() {
			result.GasLeft = 0
		}
	}

	return result
}

func (h *hostView) applyCreate(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	gas := c.Gas

	if c.Depth > callCreateDepth+1 {
		return &runtime.ExecutionResult{GasLeft: gas, Err: runtime.ErrDepth}
	}

	value := callValue(c)

	if h.GetBalance(c.Caller).Lt(value) {
		return &runtime.ExecutionResult{GasLeft: gas, Err: runtime.ErrNotEnoughFunds}
	}

	// The nonce of a creating contract moves inside the transaction. The
	// nonce of the top level sender is bookkeeping of the outer host.
	if c.Depth > 1 {
		h.s.journal.SetNonce(c.Caller, h.GetNonce(c.Caller)+1)
	}

	codeHash := h.GetCodeHash(c.Address)
	if h.GetNonce(c.Address) != h.s.patch.InitialNonce ||
		(codeHash != types.ZeroHash && codeHash != types.EmptyCodeHash) {
		return &runtime.ExecutionResult{Err: runtime.ErrContractAddressCollision}
	}

	snapshot := h.s.journal.Snapshot()

	h.s.journal.Create(c.Address)

	if err := h.Transfer(c.Caller, c.Address, value); err != nil {
		h.s.journal.RevertToSnapshot(snapshot)

		return &runtime.ExecutionResult{GasLeft: gas, Err: runtime.ErrNotEnoughFunds}
	}

	result := h.run(c, host)

	if result.Failed() {
		h.s.journal.RevertToSnapshot(snapshot)

		if !result.Reverted() {
			result.GasLeft = 0
		}

		return result
	}

	depositGas := uint64(len(result.ReturnValue)) * chain.CreateDataGas

	if result.GasLeft < depositGas {
		if h.s.forks.Homestead {
			h.s.journal.RevertToSnapshot(snapshot)

			return &runtime.ExecutionResult{Err: runtime.ErrCodeStoreOutOfGas}
		}

		// Frontier keeps the empty contract and the remaining gas when the
		// code deposit cannot be paid
		result.ReturnValue = nil
	} else {
		result.GasLeft -= depositGas
		h.s.journal.SetCode(c.Address, result.ReturnValue)
	}

	return result
}

// run dispatches the contract to the configured runtime. Plain value moves
// with no code succeed without one.
func (h *hostView) run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if len(c.Code) == 0 {
		return &runtime.ExecutionResult{GasLeft: c.Gas}
	}

	rt := h.s.runtime
	if rt == nil || !rt.CanRun(c, host, &h.s.forks) {
		h.unsupported = true

		return &runtime.ExecutionResult{Err: errUnsupported}
	}

	return rt.Run(c, host, &h.s.forks)
}
