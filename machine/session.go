package machine

import (
	"errors"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-machine/chain"
	"github.com/0xPolygon/evm-machine/runtime"
	"github.com/0xPolygon/evm-machine/types"
)

const (
	// machineMetrics is a prefix used for machine-related metrics
	machineMetrics = "machine"
)

var (
	// ErrSessionClosed is returned when a commit arrives after Close
	ErrSessionClosed = errors.New("session is closed")

	// ErrNoPendingRequire is returned when a commit arrives while no
	// requirement is pending
	ErrNoPendingRequire = errors.New("no requirement is pending")

	// ErrCommitMismatch is returned when a commit does not answer the
	// pending requirement
	ErrCommitMismatch = errors.New("commit does not match the pending requirement")

	// ErrNoAccountShell is returned when code is committed for an account
	// whose shell has not been committed yet
	ErrNoAccountShell = errors.New("account shell is not known")

	// errUnwind tears down the execution goroutine of a closed session
	errUnwind = errors.New("session closed, unwinding execution")
)

// Session drives one transaction to a terminal status. Execution runs on a
// dedicated goroutine and suspends whenever it needs a fact the outer host
// has not committed yet. The caller loop is Fire, commit, Fire again, until
// Fire returns nil.
//
// A Session is not safe for concurrent use.
type Session struct {
	logger  hclog.Logger
	runtime runtime.Runtime

	tx     *Transaction
	header *HeaderParams
	patch  chain.Patch
	forks  chain.ForksInTime

	facts   *factDB
	journal *journal

	status  Status
	pending *Require
	result  *sessionResult

	started bool

	reqCh    chan Require
	resumeCh chan struct{}
	doneCh   chan *txOutcome
	stopCh   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// SessionOption is a callback for the session constructor
type SessionOption func(*Session)

// WithLogger sets the parent logger of the session
func WithLogger(logger hclog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRuntime sets the runtime that executes contract code. Without one,
// any transaction that reaches code finishes as Unsupported.
func WithRuntime(r runtime.Runtime) SessionOption {
	return func(s *Session) {
		s.runtime = r
	}
}

// NewSession creates an execution session for one transaction. The
// transaction and header are copied, the caller keeps ownership of its
// values.
func NewSession(tx *Transaction, header *HeaderParams, patch chain.Patch, opts ...SessionOption) *Session {
	s := &Session{
		logger:   hclog.NewNullLogger(),
		tx:       tx.Copy(),
		header:   header.Copy(),
		patch:    patch,
		forks:    patch.Rules(),
		facts:    newFactDB(),
		journal:  newJournal(),
		status:   Running,
		reqCh:    make(chan Require),
		resumeCh: make(chan struct{}),
		doneCh:   make(chan *txOutcome),
		stopCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.Named("machine")

	metrics.IncrCounter([]string{machineMetrics, "sessions"}, 1)

	return s
}

// Fire advances execution until it surfaces a requirement or reaches a
// terminal status. It returns the pending requirement, or nil once the
// session is terminal or closed. Firing again without a commit reports the
// same requirement.
func (s *Session) Fire() *Require {
	if s.isClosed() || s.status.Terminal() {
		return nil
	}

	if !s.started {
		s.started = true

		s.wg.Add(1)

		go s.run()
	} else {
		select {
		case s.resumeCh <- struct{}{}:
		case <-s.stopCh:
			return nil
		}
	}

	select {
	case req := <-s.reqCh:
		s.pending = &req

		s.logger.Debug("requirement raised", "require", req.String())
		metrics.IncrCounter([]string{machineMetrics, "require", req.Type.String()}, 1)

		return &req

	case outcome := <-s.doneCh:
		s.seal(outcome)

		return nil

	case <-s.stopCh:
		return nil
	}
}

// run is the execution goroutine. It parks inside the host view whenever a
// fact is missing and unwinds through a sentinel panic when the session is
// closed underneath it.
func (s *Session) run() {
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && errors.Is(err, errUnwind) {
				return
			}

			panic(r)
		}
	}()

	view := &hostView{
		s: s,
		txCtx: runtime.TxContext{
			GasPrice:   types.U256Copy(s.tx.GasPrice),
			Origin:     s.tx.Caller,
			Coinbase:   s.header.Beneficiary,
			Number:     s.header.Number,
			Timestamp:  s.header.Timestamp,
			GasLimit:   s.header.GasLimit,
			Difficulty: types.U256Copy(s.header.Difficulty),
		},
	}

	outcome := view.transition()

	select {
	case s.doneCh <- outcome:
	case <-s.stopCh:
	}
}

// seal freezes the session into its terminal state
func (s *Session) seal(o *txOutcome) {
	s.status = o.status
	s.pending = nil

	res := &sessionResult{
		gasUsed: o.gasUsed,
		refund:  o.refund,
		output:  o.output,
		err:     o.err,
	}

	if o.status != Unsupported {
		res.logs = s.journal.Logs()
		res.changes = s.journal.freeze(s.facts, s.patch)
		res.suicides = s.journal.Suicides()
	}

	s.result = res

	s.logger.Debug("session sealed", "status", s.status.String(), "gas", o.gasUsed)
	metrics.IncrCounter([]string{machineMetrics, "exit", s.status.String()}, 1)
}

func (s *Session) isClosed() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Close tears down the session. Closing in the middle of execution discards
// the in-flight transaction. Close is idempotent and safe to call at any
// point.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})

	s.wg.Wait()
}

// Status returns the current status of the session
func (s *Session) Status() Status {
	return s.status
}

// Pending returns the requirement waiting for a commit, if any
func (s *Session) Pending() *Require {
	if s.pending == nil {
		return nil
	}

	req := *s.pending

	return &req
}

func (s *Session) rejectCommit(err error) error {
	metrics.IncrCounter([]string{machineMetrics, "commit", "rejected"}, 1)

	return err
}

// acceptCommit validates that a commit answers the pending requirement.
// Rejected commits leave the session untouched.
func (s *Session) acceptCommit(typ RequireType, addr types.Address) error {
	if s.isClosed() {
		return s.rejectCommit(ErrSessionClosed)
	}

	if s.pending == nil {
		return s.rejectCommit(ErrNoPendingRequire)
	}

	if s.pending.Type != typ || s.pending.Address != addr {
		return s.rejectCommit(ErrCommitMismatch)
	}

	return nil
}

func (s *Session) commitDone() {
	req := s.pending
	s.pending = nil

	s.logger.Debug("commit accepted", "require", req.String())
	metrics.IncrCounter([]string{machineMetrics, "commit", "accepted"}, 1)
}

// CommitAccount answers an Account requirement with the account shell. A
// nil code means the code is not supplied: if execution ever needs it, an
// AccountCode requirement follows. An empty non-nil code is known empty.
func (s *Session) CommitAccount(addr types.Address, nonce uint64, balance *uint256.Int, code []byte) error {
	if err := s.acceptCommit(RequireAccount, addr); err != nil {
		return err
	}

	s.facts.setAccount(addr, nonce, balance, code)
	s.commitDone()

	return nil
}

// CommitNonexist answers an Account requirement stating that the account
// does not exist
func (s *Session) CommitNonexist(addr types.Address) error {
	if err := s.acceptCommit(RequireAccount, addr); err != nil {
		return err
	}

	s.facts.setNonexist(addr)
	s.commitDone()

	return nil
}

// CommitAccountCode answers an AccountCode requirement
func (s *Session) CommitAccountCode(addr types.Address, code []byte) error {
	if err := s.acceptCommit(RequireAccountCode, addr); err != nil {
		return err
	}

	if _, ok := s.facts.account(addr); !ok {
		return s.rejectCommit(ErrNoAccountShell)
	}

	s.facts.setCode(addr, code)
	s.commitDone()

	return nil
}

// CommitAccountStorage answers an AccountStorage requirement for one slot
func (s *Session) CommitAccountStorage(addr types.Address, key types.Hash, value types.Hash) error {
	if err := s.acceptCommit(RequireAccountStorage, addr); err != nil {
		return err
	}

	if s.pending.StorageKey != key {
		return s.rejectCommit(ErrCommitMismatch)
	}

	s.facts.setStorage(addr, key, value)
	s.commitDone()

	return nil
}

// CommitBlockhash answers a Blockhash requirement. The number must be the
// one the requirement asked for.
func (s *Session) CommitBlockhash(number uint64, hash types.Hash) error {
	if s.isClosed() {
		return s.rejectCommit(ErrSessionClosed)
	}

	if s.pending == nil {
		return s.rejectCommit(ErrNoPendingRequire)
	}

	if s.pending.Type != RequireBlockhash || s.pending.BlockNumber != number {
		return s.rejectCommit(ErrCommitMismatch)
	}

	s.facts.setBlockhash(number, hash)
	s.commitDone()

	return nil
}
