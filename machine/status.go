package machine

// Status is the lifecycle state of a session. It moves from Running to
// exactly one of the exited states and never changes afterwards.
type Status int

const (
	// Running means the session still accepts Fire calls
	Running Status = iota
	// ExitedOk means the transaction executed to completion
	ExitedOk
	// ExitedErr means the transaction was rejected up front or its
	// execution failed
	ExitedErr
	// Unsupported means the action or code cannot be executed under the
	// selected patch. This is a host configuration issue, not a
	// transaction outcome.
	Unsupported
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case ExitedOk:
		return "exited_ok"
	case ExitedErr:
		return "exited_err"
	case Unsupported:
		return "unsupported"
	}

	return "unknown"
}

// Terminal reports whether the session has exited.
func (s Status) Terminal() bool {
	return s != Running
}
