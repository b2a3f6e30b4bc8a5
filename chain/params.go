package chain

// Fork is a named protocol ruleset. Forks are ordered: a later fork
// includes the rules of every earlier one.
type Fork uint8

// predefined forks
const (
	Frontier Fork = iota
	Homestead
	EIP150
	EIP160
)

func (f Fork) String() string {
	switch f {
	case Frontier:
		return "frontier"
	case Homestead:
		return "homestead"
	case EIP150:
		return "EIP150"
	case EIP160:
		return "EIP160"
	}

	return "unknown"
}

// Supported reports whether f is one of the named forks.
func (f Fork) Supported() bool {
	return f <= EIP160
}

// MordenInitialNonce is the initial account nonce on the Morden testnet,
// chosen so that testnet transactions cannot be replayed on mainnet.
const MordenInitialNonce = uint64(1) << 20

// Patch selects the complete ruleset for one execution: the fork plus the
// network parameters layered on top of it. It is a plain value fixed at
// session creation. Custom networks carry their initial nonce here instead
// of any process-wide setting.
type Patch struct {
	Fork         Fork
	InitialNonce uint64
}

// Mainnet returns the mainnet patch for the given fork.
func Mainnet(fork Fork) Patch {
	return Patch{Fork: fork}
}

// Morden returns the Morden testnet patch for the given fork.
func Morden(fork Fork) Patch {
	return Patch{Fork: fork, InitialNonce: MordenInitialNonce}
}

// Custom returns a patch for a custom network with its own initial nonce.
func Custom(fork Fork, initialNonce uint64) Patch {
	return Patch{Fork: fork, InitialNonce: initialNonce}
}

// ForksInTime holds the cumulative feature flags active under a patch
type ForksInTime struct {
	Homestead,
	EIP150,
	EIP160 bool
}

// Rules returns the feature flags active under p.
func (p Patch) Rules() ForksInTime {
	return ForksInTime{
		Homestead: p.Fork >= Homestead,
		EIP150:    p.Fork >= EIP150,
		EIP160:    p.Fork >= EIP160,
	}
}

// GasTable returns the variable-cost schedule for p.
func (p Patch) GasTable() GasTable {
	switch {
	case p.Fork >= EIP160:
		return GasTableEIP160
	case p.Fork >= EIP150:
		return GasTableEIP150
	default:
		return GasTableHomestead
	}
}
