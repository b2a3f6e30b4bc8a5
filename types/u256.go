package types

import (
	"github.com/holiman/uint256"
)

// U256ToHash packs a 256 bit integer into its fixed-width big-endian form.
func U256ToHash(v *uint256.Int) Hash {
	if v == nil {
		return ZeroHash
	}

	return Hash(v.Bytes32())
}

// HashToU256 reads a fixed-width big-endian value back into an integer.
func HashToU256(h Hash) *uint256.Int {
	return new(uint256.Int).SetBytes(h[:])
}

// U256Copy returns an owned copy of v, treating nil as zero.
func U256Copy(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}

	return new(uint256.Int).Set(v)
}
