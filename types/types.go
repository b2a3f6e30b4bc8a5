package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/sha3"

	"github.com/0xPolygon/evm-machine/helper/hex"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}

	// EmptyCodeHash is the keccak256 hash of empty code
	EmptyCodeHash = StringToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

// Hash is a fixed-width 32 byte value, big-endian at the boundary
type Hash [HashLength]byte

// Address is a fixed-width 20 byte account address
type Address [AddressLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

// checksumEncode returns the checksummed address (EIP-55)
func (a Address) checksumEncode() string {
	addrBytes := a.Bytes()

	lowercaseHex := hex.EncodeToString(addrBytes)
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lowercaseHex))
	hashedAddress := hex.EncodeToString(hasher.Sum(nil))

	result := make([]rune, 0, len(lowercaseHex))

	for idx, ch := range lowercaseHex {
		if ch >= '0' && ch <= '9' || hashedAddress[idx] < '8' {
			result = append(result, ch)
		} else {
			result = append(result, unicode.ToUpper(ch))
		}
	}

	return "0x" + string(result)
}

func (a Address) String() string {
	return a.checksumEncode()
}

func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}

// IsValidAddress checks if provided string is a valid Ethereum address
func IsValidAddress(address string) error {
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("address %s has invalid format", address)
	}

	raw := strings.TrimPrefix(address, "0x")
	if len(raw) != AddressLength*2 {
		return fmt.Errorf("address %s has invalid length", address)
	}

	if _, err := hex.DecodeString(raw); err != nil {
		return fmt.Errorf("address %s has invalid characters", address)
	}

	return nil
}

func stringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(stringToBytes(string(input)))

	return nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	buf := stringToBytes(string(input))
	if len(buf) != AddressLength {
		return errors.New("incorrect address length")
	}

	*a = BytesToAddress(buf)

	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
