package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xPolygon/evm-machine/helper/hex"
	"github.com/0xPolygon/evm-machine/types"
)

func TestCreateAddress(t *testing.T) {
	t.Parallel()

	caller := types.StringToAddress("0x970e8128ab834e8eac17ab8e3812f010678cf791")

	cases := []struct {
		nonce    uint64
		expected string
	}{
		{0, "0x333c3310824b7c685133f2bedb2ca4b8b4df633d"},
		{1, "0x8bda78331c916a08481428e4b07c96d3e916d165"},
		{2, "0xc9ddedf451bc62ce88bf9292afb13df35b670699"},
	}

	for _, c := range cases {
		assert.Equal(t, types.StringToAddress(c.expected), CreateAddress(caller, c.nonce))
	}
}

func TestKeccak256(t *testing.T) {
	t.Parallel()

	assert.Equal(t, types.EmptyCodeHash, Keccak256Hash(nil))
	assert.Equal(
		t,
		hex.MustDecodeHex("0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"),
		Keccak256([]byte("abc")),
	)

	// multiple writes hash the concatenation
	assert.Equal(t, Keccak256([]byte("abc")), Keccak256([]byte("a"), []byte("bc")))
}
