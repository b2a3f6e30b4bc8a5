package hex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHex(t *testing.T) {
	t.Parallel()

	cases := [][]byte{
		{},
		{0x00},
		{0x01, 0x02, 0x03},
		{0xff, 0xee, 0x00, 0x01},
	}

	for _, buf := range cases {
		encoded := EncodeToHex(buf)

		decoded, err := DecodeHex(encoded)
		require.NoError(t, err)
		assert.Equal(t, buf, decoded)

		// the prefix is optional on decode
		decoded, err = DecodeHex(EncodeToString(buf))
		require.NoError(t, err)
		assert.Equal(t, buf, decoded)
	}
}

func TestMustDecodeHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0xab, 0xcd}, MustDecodeHex("0xabcd"))

	assert.Panics(t, func() {
		MustDecodeHex("0xzz")
	})
}

// TestDecodeUint64 verifies that uint64 values
// are properly decoded from hex
func TestDecodeUint64(t *testing.T) {
	t.Parallel()

	uint64Array := []uint64{
		0,
		1,
		11,
		67312,
		80604,
		^uint64(0), // max uint64
	}

	for _, value := range uint64Array {
		decodedValue, err := DecodeUint64(fmt.Sprintf("0x%x", value))
		assert.NoError(t, err)

		assert.Equal(t, value, decodedValue)
	}
}

func TestEncodeUint64Roundtrip(t *testing.T) {
	t.Parallel()

	for _, value := range []uint64{0, 1, 0xdeadbeef, ^uint64(0)} {
		decoded, err := DecodeUint64(EncodeUint64(value))
		assert.NoError(t, err)

		assert.Equal(t, value, decoded)
	}
}
