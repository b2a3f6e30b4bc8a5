package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		fork  Fork
		rules ForksInTime
	}{
		{
			fork:  Frontier,
			rules: ForksInTime{},
		},
		{
			fork:  Homestead,
			rules: ForksInTime{Homestead: true},
		},
		{
			fork:  EIP150,
			rules: ForksInTime{Homestead: true, EIP150: true},
		},
		{
			fork:  EIP160,
			rules: ForksInTime{Homestead: true, EIP150: true, EIP160: true},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.fork.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.rules, Mainnet(c.fork).Rules())
		})
	}
}

func TestPatchGasTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GasTableHomestead, Mainnet(Frontier).GasTable())
	assert.Equal(t, GasTableHomestead, Mainnet(Homestead).GasTable())
	assert.Equal(t, GasTableEIP150, Mainnet(EIP150).GasTable())
	assert.Equal(t, GasTableEIP160, Mainnet(EIP160).GasTable())

	// EIP160 reprices exp only, on top of the EIP150 schedule
	assert.Equal(t, uint64(50), GasTableEIP160.ExpByte)
	assert.Equal(t, uint64(10), GasTableEIP150.ExpByte)
}

func TestPatchInitialNonce(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0), Mainnet(EIP160).InitialNonce)
	assert.Equal(t, uint64(1048576), Morden(Homestead).InitialNonce)
	assert.Equal(t, uint64(42), Custom(Frontier, 42).InitialNonce)
}

func TestForkSupported(t *testing.T) {
	t.Parallel()

	for _, f := range []Fork{Frontier, Homestead, EIP150, EIP160} {
		assert.True(t, f.Supported())
	}

	assert.False(t, Fork(200).Supported())
	assert.Equal(t, "unknown", Fork(200).String())
}
