package conformance

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"
)

func TestTamperValueDiffers(t *testing.T) {
	require.Zero(t, tamperValue(big.NewInt(252)).Sign())
	require.Equal(t, big.NewInt(1), tamperValue(new(big.Int)))
}

func TestFixedInstanceArrayPacks(t *testing.T) {
	const verifyABI = `[{"type":"function","name":"verify","stateMutability":"view",` +
		`"inputs":[{"name":"pubInputs","type":"uint256[2]"},{"name":"proof","type":"bytes"}],` +
		`"outputs":[{"name":"success","type":"bool"}]}]`
	parsed, err := abi.JSON(strings.NewReader(verifyABI))
	require.NoError(t, err)

	instances := []*big.Int{big.NewInt(1), big.NewInt(2)}
	data, err := parsed.Pack("verify", fixedInstanceArray(instances), []byte{0xaa})
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
