package proving_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/base-org/evm-verifier-harness/circuits"
	"github.com/base-org/evm-verifier-harness/proving"
)

func mulCircuit() *circuits.MulCircuit {
	return &circuits.MulCircuit{Constant: big.NewInt(7)}
}

func mulAssignment(c int64) *circuits.MulCircuit {
	return &circuits.MulCircuit{Constant: big.NewInt(7), A: 2, B: 3, C: c}
}

func TestSetup(t *testing.T) {
	compiled, err := proving.Setup(proving.Parameters{K: 8}, circuits.MulCircuitMetadata, mulCircuit())
	require.NoError(t, err)
	require.NotNil(t, compiled.Ccs)
	require.NotNil(t, compiled.Pk)
	require.NotNil(t, compiled.Vk)
}

func TestSetupCapacityExceeded(t *testing.T) {
	_, err := proving.Setup(proving.Parameters{K: 1}, circuits.MulCircuitMetadata, mulCircuit())
	require.Error(t, err)
	require.True(t, errors.Is(err, proving.ErrCapacityExceeded))
}

func TestSetupCacheMemoizes(t *testing.T) {
	cache := proving.NewSetupCache()
	params := proving.Parameters{K: 8}

	first, firstProto, err := cache.Load(params, circuits.MulCircuitMetadata, mulCircuit())
	require.NoError(t, err)
	second, secondProto, err := cache.Load(params, circuits.MulCircuitMetadata, mulCircuit())
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Same(t, firstProto, secondProto)
}
