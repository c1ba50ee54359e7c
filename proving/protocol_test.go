package proving_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/require"

	"github.com/base-org/evm-verifier-harness/proving"
)

func TestCompileProtocol(t *testing.T) {
	compiled, _ := setupMul(t)

	desc, err := proving.CompileProtocol(compiled.Vk, 1)
	require.NoError(t, err)

	require.Equal(t, ecc.BN254, desc.Curve)
	require.Equal(t, 1, desc.NbInstances)
	require.NotZero(t, desc.DomainSize)
	require.Equal(t, []string{"gamma", "beta", "alpha", "zeta"}, desc.ChallengeOrder())

	// The first challenge must bind the instance values, otherwise tampered
	// public inputs would derive the honest transcript.
	require.Contains(t, desc.Steps[0].Binds, "instance[0]")
}

func TestCompileProtocolDeterministic(t *testing.T) {
	compiled, _ := setupMul(t)

	first, err := proving.CompileProtocol(compiled.Vk, 1)
	require.NoError(t, err)
	second, err := proving.CompileProtocol(compiled.Vk, 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCompileProtocolInstanceMismatch(t *testing.T) {
	compiled, _ := setupMul(t)

	_, err := proving.CompileProtocol(compiled.Vk, 2)
	require.Error(t, err)
}
