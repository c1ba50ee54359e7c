package circuits

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
)

func TestMulCircuitSolved(t *testing.T) {
	assert := test.NewAssert(t)

	constant := big.NewInt(7)
	// c = 7 * 2^2 * 3^2 = 252
	assignment := &MulCircuit{Constant: constant, A: 2, B: 3, C: 252}
	err := test.IsSolved(&MulCircuit{Constant: constant}, assignment, ecc.BN254.ScalarField())
	assert.NoError(err)
}

func TestMulCircuitUnsatisfied(t *testing.T) {
	constant := big.NewInt(7)
	bad := &MulCircuit{Constant: constant, A: 2, B: 3, C: 251}
	err := test.IsSolved(&MulCircuit{Constant: constant}, bad, ecc.BN254.ScalarField())
	if err == nil {
		t.Fatal("expected unsatisfied constraint for wrong public output")
	}
}
