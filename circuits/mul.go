package circuits

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
)

// MulCircuit proves knowledge of private a, b such that
// c == Constant * a^2 * b^2 for the single public output c.
// Constant is baked into the constraint system at compile time, so it must be
// set on the circuit instance handed to the compiler, not on the witness.
type MulCircuit struct {
	A frontend.Variable
	B frontend.Variable
	C frontend.Variable `gnark:",public"`

	Constant *big.Int
}

func (c *MulCircuit) Define(api frontend.API) error {
	// ab   = a*b
	// absq = ab^2
	// c    = constant*absq
	ab := api.Mul(c.A, c.B)
	absq := api.Mul(ab, ab)
	api.AssertIsEqual(c.C, api.Mul(c.Constant, absq))
	return nil
}

var MulCircuitMetadata = &Metadata{
	Id:          "MulCircuit",
	Field:       ecc.BN254.ScalarField(),
	NbInstances: 1,
}
