package proving

import (
	"math/big"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
)

type ProveResult struct {
	Data []byte
	Err  error
}

type CompiledCircuit struct {
	Ccs constraint.ConstraintSystem
	Pk  plonk.ProvingKey
	Vk  plonk.VerifyingKey
}

// Generated bundles everything one pipeline run needs downstream of proving:
// the proof in both native and EVM calldata form, the public instance values
// the verifier must be called with, and the protocol description the verifier
// program is generated from. ProofCalldata is reused verbatim by both the
// honest and the tampered assertion call.
type Generated struct {
	Proof         plonk.Proof
	ProofCalldata []byte
	Instances     []*big.Int
	Protocol      *ProtocolDescription
}
