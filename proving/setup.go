package proving

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/circuits"
)

// ErrCapacityExceeded is returned when a circuit needs more rows than the
// parameters it is being set up against can commit to. This is a precondition
// failure: the run must abort, there is nothing to retry.
var ErrCapacityExceeded = errors.New("circuit rows exceed parameter capacity")

// Parameters sizes the structured reference string used for key generation.
// A circuit set up against Parameters{K: k} may use at most 2^k rows.
type Parameters struct {
	K int
}

func (p Parameters) MaxRows() int {
	return 1 << p.K
}

// Setup compiles the circuit into a constraint system and derives the
// proving and verifying keys. Key derivation is deterministic for a fixed
// (parameters, circuit shape) pair up to the SRS secret, which the unsafe
// test SRS draws internally.
func Setup(params Parameters, cm *circuits.Metadata, circuit frontend.Circuit) (*CompiledCircuit, error) {
	ccs, err := frontend.Compile(cm.Field, scs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit %s: %w", cm.Id, err)
	}

	rows := ccs.GetNbConstraints() + ccs.GetNbPublicVariables()
	if rows > params.MaxRows() {
		return nil, fmt.Errorf("%w: %s needs %d rows, parameters allow 2^%d",
			ErrCapacityExceeded, cm.Id, rows, params.K)
	}
	log.Info("Compiled circuit", "id", cm.Id, "rows", rows, "capacity", params.MaxRows())

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, fmt.Errorf("generate SRS: %w", err)
	}

	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, fmt.Errorf("plonk setup: %w", err)
	}

	return &CompiledCircuit{Ccs: ccs, Pk: pk, Vk: vk}, nil
}
