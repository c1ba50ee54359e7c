package proving

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"runtime/debug"

	"github.com/consensys/gnark-crypto/ecc"
	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"
	pbn254 "github.com/consensys/gnark/backend/plonk/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/circuits"
)

// Prove produces a proof over the full witness and immediately checks it
// against the verifying key. A witness that does not satisfy the circuit
// fails here, deterministically, before any proof bytes leave the package.
func Prove(c *CompiledCircuit, wit witness.Witness) (plonk.Proof, error) {
	publicWitness, err := wit.Public()
	if err != nil {
		return nil, err
	}
	proof, err := plonk.Prove(c.Ccs, c.Pk, wit)
	if err != nil {
		return nil, err
	}
	if err = plonk.Verify(proof, c.Vk, publicWitness); err != nil {
		return nil, err
	}
	return proof, nil
}

func ProveAsync(compiled *CompiledCircuit, field *big.Int, wit []byte, result chan ProveResult) {
	go func() {
		w, err := witness.New(field)
		if err != nil {
			result <- ProveResult{Err: err}
			return
		}
		if err = w.UnmarshalBinary(wit); err != nil {
			result <- ProveResult{Err: err}
			return
		}

		pr, err := Prove(compiled, w)
		if err != nil {
			result <- ProveResult{Err: err}
			return
		}

		var buf bytes.Buffer
		if _, err = pr.WriteTo(&buf); err != nil {
			result <- ProveResult{Err: err}
			return
		}

		result <- ProveResult{Data: buf.Bytes()}
	}()
}

// Generate runs the full proving stage for one assignment: proof, EVM
// calldata form of the proof, public instance values, and the protocol
// description the verifier program will be generated from. The description
// comes from the setup cache so it is compiled once per
// (parameters, circuit, instances) triple, not once per proof.
func Generate(cm *circuits.Metadata, compiled *CompiledCircuit, protocol *ProtocolDescription, assignment frontend.Circuit) (g *Generated, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v, stack: %s", r, string(debug.Stack()))
		}
	}()
	g, err = generate(cm, compiled, protocol, assignment)
	return
}

func generate(cm *circuits.Metadata, compiled *CompiledCircuit, protocol *ProtocolDescription, assignment frontend.Circuit) (*Generated, error) {
	w, err := frontend.NewWitness(assignment, cm.Field)
	if err != nil {
		return nil, err
	}
	wit, err := w.MarshalBinary()
	if err != nil {
		return nil, err
	}

	result := make(chan ProveResult, 1)
	log.Info("Proving", "id", cm.Id)
	ProveAsync(compiled, cm.Field, wit, result)
	r := <-result
	log.Info("Proof generation complete", "id", cm.Id, "error", r.Err)
	if r.Err != nil {
		return nil, r.Err
	}

	proof, err := cm.EmptyProof()
	if err != nil {
		return nil, err
	}
	if _, err = proof.ReadFrom(bytes.NewBuffer(r.Data)); err != nil {
		return nil, err
	}

	calldata, err := SolidityCalldata(proof)
	if err != nil {
		return nil, err
	}

	publicWitness, err := w.Public()
	if err != nil {
		return nil, err
	}
	instances, err := InstanceValues(publicWitness)
	if err != nil {
		return nil, err
	}
	if len(instances) != cm.NbInstances {
		return nil, fmt.Errorf("circuit %s produced %d instance values, metadata declares %d",
			cm.Id, len(instances), cm.NbInstances)
	}

	return &Generated{
		Proof:         proof,
		ProofCalldata: calldata,
		Instances:     instances,
		Protocol:      protocol,
	}, nil
}

// SolidityCalldata serializes a proof into the byte layout the generated
// Solidity verifier deserializes.
func SolidityCalldata(proof plonk.Proof) ([]byte, error) {
	bproof, ok := proof.(*pbn254.Proof)
	if !ok {
		return nil, errors.New("proof is not on bn254")
	}
	return bproof.MarshalSolidity(), nil
}

// InstanceValues extracts the public witness as unsigned integers in the
// canonical field-element encoding, the representation the on-chain verifier
// is called with. The values must match those used at proof creation exactly.
func InstanceValues(public witness.Witness) ([]*big.Int, error) {
	vector, ok := public.Vector().(fr_bn254.Vector)
	if !ok {
		return nil, fmt.Errorf("unsupported witness vector for field %s", ecc.BN254.ScalarField())
	}
	values := make([]*big.Int, len(vector))
	for i := range vector {
		values[i] = vector[i].BigInt(new(big.Int))
	}
	return values, nil
}
