// Package conformance orchestrates the artifact pipeline and asserts that
// the deployed verifier agrees with the off-chain one: it accepts exactly the
// (public-inputs, proof) pairs the verifying key accepts, and signals
// rejection as a boolean rather than an execution fault.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/chain"
)

// ErrCallFaulted means a verify call terminated abnormally instead of
// returning a boolean. The verifier must signal mathematical rejection as
// false, so a fault is a failure on both the positive and the negative path.
var ErrCallFaulted = errors.New("verifier call terminated abnormally")

// AssertAccepts calls the deployed verifier with the honest public inputs
// and proof and requires the call to complete normally and return true.
func AssertAccepts(ctx context.Context, client *chain.Client, deployed *chain.Deployed, instances []*big.Int, proof []byte) error {
	ok, err := callVerify(ctx, client, deployed, instances, proof)
	if err != nil {
		return fmt.Errorf("%w on honest inputs: %v", ErrCallFaulted, err)
	}
	if !ok {
		return errors.New("deployed verifier rejected a proof the verifying key accepts")
	}
	log.Info("Honest proof accepted on-chain", "address", deployed.Address)
	return nil
}

// AssertRejectsOnTamper replaces the instance value at pos with an unrelated
// value, keeps the proof unchanged, and requires the call to complete
// normally and return false.
func AssertRejectsOnTamper(ctx context.Context, client *chain.Client, deployed *chain.Deployed, instances []*big.Int, proof []byte, pos int) error {
	if pos < 0 || pos >= len(instances) {
		return fmt.Errorf("tamper position %d out of range for %d instances", pos, len(instances))
	}
	tampered := make([]*big.Int, len(instances))
	copy(tampered, instances)
	tampered[pos] = tamperValue(instances[pos])

	ok, err := callVerify(ctx, client, deployed, tampered, proof)
	if err != nil {
		return fmt.Errorf("%w on tampered input %d: %v", ErrCallFaulted, pos, err)
	}
	if ok {
		return fmt.Errorf("deployed verifier accepted a proof with tampered instance %d", pos)
	}
	log.Info("Tampered input rejected on-chain", "address", deployed.Address, "position", pos)
	return nil
}

// tamperValue picks a replacement guaranteed to differ from the original and
// not derivable from the witness. Zero, unless the original is zero.
func tamperValue(original *big.Int) *big.Int {
	if original.Sign() == 0 {
		return big.NewInt(1)
	}
	return new(big.Int)
}

func callVerify(ctx context.Context, client *chain.Client, deployed *chain.Deployed, instances []*big.Int, proof []byte) (bool, error) {
	opts := &bind.CallOpts{Context: ctx, From: client.From}
	var out []interface{}
	if err := deployed.Contract.Call(opts, &out, "verify", fixedInstanceArray(instances), proof); err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("verify returned %d values, want 1", len(out))
	}
	ok, isBool := out[0].(bool)
	if !isBool {
		return false, fmt.Errorf("verify returned %T, want bool", out[0])
	}
	return ok, nil
}

// fixedInstanceArray converts the instance slice into the fixed-size array
// value the uint256[N] parameter packs from.
func fixedInstanceArray(instances []*big.Int) interface{} {
	arr := reflect.New(reflect.ArrayOf(len(instances), reflect.TypeOf((*big.Int)(nil)))).Elem()
	for i, v := range instances {
		arr.Index(i).Set(reflect.ValueOf(v))
	}
	return arr.Interface()
}
