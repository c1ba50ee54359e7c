package conformance_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/base-org/evm-verifier-harness/artifact"
	"github.com/base-org/evm-verifier-harness/chain"
	"github.com/base-org/evm-verifier-harness/circuits"
	"github.com/base-org/evm-verifier-harness/conformance"
	"github.com/base-org/evm-verifier-harness/proving"
	"github.com/base-org/evm-verifier-harness/proving/storage"
	"github.com/base-org/evm-verifier-harness/transpile"
)

func mulCircuit() *circuits.MulCircuit {
	return &circuits.MulCircuit{Constant: big.NewInt(7)}
}

func mulAssignment(c int64) *circuits.MulCircuit {
	return &circuits.MulCircuit{Constant: big.NewInt(7), A: 2, B: 3, C: c}
}

func requireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not installed", tool)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	requireTools(t, "solc", "anvil")
	if testing.Short() {
		t.Skip("end to end run in short mode")
	}

	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	report, err := conformance.Run(ctx, conformance.Config{
		Params:     proving.Parameters{K: 8},
		Metadata:   circuits.MulCircuitMetadata,
		Circuit:    mulCircuit(),
		Assignment: mulAssignment(252),
		Transpiler: transpile.SolidityTranspiler{},
		Store:      storage.NewFileStorage(dir),
		Port:       39831,
	})
	require.NoError(t, err)

	require.True(t, report.Accepted)
	require.True(t, report.Rejected)
	require.NotEqual(t, common.Address{}, report.Address)
	require.Positive(t, report.RuntimeSize)
	require.LessOrEqual(t, report.RuntimeSize, artifact.MaxRuntimeBytecodeSize)

	// Both intermediate sources survive the run for inspection.
	_, err = os.Stat(filepath.Join(dir, report.RawSourceKey))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, report.SourceKey))
	require.NoError(t, err)
}

type failingTranspiler struct{}

func (failingTranspiler) Lower(*proving.ProtocolDescription, plonk.VerifyingKey) (string, error) {
	return "", errors.New("lowering failed")
}

func (failingTranspiler) Fixup(string, int) (string, error) {
	return "", errors.New("unreachable")
}

func TestRunStopsAtTranspileFailure(t *testing.T) {
	report, err := conformance.Run(context.Background(), conformance.Config{
		Params:     proving.Parameters{K: 8},
		Metadata:   circuits.MulCircuitMetadata,
		Circuit:    mulCircuit(),
		Assignment: mulAssignment(252),
		Transpiler: failingTranspiler{},
		Store:      storage.NewFileStorage(t.TempDir()),
		// Anything past the failing stage would error loudly.
		AnvilPath: "/nonexistent/anvil",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "transpile")
	require.Zero(t, report.RuntimeSize)
	require.Equal(t, common.Address{}, report.Address)
	require.False(t, report.Accepted)
}

// fakeOversizedSolc installs a stand-in compiler that emits a runtime
// bytecode one byte over the ceiling, regardless of input.
func fakeOversizedSolc(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	abiJSON := `[{"type":"function","name":"verify","stateMutability":"view",` +
		`"inputs":[{"name":"pubInputs","type":"uint256[1]"},{"name":"proof","type":"bytes"}],` +
		`"outputs":[{"name":"success","type":"bool"}]}]`
	output := fmt.Sprintf(
		`{"contracts":{"Verifier.sol":{"Verifier":{"abi":%s,"evm":{"bytecode":{"object":"00"},"deployedBytecode":{"object":%q}}}}}}`,
		abiJSON, strings.Repeat("00", artifact.MaxRuntimeBytecodeSize+1))

	outputPath := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(outputPath, []byte(output), 0o600))

	script := filepath.Join(dir, "fake-solc")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat "+outputPath+"\n"), 0o755))
	return script
}

func TestRunFailsOnOversizedRuntimeBeforeSpawn(t *testing.T) {
	report, err := conformance.Run(context.Background(), conformance.Config{
		Params:     proving.Parameters{K: 8},
		Metadata:   circuits.MulCircuitMetadata,
		Circuit:    mulCircuit(),
		Assignment: mulAssignment(252),
		Transpiler: transpile.SolidityTranspiler{},
		Store:      storage.NewFileStorage(t.TempDir()),
		SolcPath:   fakeOversizedSolc(t),
		// A spawn attempt would surface as a different error, proving the
		// run stopped at the size gate.
		AnvilPath: "/nonexistent/anvil",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, artifact.ErrRuntimeCodeTooLarge))
	require.Equal(t, common.Address{}, report.Address)
}

func TestDeployTwiceDistinctAddresses(t *testing.T) {
	requireTools(t, "solc", "anvil")
	if testing.Short() {
		t.Skip("end to end run in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	cache := proving.NewSetupCache()
	compiled, protocol, err := cache.Load(proving.Parameters{K: 8}, circuits.MulCircuitMetadata, mulCircuit())
	require.NoError(t, err)
	gen, err := proving.Generate(circuits.MulCircuitMetadata, compiled, protocol, mulAssignment(252))
	require.NoError(t, err)

	bridge := transpile.NewBridge(transpile.SolidityTranspiler{}, storage.NewFileStorage(t.TempDir()))
	source, err := bridge.Generate(gen.Protocol, compiled.Vk)
	require.NoError(t, err)

	art, err := artifact.NewBuilder("").Compile(ctx, source, transpile.ContractName, nil)
	require.NoError(t, err)

	h := chain.NewHarness("", 39832)
	require.NoError(t, h.Start(ctx))
	defer h.Stop()
	client, err := h.Bind(ctx, "")
	require.NoError(t, err)
	defer client.Close()

	first, err := chain.Deploy(ctx, client, art)
	require.NoError(t, err)
	second, err := chain.Deploy(ctx, client, art)
	require.NoError(t, err)
	require.NotEqual(t, first.Address, second.Address)

	// Both instances answer identically for the same artifact.
	require.NoError(t, conformance.AssertAccepts(ctx, client, first, gen.Instances, gen.ProofCalldata))
	require.NoError(t, conformance.AssertAccepts(ctx, client, second, gen.Instances, gen.ProofCalldata))
	require.NoError(t, conformance.AssertRejectsOnTamper(ctx, client, second, gen.Instances, gen.ProofCalldata, 0))
}
