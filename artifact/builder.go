// Package artifact compiles verifier program source into a deployable unit
// and enforces the execution environment's code-size ceiling before anything
// touches the network.
package artifact

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/log"
)

// MaxRuntimeBytecodeSize is the hard deployability ceiling of the target
// environment. Runtime code over this size would be rejected at deployment,
// so the build fails first.
const MaxRuntimeBytecodeSize = 24577

var (
	// ErrContractNotFound means the compiler output has no contract of the
	// requested name: the fix-up output does not have the expected shape.
	ErrContractNotFound = errors.New("contract not found in compiler output")
	// ErrRuntimeCodeTooLarge means the compiled runtime bytecode exceeds
	// MaxRuntimeBytecodeSize.
	ErrRuntimeCodeTooLarge = errors.New("runtime bytecode exceeds deployable size limit")
)

// Artifact is one compiled deployable unit.
type Artifact struct {
	ABI        abi.ABI
	RawABI     json.RawMessage
	Bin        []byte
	RuntimeBin []byte
}

func (a *Artifact) RuntimeSize() int {
	return len(a.RuntimeBin)
}

// Builder drives the external Solidity compiler over its standard-JSON
// interface.
type Builder struct {
	SolcPath string
}

func NewBuilder(solcPath string) *Builder {
	if solcPath == "" {
		solcPath = "solc"
	}
	return &Builder{SolcPath: solcPath}
}

type solcSource struct {
	Content string `json:"content"`
}

type solcOptimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs,omitempty"`
}

type solcSettings struct {
	Optimizer       solcOptimizer                  `json:"optimizer"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type solcInput struct {
	Language string                `json:"language"`
	Sources  map[string]solcSource `json:"sources"`
	Settings solcSettings          `json:"settings"`
}

type solcError struct {
	Severity         string `json:"severity"`
	FormattedMessage string `json:"formattedMessage"`
}

type solcBytecode struct {
	Object string `json:"object"`
}

type solcContract struct {
	ABI json.RawMessage `json:"abi"`
	EVM struct {
		Bytecode         solcBytecode `json:"bytecode"`
		DeployedBytecode solcBytecode `json:"deployedBytecode"`
	} `json:"evm"`
}

type solcOutput struct {
	Errors    []solcError                        `json:"errors"`
	Contracts map[string]map[string]solcContract `json:"contracts"`
}

const sourceUnit = "Verifier.sol"

// Compile builds the named contract from source. When optimizerRuns is
// non-nil the optimizer is enabled with that run count, otherwise the source
// is compiled unoptimized. The returned artifact is guaranteed to fit the
// deployable size ceiling.
func (b *Builder) Compile(ctx context.Context, source, contractName string, optimizerRuns *int) (*Artifact, error) {
	input := solcInput{
		Language: "Solidity",
		Sources:  map[string]solcSource{sourceUnit: {Content: source}},
		Settings: solcSettings{
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode.object", "evm.deployedBytecode.object"}},
			},
		},
	}
	if optimizerRuns != nil {
		input.Settings.Optimizer = solcOptimizer{Enabled: true, Runs: *optimizerRuns}
	}

	request, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, b.SolcPath, "--standard-json")
	cmd.Stdin = bytes.NewReader(request)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", b.SolcPath, err, stderr.String())
	}

	art, err := parseOutput(stdout.Bytes(), contractName)
	if err != nil {
		return nil, err
	}
	if err := CheckRuntimeSize(art.RuntimeBin); err != nil {
		return nil, err
	}
	log.Info("Compiled contract", "name", contractName, "runtimeBytes", art.RuntimeSize())
	return art, nil
}

func parseOutput(data []byte, contractName string) (*Artifact, error) {
	var out solcOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode compiler output: %w", err)
	}
	for _, e := range out.Errors {
		if e.Severity == "error" {
			return nil, fmt.Errorf("compile: %s", e.FormattedMessage)
		}
	}

	contract, ok := out.Contracts[sourceUnit][contractName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, contractName)
	}

	parsed, err := abi.JSON(bytes.NewReader(contract.ABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract interface: %w", err)
	}
	bin, err := hex.DecodeString(contract.EVM.Bytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("decode creation bytecode: %w", err)
	}
	runtime, err := hex.DecodeString(contract.EVM.DeployedBytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("decode runtime bytecode: %w", err)
	}

	return &Artifact{
		ABI:        parsed,
		RawABI:     contract.ABI,
		Bin:        bin,
		RuntimeBin: runtime,
	}, nil
}

// CheckRuntimeSize enforces the deployable size invariant.
func CheckRuntimeSize(runtime []byte) error {
	if len(runtime) > MaxRuntimeBytecodeSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrRuntimeCodeTooLarge, len(runtime), MaxRuntimeBytecodeSize)
	}
	return nil
}
