// Package transpile turns a protocol description into verifier program
// source for the target execution environment. Code generation itself is an
// external capability behind the Transpiler interface; this package wires it
// into the pipeline and retains both the raw and the corrected source as
// inspectable artifacts.
package transpile

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/consensys/gnark/backend/plonk"

	"github.com/base-org/evm-verifier-harness/proving"
)

// Artifact keys for the two source files every run leaves behind.
const (
	RawSourceKey = "verifier.raw.sol"
	SourceKey    = "verifier.sol"
)

// ContractName is the deployable contract the corrected source must define.
const ContractName = "Verifier"

// Transpiler produces verifier program source from a protocol description.
// Lower re-expresses the verification algorithm in execution-environment
// semantics; Fixup rewrites the raw output into source that is deployable
// as-is, given the known instance count. Implementations must replay the
// description's challenge derivation order exactly.
type Transpiler interface {
	Lower(desc *proving.ProtocolDescription, vk plonk.VerifyingKey) (string, error)
	Fixup(raw string, nbInstances int) (string, error)
}

// evmChallengeOrder is the Fiat-Shamir sequence the generated EVM verifier
// replays. A description deriving challenges in any other order would verify
// against a different transcript than the off-chain key did.
var evmChallengeOrder = []string{"gamma", "beta", "alpha", "zeta"}

// SolidityTranspiler lowers through gnark's Solidity export and fixes the
// result up with a wrapper exposing the harness ABI:
// verify(uint256[N] pubInputs, bytes proof) -> bool.
type SolidityTranspiler struct{}

func (SolidityTranspiler) Lower(desc *proving.ProtocolDescription, vk plonk.VerifyingKey) (string, error) {
	if err := checkChallengeOrder(desc); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := vk.ExportSolidity(&buf); err != nil {
		return "", fmt.Errorf("export verifier source: %w", err)
	}
	return buf.String(), nil
}

func (SolidityTranspiler) Fixup(raw string, nbInstances int) (string, error) {
	if nbInstances < 1 {
		return "", fmt.Errorf("verifier needs at least one public input, got %d", nbInstances)
	}
	var wrapper bytes.Buffer
	if err := wrapperTmpl.Execute(&wrapper, struct{ N int }{N: nbInstances}); err != nil {
		return "", fmt.Errorf("render wrapper: %w", err)
	}
	return raw + wrapper.String(), nil
}

func checkChallengeOrder(desc *proving.ProtocolDescription) error {
	got := desc.ChallengeOrder()
	if len(got) != len(evmChallengeOrder) {
		return fmt.Errorf("description derives %d challenges, EVM verifier replays %d", len(got), len(evmChallengeOrder))
	}
	for i, name := range evmChallengeOrder {
		if got[i] != name {
			return fmt.Errorf("challenge order mismatch at %d: description %q, EVM verifier %q",
				i, strings.Join(got, ","), strings.Join(evmChallengeOrder, ","))
		}
	}
	return nil
}

// The wrapper is appended to the raw source, so it shares its pragma. The
// exposed function takes the public inputs as a fixed-size array and hands
// them to the generated verifier through an external self-call, which keeps
// the call read-only.
var wrapperTmpl = template.Must(template.New("wrapper").Parse(`
contract Verifier is PlonkVerifier {
    function verify(uint256[{{.N}}] calldata pubInputs, bytes calldata proof)
        external
        view
        returns (bool success)
    {
        uint256[] memory inputs = new uint256[]({{.N}});
        for (uint256 i = 0; i < {{.N}}; i++) {
            inputs[i] = pubInputs[i];
        }
        return this.Verify(proof, inputs);
    }
}
`))
