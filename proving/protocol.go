package proving

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	pbn254 "github.com/consensys/gnark/backend/plonk/bn254"
)

// StepKind classifies one step of the verification algorithm.
type StepKind int

const (
	// StepChallenge derives a Fiat-Shamir challenge from everything bound to
	// the transcript since the previous challenge.
	StepChallenge StepKind = iota
	// StepOpening checks claimed polynomial openings at a derived point.
	StepOpening
	// StepPairing folds the accumulated commitments and runs the final
	// pairing check against the SRS.
	StepPairing
)

func (k StepKind) String() string {
	switch k {
	case StepChallenge:
		return "challenge"
	case StepOpening:
		return "opening"
	case StepPairing:
		return "pairing"
	default:
		return "unknown"
	}
}

// Step is one entry of the verification algorithm. Binds lists the transcript
// labels absorbed before the step runs; for a challenge step their order is
// load-bearing, since reordering them changes every derived challenge.
type Step struct {
	Kind  StepKind
	Name  string
	Binds []string
}

// ProtocolDescription is a machine-independent description of the verifier:
// which commitments are bound to the transcript, in which order challenges
// are derived from them, and which opening and pairing checks close the
// argument. It is a pure function of the verifying key and the declared
// instance count and is compiled once per (parameters, circuit, instances)
// triple.
type ProtocolDescription struct {
	Curve       ecc.ID
	DomainSize  uint64
	NbInstances int
	Steps       []Step
}

// ChallengeOrder returns the names of the challenge steps in derivation
// order. Off-chain and on-chain verification must replay this sequence
// bit-identically or the two verdicts cannot be compared.
func (d *ProtocolDescription) ChallengeOrder() []string {
	var names []string
	for _, s := range d.Steps {
		if s.Kind == StepChallenge {
			names = append(names, s.Name)
		}
	}
	return names
}

// CompileProtocol derives the protocol description from a verifying key. The
// step list mirrors the gnark PLONK verifier: gamma binds the permutation and
// selector commitments plus the public inputs, beta is squeezed from the
// running transcript alone, alpha binds the grand product commitment, zeta
// binds the quotient commitments, then the batched opening at zeta and the
// final pairing close the check.
func CompileProtocol(vk plonk.VerifyingKey, nbInstances int) (*ProtocolDescription, error) {
	bvk, ok := vk.(*pbn254.VerifyingKey)
	if !ok {
		return nil, errors.New("verifying key is not on bn254")
	}
	if uint64(nbInstances) != bvk.NbPublicVariables {
		return nil, fmt.Errorf("instance count mismatch: key commits to %d public variables, circuit declares %d",
			bvk.NbPublicVariables, nbInstances)
	}

	gammaBinds := []string{"s1", "s2", "s3", "ql", "qr", "qm", "qo", "qk"}
	for i := 0; i < nbInstances; i++ {
		gammaBinds = append(gammaBinds, fmt.Sprintf("instance[%d]", i))
	}

	return &ProtocolDescription{
		Curve:       ecc.BN254,
		DomainSize:  bvk.Size,
		NbInstances: nbInstances,
		Steps: []Step{
			{Kind: StepChallenge, Name: "gamma", Binds: gammaBinds},
			{Kind: StepChallenge, Name: "beta"},
			{Kind: StepChallenge, Name: "alpha", Binds: []string{"z"}},
			{Kind: StepChallenge, Name: "zeta", Binds: []string{"h0", "h1", "h2"}},
			{Kind: StepOpening, Name: "batch_opening_zeta", Binds: []string{"linearised_poly", "l", "r", "o", "s1", "s2"}},
			{Kind: StepPairing, Name: "kzg_pairing"},
		},
	}, nil
}
