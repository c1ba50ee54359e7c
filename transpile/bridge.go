package transpile

import (
	"fmt"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/proving"
	"github.com/base-org/evm-verifier-harness/proving/storage"
)

// Bridge drives a Transpiler and retains its intermediate outputs. The raw
// source is stored before fix-up runs, so a fix-up failure still leaves the
// input that provoked it.
type Bridge struct {
	transpiler Transpiler
	store      storage.Storage
}

func NewBridge(t Transpiler, store storage.Storage) *Bridge {
	return &Bridge{transpiler: t, store: store}
}

// Generate lowers the description to raw program source, applies the fix-up
// transform exactly once, and returns the deployable source.
func (b *Bridge) Generate(desc *proving.ProtocolDescription, vk plonk.VerifyingKey) (string, error) {
	raw, err := b.transpiler.Lower(desc, vk)
	if err != nil {
		return "", fmt.Errorf("lower protocol description: %w", err)
	}
	if err := storage.WriteBytes(b.store, RawSourceKey, []byte(raw)); err != nil {
		return "", fmt.Errorf("store raw source: %w", err)
	}
	log.Info("Lowered verifier", "key", RawSourceKey, "bytes", len(raw))

	fixed, err := b.transpiler.Fixup(raw, desc.NbInstances)
	if err != nil {
		return "", fmt.Errorf("fix up verifier source: %w", err)
	}
	if err := storage.WriteBytes(b.store, SourceKey, []byte(fixed)); err != nil {
		return "", fmt.Errorf("store corrected source: %w", err)
	}
	log.Info("Corrected verifier", "key", SourceKey, "bytes", len(fixed))

	return fixed, nil
}
