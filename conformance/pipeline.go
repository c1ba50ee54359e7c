package conformance

import (
	"context"
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/artifact"
	"github.com/base-org/evm-verifier-harness/chain"
	"github.com/base-org/evm-verifier-harness/circuits"
	"github.com/base-org/evm-verifier-harness/proving"
	"github.com/base-org/evm-verifier-harness/proving/storage"
	"github.com/base-org/evm-verifier-harness/transpile"
)

// Config assembles one pipeline run. Circuit carries the compile-time shape
// (including baked constants); Assignment carries the witness values.
type Config struct {
	Params     proving.Parameters
	Metadata   *circuits.Metadata
	Circuit    frontend.Circuit
	Assignment frontend.Circuit

	Transpiler transpile.Transpiler
	Store      storage.Storage
	Cache      *proving.SetupCache

	SolcPath      string
	OptimizerRuns *int

	AnvilPath string
	Port      int
	Endpoint  string
}

// Report retains the diagnostic outputs of a run, whether it passed or not.
type Report struct {
	RawSourceKey string
	SourceKey    string
	RuntimeSize  int
	Address      common.Address
	Accepted     bool
	Rejected     bool
}

// Run executes the pipeline end to end: prove, transpile, compile and
// size-check, spawn the environment, deploy, then assert the honest call
// returns true and every per-position tampered call returns false. Stages are
// strictly sequential and nothing is retried; the environment process is torn
// down on every exit path past its spawn.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	report := &Report{RawSourceKey: transpile.RawSourceKey, SourceKey: transpile.SourceKey}

	cache := cfg.Cache
	if cache == nil {
		cache = proving.NewSetupCache()
	}
	compiled, protocol, err := cache.Load(cfg.Params, cfg.Metadata, cfg.Circuit)
	if err != nil {
		return report, fmt.Errorf("setup: %w", err)
	}

	gen, err := proving.Generate(cfg.Metadata, compiled, protocol, cfg.Assignment)
	if err != nil {
		return report, fmt.Errorf("prove: %w", err)
	}

	bridge := transpile.NewBridge(cfg.Transpiler, cfg.Store)
	source, err := bridge.Generate(gen.Protocol, compiled.Vk)
	if err != nil {
		return report, fmt.Errorf("transpile: %w", err)
	}

	builder := artifact.NewBuilder(cfg.SolcPath)
	art, err := builder.Compile(ctx, source, transpile.ContractName, cfg.OptimizerRuns)
	if err != nil {
		return report, fmt.Errorf("build artifact: %w", err)
	}
	report.RuntimeSize = art.RuntimeSize()

	// No environment process exists until the size gate has passed.
	harness := chain.NewHarness(cfg.AnvilPath, cfg.Port)
	if err := harness.Start(ctx); err != nil {
		return report, fmt.Errorf("start environment: %w", err)
	}
	defer harness.Stop()

	client, err := harness.Bind(ctx, cfg.Endpoint)
	if err != nil {
		return report, fmt.Errorf("bind client: %w", err)
	}
	defer client.Close()

	deployed, err := chain.Deploy(ctx, client, art)
	if err != nil {
		return report, fmt.Errorf("deploy: %w", err)
	}
	report.Address = deployed.Address

	if err := AssertAccepts(ctx, client, deployed, gen.Instances, gen.ProofCalldata); err != nil {
		return report, err
	}
	report.Accepted = true

	for pos := range gen.Instances {
		if err := AssertRejectsOnTamper(ctx, client, deployed, gen.Instances, gen.ProofCalldata, pos); err != nil {
			return report, err
		}
	}
	report.Rejected = true

	log.Info("Conformance run passed",
		"address", report.Address, "runtimeBytes", report.RuntimeSize, "instances", len(gen.Instances))
	return report, nil
}
