package main

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/base-org/evm-verifier-harness/circuits"
	"github.com/base-org/evm-verifier-harness/conformance"
	"github.com/base-org/evm-verifier-harness/proving"
	"github.com/base-org/evm-verifier-harness/proving/storage"
	"github.com/base-org/evm-verifier-harness/transpile"
)

const Version = "v0.0.1"

func main() {
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelInfo, true)))

	app := cli.NewApp()
	app.Flags = Flags
	app.Version = Version
	app.Name = "verifier-harness"
	app.Description = "Conformance harness for the on-chain PLONK verifier"

	app.Action = curryMain(Version)
	err := app.Run(os.Args)
	if err != nil {
		log.Crit("Conformance run failed", "error", err)
	}
}

func curryMain(version string) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		return Main(version, ctx)
	}
}

func Main(version string, cliCtx *cli.Context) error {
	log.Info("Starting verifier-harness", "version", version)

	var store storage.Storage
	if bucket := cliCtx.String(S3BucketFlag.Name); bucket != "" {
		log.Info("Using S3 artifact storage", "bucket", bucket)
		s3store, err := storage.NewS3Storage(cliCtx.Context, bucket, cliCtx.String(S3PrefixFlag.Name))
		if err != nil {
			return err
		}
		store = s3store
	} else {
		log.Info("Using local artifact storage", "dir", cliCtx.String(ArtifactDirFlag.Name))
		store = storage.NewFileStorage(cliCtx.String(ArtifactDirFlag.Name))
	}

	var optimizerRuns *int
	if cliCtx.IsSet(OptimizerRunsFlag.Name) {
		runs := cliCtx.Int(OptimizerRunsFlag.Name)
		optimizerRuns = &runs
	}

	// The example payload: c == 7 * a^2 * b^2 with a=2, b=3.
	constant := big.NewInt(7)
	cfg := conformance.Config{
		Params:     proving.Parameters{K: cliCtx.Int(CapacityFlag.Name)},
		Metadata:   circuits.MulCircuitMetadata,
		Circuit:    &circuits.MulCircuit{Constant: constant},
		Assignment: &circuits.MulCircuit{Constant: constant, A: 2, B: 3, C: 252},

		Transpiler: transpile.SolidityTranspiler{},
		Store:      store,

		SolcPath:      cliCtx.String(SolcFlag.Name),
		OptimizerRuns: optimizerRuns,

		AnvilPath: cliCtx.String(AnvilFlag.Name),
		Port:      cliCtx.Int(PortFlag.Name),
		Endpoint:  cliCtx.String(RPCFlag.Name),
	}

	report, err := conformance.Run(cliCtx.Context, cfg)
	if err != nil {
		return err
	}
	log.Info("Equivalence holds",
		"address", report.Address,
		"runtimeBytes", report.RuntimeSize,
		"rawSource", report.RawSourceKey,
		"source", report.SourceKey)
	return nil
}
