package main

import (
	"github.com/urfave/cli/v2"
)

const envVarPrefix = "VERIFIER_HARNESS"

func PrefixEnvVar(suffix string) []string {
	return []string{envVarPrefix + "_" + suffix}
}

var (
	ArtifactDirFlag = &cli.StringFlag{
		Name:    "artifact-dir",
		Usage:   "Directory to retain verifier sources and diagnostics in",
		EnvVars: PrefixEnvVar("ARTIFACT_DIR"),
		Value:   "artifacts/",
	}
	S3BucketFlag = &cli.StringFlag{
		Name:    "s3-bucket",
		Usage:   "Retain artifacts in this S3 bucket instead of the local directory",
		EnvVars: PrefixEnvVar("S3_BUCKET"),
	}
	S3PrefixFlag = &cli.StringFlag{
		Name:    "s3-prefix",
		Usage:   "Key prefix for artifacts stored in S3",
		EnvVars: PrefixEnvVar("S3_PREFIX"),
	}
	SolcFlag = &cli.StringFlag{
		Name:    "solc",
		Usage:   "Path to the Solidity compiler",
		EnvVars: PrefixEnvVar("SOLC"),
		Value:   "solc",
	}
	AnvilFlag = &cli.StringFlag{
		Name:    "anvil",
		Usage:   "Path to the anvil binary",
		EnvVars: PrefixEnvVar("ANVIL"),
		Value:   "anvil",
	}
	PortFlag = &cli.IntFlag{
		Name:    "port",
		Usage:   "Port for the ephemeral execution environment",
		EnvVars: PrefixEnvVar("PORT"),
		Value:   3030,
	}
	RPCFlag = &cli.StringFlag{
		Name:    "rpc",
		Usage:   "Bind to this RPC endpoint instead of the spawned environment's",
		EnvVars: PrefixEnvVar("RPC"),
	}
	OptimizerRunsFlag = &cli.IntFlag{
		Name:    "optimizer-runs",
		Usage:   "Enable the Solidity optimizer with this run count",
		EnvVars: PrefixEnvVar("OPTIMIZER_RUNS"),
	}
	CapacityFlag = &cli.IntFlag{
		Name:    "k",
		Usage:   "Capacity exponent: the circuit may use at most 2^k rows",
		EnvVars: PrefixEnvVar("K"),
		Value:   8,
	}
)

var Flags = []cli.Flag{
	ArtifactDirFlag,
	S3BucketFlag,
	S3PrefixFlag,
	SolcFlag,
	AnvilFlag,
	PortFlag,
	RPCFlag,
	OptimizerRunsFlag,
	CapacityFlag,
}
