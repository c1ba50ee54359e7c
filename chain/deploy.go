package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/base-org/evm-verifier-harness/artifact"
)

// Deployed is a live contract instance. It exists only for the lifetime of
// the environment process that holds it.
type Deployed struct {
	Address  common.Address
	Contract *bind.BoundContract
}

// Deploy submits a creation transaction for the artifact with no constructor
// arguments and waits for inclusion. Deploying the same artifact again yields
// a distinct address with identical call behavior.
func Deploy(ctx context.Context, client *Client, art *artifact.Artifact) (*Deployed, error) {
	addr, tx, bound, err := bind.DeployContract(client.Auth, art.ABI, art.Bin, client.Eth)
	if err != nil {
		return nil, fmt.Errorf("submit creation transaction: %w", err)
	}
	if _, err := bind.WaitDeployed(ctx, client.Eth, tx); err != nil {
		return nil, fmt.Errorf("await deployment of %s: %w", addr, err)
	}
	log.Info("Contract deployed", "address", addr, "tx", tx.Hash())
	return &Deployed{Address: addr, Contract: bound}, nil
}
