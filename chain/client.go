package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

// First account of anvil's deterministic development mnemonic, pre-funded on
// every fresh instance.
const funderKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// Client is a signing client bound to one environment for one run.
type Client struct {
	Eth     *ethclient.Client
	Auth    *bind.TransactOpts
	ChainID *big.Int
	From    common.Address
}

// Bind connects to endpoint, or to the harness's own environment when
// endpoint is empty, and configures a signer from the environment's
// pre-funded key and discovered chain id.
func (h *Harness) Bind(ctx context.Context, endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = h.Endpoint()
	}
	eth, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("discover chain id: %w", err)
	}
	log.Info("Bound to chain", "endpoint", endpoint, "chainId", chainID)

	key, err := crypto.HexToECDSA(funderKeyHex)
	if err != nil {
		eth.Close()
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("configure signer: %w", err)
	}
	auth.Context = ctx

	return &Client{
		Eth:     eth,
		Auth:    auth,
		ChainID: chainID,
		From:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (c *Client) Close() {
	c.Eth.Close()
}
