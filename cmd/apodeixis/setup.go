package apodeixis

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/apodeixis-project/apodeixis/pkg/config"
	"github.com/apodeixis-project/apodeixis/pkg/fetcher"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
	"github.com/apodeixis-project/apodeixis/pkg/ledger/ethgateway"
	"github.com/apodeixis-project/apodeixis/pkg/ledger/sequencer"
	"github.com/apodeixis-project/apodeixis/pkg/node"
	"github.com/apodeixis-project/apodeixis/pkg/system"
	"github.com/apodeixis-project/apodeixis/pkg/verifier"
)

// setupNode wires a full validator node from the environment configuration.
// Resources that need teardown are registered on the cleanup manager.
func setupNode(ctx context.Context, cm *system.CleanupManager, cfg config.ApodeixisConfig, greedy bool) (*node.Node, error) {
	tokenAddr := common.HexToAddress(cfg.TokenAddress)
	mainAddr := common.HexToAddress(cfg.ContractAddress)

	gateway, err := ethgateway.New(ctx, cfg.RPCEndpoint, tokenAddr, mainAddr)
	if err != nil {
		return nil, err
	}
	cm.RegisterCallback(func() error {
		gateway.Close()
		return nil
	})

	seq, err := sequencer.New(ctx, gateway, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	sandbox, err := verifier.NewSandbox(cfg.VerifierImage)
	if err != nil {
		return nil, err
	}

	return node.New(node.Params{
		Gateway:   gateway,
		Submitter: seq,
		Fetcher: fetcher.New(fetcher.Params{
			DataDir:          cfg.DataDir,
			PreferredGateway: cfg.PreferredGateway,
		}),
		Verifier: sandbox,
		Calls:    ledger.CallBuilder{Token: tokenAddr, Main: mainAddr},
		Greedy:   greedy,
	}), nil
}
