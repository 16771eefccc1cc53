package ethgateway

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
)

const receiptPollInterval = 1 * time.Second

// EthGateway implements ledger.Gateway against an Ethereum-style JSON-RPC
// endpoint. It carries no mutable state beyond the RPC connection.
type EthGateway struct {
	client *ethclient.Client
	token  common.Address
	main   common.Address
}

var _ ledger.Gateway = (*EthGateway)(nil)

func New(ctx context.Context, rpcEndpoint string, token, main common.Address) (*EthGateway, error) {
	client, err := ethclient.DialContext(ctx, rpcEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing ledger rpc %s", rpcEndpoint)
	}
	return &EthGateway{
		client: client,
		token:  token,
		main:   main,
	}, nil
}

func (g *EthGateway) Close() {
	g.client.Close()
}

func (g *EthGateway) callView(
	ctx context.Context,
	to common.Address,
	contractABI abi.ABI,
	method string,
	args ...interface{},
) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s", method)
	}
	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", method)
	}
	vals, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "unpacking %s", method)
	}
	return vals, nil
}

func (g *EthGateway) Validator(ctx context.Context, addr common.Address) (ledger.Validator, error) {
	vals, err := g.callView(ctx, g.main, ledger.MainABI(), "validators", addr)
	if err != nil {
		return ledger.Validator{}, err
	}
	return ledger.Validator{
		Stake:        vals[0].(*big.Int),
		Reputation:   vals[1].(*big.Int),
		IsActive:     vals[2].(bool),
		IsRegistered: vals[3].(bool),
	}, nil
}

func (g *EthGateway) Task(ctx context.Context, id *big.Int) (ledger.Task, error) {
	vals, err := g.callView(ctx, g.main, ledger.MainABI(), "tasks", id)
	if err != nil {
		return ledger.Task{}, err
	}
	return ledger.Task{
		Creator:         vals[0].(common.Address),
		ArtifactCID:     vals[1].(string),
		Reward:          vals[2].(*big.Int),
		Deadline:        vals[3].(*big.Int).Uint64(),
		Finalized:       vals[4].(bool),
		ConsensusResult: common.Hash(vals[5].([32]byte)),
	}, nil
}

func (g *EthGateway) TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	vals, err := g.callView(ctx, g.token, ledger.TokenABI(), "balanceOf", addr)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (g *EthGateway) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	vals, err := g.callView(ctx, g.token, ledger.TokenABI(), "allowance", owner, g.main)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (g *EthGateway) TaskEvents(ctx context.Context, fromBlock, toBlock uint64) ([]ledger.TaskCreated, error) {
	eventID := ledger.MainABI().Events[ledger.TaskCreatedEventName].ID
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{g.main},
		Topics:    [][]common.Hash{{eventID}},
	}
	logs, err := g.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, apoerrors.NewTransientNetwork("filtering TaskCreated events", err)
	}

	events := make([]ledger.TaskCreated, 0, len(logs))
	for _, entry := range logs {
		if len(entry.Topics) < 2 {
			log.Ctx(ctx).Warn().
				Str("TxHash", entry.TxHash.Hex()).
				Msg("TaskCreated log without indexed task id, skipping")
			continue
		}
		vals, err := ledger.MainABI().Unpack(ledger.TaskCreatedEventName, entry.Data)
		if err != nil {
			return nil, errors.Wrap(err, "unpacking TaskCreated event")
		}
		events = append(events, ledger.TaskCreated{
			TaskID:      new(big.Int).SetBytes(entry.Topics[1].Bytes()),
			ArtifactCID: vals[0].(string),
			Reward:      vals[1].(*big.Int),
			Block:       entry.BlockNumber,
		})
	}
	return events, nil
}

func (g *EthGateway) HeadBlock(ctx context.Context) (uint64, error) {
	head, err := g.client.BlockNumber(ctx)
	if err != nil {
		return 0, apoerrors.NewTransientNetwork("reading chain head", err)
	}
	return head, nil
}

func (g *EthGateway) ChainTime(ctx context.Context) (uint64, error) {
	header, err := g.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, apoerrors.NewTransientNetwork("reading latest header", err)
	}
	return header.Time, nil
}

func (g *EthGateway) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sampling gas price")
	}
	return price, nil
}

func (g *EthGateway) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := g.client.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, errors.Wrap(err, "reading pending nonce")
	}
	return nonce, nil
}

func (g *EthGateway) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := g.client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading chain id")
	}
	return id, nil
}

func (g *EthGateway) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := g.client.SendTransaction(ctx, tx); err != nil {
		return errors.Wrapf(err, "broadcasting transaction %s", tx.Hash().Hex())
	}
	return nil
}

func (g *EthGateway) WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrapf(err, "waiting for receipt %s", txHash.Hex())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
