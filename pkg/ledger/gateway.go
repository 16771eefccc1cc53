package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Gateway is everything the node needs from the ledger: read-only views,
// the TaskCreated event stream, and raw transaction plumbing. The concrete
// implementation lives in the ethgateway package; tests substitute fakes.
type Gateway interface {
	// Validator reads the staking record for an address.
	Validator(ctx context.Context, addr common.Address) (Validator, error)

	// Task reads a task record by id.
	Task(ctx context.Context, id *big.Int) (Task, error)

	// TokenBalance reads the APDX balance of an address.
	TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error)

	// Allowance reads how much the main contract may transfer on behalf of owner.
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)

	// TaskEvents returns TaskCreated events in the inclusive block range.
	TaskEvents(ctx context.Context, fromBlock, toBlock uint64) ([]TaskCreated, error)

	// HeadBlock returns the current chain head number.
	HeadBlock(ctx context.Context) (uint64, error)

	// ChainTime returns the timestamp of the latest block.
	ChainTime(ctx context.Context) (uint64, error)

	// GasPrice samples the current suggested gas price.
	GasPrice(ctx context.Context) (*big.Int, error)

	// PendingNonce returns the next nonce for an account including pending txs.
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)

	// ChainID returns the ledger chain id used for transaction signing.
	ChainID(ctx context.Context) (*big.Int, error)

	// SendTransaction broadcasts a signed transaction.
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// WaitReceipt blocks until a receipt for the hash is observed or the
	// context is done.
	WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}
