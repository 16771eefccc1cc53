package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Validator mirrors the on-ledger record for one staked participant. The
// node only reads this and proposes mutations via transactions.
type Validator struct {
	Stake        *big.Int
	Reputation   *big.Int
	IsActive     bool
	IsRegistered bool
}

// Task mirrors the on-ledger record of a published verification task.
type Task struct {
	Creator         common.Address
	ArtifactCID     string
	Reward          *big.Int
	Deadline        uint64
	Finalized       bool
	ConsensusResult common.Hash
}

// TaskCreated is one entry in the TaskCreated event stream.
type TaskCreated struct {
	TaskID      *big.Int
	ArtifactCID string
	Reward      *big.Int
	Block       uint64
}

// ContractCall is an unsigned function call against one contract. It is
// consumed by the transaction sequencer and discarded after settlement.
type ContractCall struct {
	To   common.Address
	Data []byte
}
