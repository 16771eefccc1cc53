package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The contract surfaces the node drives. Only the functions and events the
// node actually uses are described here.
const tokenABIJSON = `[
{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"faucet","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const mainABIJSON = `[
{"inputs":[{"name":"_stakeAmount","type":"uint256"}],"name":"registerValidator","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_amount","type":"uint256"}],"name":"increaseStake","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_amount","type":"uint256"}],"name":"decreaseStake","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[],"name":"exitNetwork","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_taskId","type":"uint256"},{"name":"_commitment","type":"bytes32"}],"name":"commitResult","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_taskId","type":"uint256"},{"name":"_result","type":"bytes32"},{"name":"_salt","type":"bytes32"}],"name":"revealResult","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"_taskId","type":"uint256"}],"name":"finalizeTask","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"taskId","type":"uint256"},{"indexed":false,"name":"ipfsCID","type":"string"},{"indexed":false,"name":"reward","type":"uint256"}],"name":"TaskCreated","type":"event"},
{"inputs":[{"name":"","type":"address"}],"name":"validators","outputs":[{"name":"stake","type":"uint256"},{"name":"reputation","type":"uint256"},{"name":"isActive","type":"bool"},{"name":"isRegistered","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"","type":"uint256"}],"name":"tasks","outputs":[{"name":"creator","type":"address"},{"name":"ipfsCID","type":"string"},{"name":"reward","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"finalized","type":"bool"},{"name":"consensusResult","type":"bytes32"}],"stateMutability":"view","type":"function"}
]`

// TaskCreatedEventName is the event the ingestion loop filters for.
const TaskCreatedEventName = "TaskCreated"

var (
	tokenABI abi.ABI
	mainABI  abi.ABI
)

func init() { //nolint:gochecknoinits // parsing static ABI strings
	var err error
	tokenABI, err = abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		panic(err)
	}
	mainABI, err = abi.JSON(strings.NewReader(mainABIJSON))
	if err != nil {
		panic(err)
	}
}

// TokenABI returns the parsed APDX token contract ABI.
func TokenABI() abi.ABI {
	return tokenABI
}

// MainABI returns the parsed main task contract ABI.
func MainABI() abi.ABI {
	return mainABI
}
