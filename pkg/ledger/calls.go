package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallBuilder packs function calls against the two contract addresses the
// node drives. The ABIs are static, so a pack failure means an argument type
// mismatch in this file, which is a programmer error.
type CallBuilder struct {
	Token common.Address
	Main  common.Address
}

func mustPack(data []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return data
}

func (b CallBuilder) Approve(amount *big.Int) ContractCall {
	return ContractCall{To: b.Token, Data: mustPack(tokenABI.Pack("approve", b.Main, amount))}
}

func (b CallBuilder) Faucet() ContractCall {
	return ContractCall{To: b.Token, Data: mustPack(tokenABI.Pack("faucet"))}
}

func (b CallBuilder) RegisterValidator(stake *big.Int) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("registerValidator", stake))}
}

func (b CallBuilder) IncreaseStake(amount *big.Int) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("increaseStake", amount))}
}

func (b CallBuilder) DecreaseStake(amount *big.Int) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("decreaseStake", amount))}
}

func (b CallBuilder) ExitNetwork() ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("exitNetwork"))}
}

func (b CallBuilder) CommitResult(taskID *big.Int, commitment common.Hash) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("commitResult", taskID, [32]byte(commitment)))}
}

func (b CallBuilder) RevealResult(taskID *big.Int, result common.Hash, salt [32]byte) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("revealResult", taskID, [32]byte(result), salt))}
}

func (b CallBuilder) FinalizeTask(taskID *big.Int) ContractCall {
	return ContractCall{To: b.Main, Data: mustPack(mainABI.Pack("finalizeTask", taskID))}
}
