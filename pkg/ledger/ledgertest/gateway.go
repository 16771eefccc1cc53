package ledgertest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/apodeixis-project/apodeixis/pkg/ledger"
)

// MethodCall is one decoded transaction observed by the fake gateway.
type MethodCall struct {
	Name  string
	To    common.Address
	Nonce uint64
	Args  []interface{}
}

// FakeGateway is an in-memory ledger.Gateway for tests. All mutators are
// safe for concurrent use; hooks let individual tests inject failures.
type FakeGateway struct {
	mu sync.Mutex

	validators map[common.Address]ledger.Validator
	tasks      map[uint64]ledger.Task
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int
	head       uint64
	chainTime  uint64

	pendingNonce uint64
	sentTxs      []*types.Transaction
	receipts     map[common.Hash]*types.Receipt

	// AutoAdvanceHead makes every HeadBlock call observe a new block, so
	// polling loops keep asking for fresh event ranges.
	AutoAdvanceHead bool

	// TaskEventsFn, when set, answers every TaskEvents poll.
	TaskEventsFn func(fromBlock, toBlock uint64) ([]ledger.TaskCreated, error)
	// SendFn, when set, can reject a broadcast before it is recorded.
	SendFn func(tx *types.Transaction) error
	// ReceiptStatusFn, when set, decides the receipt status per transaction.
	ReceiptStatusFn func(tx *types.Transaction) uint64
}

var _ ledger.Gateway = (*FakeGateway)(nil)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		validators: map[common.Address]ledger.Validator{},
		tasks:      map[uint64]ledger.Task{},
		balances:   map[common.Address]*big.Int{},
		allowances: map[common.Address]*big.Int{},
		receipts:   map[common.Hash]*types.Receipt{},
	}
}

func (g *FakeGateway) SetValidator(addr common.Address, v ledger.Validator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.validators[addr] = v
}

func (g *FakeGateway) SetTask(id uint64, t ledger.Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasks[id] = t
}

func (g *FakeGateway) SetBalance(addr common.Address, amount *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[addr] = amount
}

func (g *FakeGateway) SetAllowance(owner common.Address, amount *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowances[owner] = amount
}

func (g *FakeGateway) SetHead(block uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.head = block
}

func (g *FakeGateway) SetChainTime(t uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chainTime = t
}

func (g *FakeGateway) AdvanceChainTime(d uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chainTime += d
}

// SentNonces returns the nonce of every accepted broadcast in order.
func (g *FakeGateway) SentNonces() []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	nonces := make([]uint64, 0, len(g.sentTxs))
	for _, tx := range g.sentTxs {
		nonces = append(nonces, tx.Nonce())
	}
	return nonces
}

// SentCalls decodes every accepted broadcast against the known contract ABIs.
func (g *FakeGateway) SentCalls() []MethodCall {
	g.mu.Lock()
	defer g.mu.Unlock()

	mainABI := ledger.MainABI()
	tokenABI := ledger.TokenABI()
	calls := make([]MethodCall, 0, len(g.sentTxs))
	for _, tx := range g.sentTxs {
		data := tx.Data()
		if len(data) < 4 {
			continue
		}
		name := "unknown"
		var args []interface{}
		if method, err := mainABI.MethodById(data[:4]); err == nil {
			name = method.Name
			args, _ = method.Inputs.Unpack(data[4:])
		} else if method, err := tokenABI.MethodById(data[:4]); err == nil {
			name = method.Name
			args, _ = method.Inputs.Unpack(data[4:])
		}
		calls = append(calls, MethodCall{
			Name:  name,
			To:    *tx.To(),
			Nonce: tx.Nonce(),
			Args:  args,
		})
	}
	return calls
}

// CallsNamed filters SentCalls by method name.
func (g *FakeGateway) CallsNamed(name string) []MethodCall {
	var out []MethodCall
	for _, call := range g.SentCalls() {
		if call.Name == name {
			out = append(out, call)
		}
	}
	return out
}

func (g *FakeGateway) Validator(_ context.Context, addr common.Address) (ledger.Validator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.validators[addr]; ok {
		return v, nil
	}
	return ledger.Validator{Stake: big.NewInt(0), Reputation: big.NewInt(0)}, nil
}

func (g *FakeGateway) Task(_ context.Context, id *big.Int) (ledger.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tasks[id.Uint64()]; ok {
		return t, nil
	}
	return ledger.Task{}, fmt.Errorf("task %s not found", id)
}

func (g *FakeGateway) TokenBalance(_ context.Context, addr common.Address) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.balances[addr]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (g *FakeGateway) Allowance(_ context.Context, owner common.Address) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.allowances[owner]; ok {
		return a, nil
	}
	return big.NewInt(0), nil
}

func (g *FakeGateway) TaskEvents(_ context.Context, fromBlock, toBlock uint64) ([]ledger.TaskCreated, error) {
	if g.TaskEventsFn != nil {
		return g.TaskEventsFn(fromBlock, toBlock)
	}
	return nil, nil
}

func (g *FakeGateway) HeadBlock(context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.AutoAdvanceHead {
		g.head++
	}
	return g.head, nil
}

func (g *FakeGateway) ChainTime(context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chainTime, nil
}

func (g *FakeGateway) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (g *FakeGateway) PendingNonce(_ context.Context, _ common.Address) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingNonce, nil
}

func (g *FakeGateway) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1337), nil
}

func (g *FakeGateway) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if g.SendFn != nil {
		if err := g.SendFn(tx); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if tx.Nonce() != g.pendingNonce {
		return fmt.Errorf("nonce mismatch: got %d, pending is %d", tx.Nonce(), g.pendingNonce)
	}
	g.pendingNonce++
	g.sentTxs = append(g.sentTxs, tx)

	status := types.ReceiptStatusSuccessful
	if g.ReceiptStatusFn != nil {
		status = g.ReceiptStatusFn(tx)
	}
	g.receipts[tx.Hash()] = &types.Receipt{
		Status: status,
		TxHash: tx.Hash(),
	}
	return nil
}

func (g *FakeGateway) WaitReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if receipt, ok := g.receipts[txHash]; ok {
		return receipt, nil
	}
	return nil, fmt.Errorf("no receipt for %s", txHash.Hex())
}
