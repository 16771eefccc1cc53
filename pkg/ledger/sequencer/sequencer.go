package sequencer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
)

// DefaultGasLimit is a fixed ceiling applied to every outgoing write.
const DefaultGasLimit = 2_000_000

// Sequencer serializes all outgoing writes for one account. The nonce
// read, transaction build, signing, broadcast and receipt wait form a single
// critical section, so two concurrent submissions can never reuse a nonce.
// The signing key is owned here exclusively; no other component signs.
type Sequencer struct {
	gateway  ledger.Gateway
	key      *ecdsa.PrivateKey
	address  common.Address
	chainID  *big.Int
	gasLimit uint64

	mu sync.Mutex
}

// New derives the account address from the hex-encoded private key and
// captures the chain id used for signing.
func New(ctx context.Context, gateway ledger.Gateway, hexKey string) (*Sequencer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing signing key")
	}
	chainID, err := gateway.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &Sequencer{
		gateway:  gateway,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		gasLimit: DefaultGasLimit,
	}, nil
}

// Address returns the account all submissions are signed with.
func (s *Sequencer) Address() common.Address {
	return s.address
}

// Submit signs and broadcasts one contract call and blocks until its receipt
// is observed. A receipt with non-success status is a TransactionReverted.
func (s *Sequencer) Submit(ctx context.Context, call ledger.ContractCall) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.gateway.PendingNonce(ctx, s.address)
	if err != nil {
		return nil, err
	}
	gasPrice, err := s.gateway.GasPrice(ctx)
	if err != nil {
		return nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &call.To,
		Value:    big.NewInt(0),
		Gas:      s.gasLimit,
		GasPrice: gasPrice,
		Data:     call.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}

	log.Ctx(ctx).Debug().
		Uint64("Nonce", nonce).
		Str("TxHash", signed.Hash().Hex()).
		Str("To", call.To.Hex()).
		Msg("broadcasting transaction")

	if err := s.gateway.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	receipt, err := s.gateway.WaitReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, apoerrors.NewTransactionReverted(signed.Hash().Hex())
	}
	return receipt, nil
}
