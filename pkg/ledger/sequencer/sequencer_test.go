//go:build unit || !integration

package sequencer_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
	"github.com/apodeixis-project/apodeixis/pkg/ledger/ledgertest"
	"github.com/apodeixis-project/apodeixis/pkg/ledger/sequencer"
	"github.com/apodeixis-project/apodeixis/pkg/logger"
)

type SequencerSuite struct {
	suite.Suite
	gateway *ledgertest.FakeGateway
	seq     *sequencer.Sequencer
	builder ledger.CallBuilder
}

func TestSequencerSuite(t *testing.T) {
	suite.Run(t, new(SequencerSuite))
}

func (s *SequencerSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())

	key, err := crypto.GenerateKey()
	require.NoError(s.T(), err)

	s.gateway = ledgertest.NewFakeGateway()
	s.seq, err = sequencer.New(context.Background(), s.gateway, common.Bytes2Hex(crypto.FromECDSA(key)))
	require.NoError(s.T(), err)

	s.builder = ledger.CallBuilder{
		Token: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Main:  common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
}

// Concurrent callers must never race on nonce assignment: N concurrent
// submissions produce N distinct, sequential nonces.
func (s *SequencerSuite) TestConcurrentSubmissionsGetSequentialNonces() {
	const submissions = 16

	var wg sync.WaitGroup
	errs := make(chan error, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.seq.Submit(context.Background(), s.builder.Faucet())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(s.T(), err)
	}

	nonces := s.gateway.SentNonces()
	require.Len(s.T(), nonces, submissions)
	for i, nonce := range nonces {
		require.Equal(s.T(), uint64(i), nonce)
	}
}

func (s *SequencerSuite) TestRevertedReceiptIsClassified() {
	s.gateway.ReceiptStatusFn = func(*types.Transaction) uint64 {
		return types.ReceiptStatusFailed
	}

	_, err := s.seq.Submit(context.Background(), s.builder.DecreaseStake(big.NewInt(1)))
	require.Error(s.T(), err)

	var reverted *apoerrors.TransactionReverted
	require.True(s.T(), errors.As(err, &reverted))
	require.NotEmpty(s.T(), reverted.TxHash())
}

func (s *SequencerSuite) TestSubmitReturnsSettledReceipt() {
	receipt, err := s.seq.Submit(context.Background(), s.builder.ExitNetwork())
	require.NoError(s.T(), err)
	require.Equal(s.T(), types.ReceiptStatusSuccessful, receipt.Status)
}

func (s *SequencerSuite) TestSubmitPropagatesBroadcastFailure() {
	s.gateway.SendFn = func(*types.Transaction) error {
		return errors.New("connection refused")
	}

	_, err := s.seq.Submit(context.Background(), s.builder.Faucet())
	require.Error(s.T(), err)
	require.Empty(s.T(), s.gateway.SentNonces())
}
