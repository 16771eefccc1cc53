//go:build unit || !integration

package node

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
	"github.com/apodeixis-project/apodeixis/pkg/logger"
)

type recordingSubmitter struct {
	calls []ledger.ContractCall
}

func (r *recordingSubmitter) Submit(_ context.Context, call ledger.ContractCall) (*types.Receipt, error) {
	r.calls = append(r.calls, call)
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (r *recordingSubmitter) Address() common.Address {
	return common.Address{}
}

// A reveal must never reach the network unless the commit settled in the
// same controller run.
func TestRevealWithoutSettledCommitIsRejected(t *testing.T) {
	logger.ConfigureTestLogging(t)

	submitter := &recordingSubmitter{}
	n := New(Params{Submitter: submitter})
	tc := &taskController{node: n, taskID: big.NewInt(42)}

	err := tc.reveal(context.Background())
	require.Error(t, err)

	var violation *apoerrors.ProtocolViolation
	require.True(t, errors.As(err, &violation))
	require.Empty(t, submitter.calls)
}

func TestCommitMarksControllerSettled(t *testing.T) {
	logger.ConfigureTestLogging(t)

	submitter := &recordingSubmitter{}
	n := New(Params{Submitter: submitter})
	tc := &taskController{node: n, taskID: big.NewInt(42)}

	require.NoError(t, tc.commit(context.Background()))
	require.True(t, tc.committed)
	require.Len(t, submitter.calls, 1)

	require.NoError(t, tc.reveal(context.Background()))
	require.Len(t, submitter.calls, 2)
}
