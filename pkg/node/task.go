package node

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/ledger"
	"github.com/apodeixis-project/apodeixis/pkg/verifier"
)

// taskController drives one task through
// Fetch → Verify → Commit → Reveal → (Finalize). The salt and result hash
// exist only in this controller's memory for the lifetime of the run.
type taskController struct {
	node   *Node
	taskID *big.Int
	cid    string

	salt       [32]byte
	resultHash common.Hash
	committed  bool
}

// processTask is the goroutine body for one discovered task. Failures here
// never escape to the ingestion loop or to sibling tasks.
func (n *Node) processTask(ctx context.Context, event ledger.TaskCreated) {
	id := event.TaskID.String()
	defer n.supervisor.remove(id)

	controller := &taskController{
		node:   n,
		taskID: event.TaskID,
		cid:    event.ArtifactCID,
	}
	if err := controller.run(ctx); err != nil {
		n.supervisor.set(id, StateFailed)
		n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Task %s failed: %s", id, err))
	}
}

func (tc *taskController) run(ctx context.Context) error {
	n := tc.node
	id := tc.taskID.String()

	n.supervisor.set(id, StateFetching)
	artifactPath, err := n.fetcher.Fetch(ctx, tc.taskID, tc.cid)
	if err != nil {
		return err
	}

	n.supervisor.set(id, StateVerifying)
	rawOutput, err := n.verifier.Verify(ctx, artifactPath)
	if err != nil {
		return err
	}

	outcome := verifier.Classify(rawOutput)
	switch outcome.Kind {
	case verifier.OutcomeCheatDetected:
		n.emit(ctx, zerolog.WarnLevel, fmt.Sprintf("Task %s: cheat detected by verifier", id))
	case verifier.OutcomeCompilationFailed:
		n.emit(ctx, zerolog.WarnLevel, fmt.Sprintf("Task %s: compilation or runtime failed", id))
	case verifier.OutcomeUnparseable:
		n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Task %s: verifier output unparseable", id))
	case verifier.OutcomeValid:
	}
	tc.resultHash = outcome.ResultHash

	n.supervisor.set(id, StateCommitting)
	if err := tc.commit(ctx); err != nil {
		return err
	}
	n.supervisor.set(id, StateCommitted)

	n.supervisor.set(id, StateRevealWaiting)
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Waiting to reveal task %s...", id))
	if err := sleepCtx(ctx, n.intervals.RevealDelay); err != nil {
		return err
	}

	n.supervisor.set(id, StateRevealing)
	if err := tc.reveal(ctx); err != nil {
		return err
	}
	n.supervisor.set(id, StateRevealed)
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Task %s revealed!", id))

	if n.greedy.Load() {
		n.supervisor.set(id, StateFinalizeScheduled)
		n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Greedy mode: scheduling finalize for task %s...", id))
		go n.finalizeTask(ctx, tc.taskID)
	} else {
		n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Passive mode: task %s complete.", id))
	}
	return nil
}

// commit draws a fresh salt from a cryptographically secure source and
// submits hash(resultHash ‖ salt), the same digest the ledger will use to
// validate the reveal.
func (tc *taskController) commit(ctx context.Context) error {
	if _, err := rand.Read(tc.salt[:]); err != nil {
		return errors.Wrap(err, "drawing commit salt")
	}
	commitment := crypto.Keccak256Hash(tc.resultHash[:], tc.salt[:])

	tc.node.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Committing task %s...", tc.taskID))
	_, err := tc.node.submitter.Submit(ctx, tc.node.calls.CommitResult(tc.taskID, commitment))
	if err != nil {
		return err
	}
	tc.committed = true
	return nil
}

// reveal submits (resultHash, salt). Guarded locally: revealing without a
// settled commit in the same run must never reach the network.
func (tc *taskController) reveal(ctx context.Context) error {
	if !tc.committed {
		return apoerrors.NewProtocolViolation(
			fmt.Sprintf("reveal attempted for task %s without a settled commit", tc.taskID))
	}

	tc.node.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Revealing task %s...", tc.taskID))
	_, err := tc.node.submitter.Submit(ctx,
		tc.node.calls.RevealResult(tc.taskID, tc.resultHash, tc.salt))
	return err
}
