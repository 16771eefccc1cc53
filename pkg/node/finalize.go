package node

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog"
)

const finalizeProgressEvery = 30 // ledger seconds between progress lines

// finalizeTask is the greedy-mode watcher for one revealed task: it samples
// ledger time until the deadline plus grace window has passed, then submits
// exactly one finalize transaction. Another party finalizing first is
// success-equivalent. Failures are reported, never fatal to the node.
func (n *Node) finalizeTask(ctx context.Context, taskID *big.Int) {
	id := taskID.String()
	defer n.supervisor.remove(id)

	task, err := n.gateway.Task(ctx, taskID)
	if err != nil {
		n.supervisor.set(id, StateFinalizeFailed)
		n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Auto-finalize error: %s", err))
		return
	}
	target := task.Deadline + n.intervals.FinalizeGrace

	for {
		now, err := n.gateway.ChainTime(ctx)
		if err != nil {
			n.emit(ctx, zerolog.WarnLevel, fmt.Sprintf("Auto-finalize clock read failed: %s", err))
			if sleepCtx(ctx, n.intervals.FinalizePoll) != nil {
				return
			}
			continue
		}
		if now >= target {
			break
		}

		remaining := target - now
		if remaining%finalizeProgressEvery == 0 {
			n.emit(ctx, zerolog.InfoLevel,
				fmt.Sprintf("Task %s: waiting %ds for finalize window...", id, remaining))
		}
		if sleepCtx(ctx, n.intervals.FinalizePoll) != nil {
			return
		}
	}

	// cheap re-read, another party may have settled the task already
	if task, err := n.gateway.Task(ctx, taskID); err == nil && task.Finalized {
		n.supervisor.set(id, StateFinalized)
		n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Task %s already finalized.", id))
		return
	}

	n.emit(ctx, zerolog.WarnLevel, fmt.Sprintf("Time reached! Finalizing task %s...", id))
	_, err = n.submitter.Submit(ctx, n.calls.FinalizeTask(taskID))
	if err != nil {
		if strings.Contains(err.Error(), "already finalized") {
			n.supervisor.set(id, StateFinalized)
			n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Task %s already finalized.", id))
			return
		}
		n.supervisor.set(id, StateFinalizeFailed)
		n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Finalize failed for task %s: %s", id, err))
		return
	}

	n.supervisor.set(id, StateFinalized)
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("SUCCESS: task %s finalized, rewards claimed.", id))
}
