package node

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/apodeixis-project/apodeixis/pkg/ledger"
	"github.com/apodeixis-project/apodeixis/pkg/logger"
)

// runIngestLoop polls the ledger for TaskCreated events from the current
// head and dispatches one task controller per new event without waiting for
// it. Polling failures are logged and backed off, never fatal to the loop.
// The loop exits at a polling boundary once the running flag drops or the
// context is done.
func (n *Node) runIngestLoop(ctx context.Context) {
	var fromBlock uint64
	headKnown := false

	// a task id is processed at most once per node instance
	seen := map[string]bool{}

	for n.running.Load() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !headKnown {
			head, err := n.gateway.HeadBlock(ctx)
			if err != nil {
				n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Loop error: %s", err))
				if sleepCtx(ctx, n.intervals.PollBackoff) != nil {
					return
				}
				continue
			}
			fromBlock = head
			headKnown = true
		}

		head, err := n.gateway.HeadBlock(ctx)
		if err != nil {
			n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Loop error: %s", err))
			if sleepCtx(ctx, n.intervals.PollBackoff) != nil {
				return
			}
			continue
		}

		if head >= fromBlock {
			events, err := n.gateway.TaskEvents(ctx, fromBlock, head)
			if err != nil {
				n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Loop error: %s", err))
				if sleepCtx(ctx, n.intervals.PollBackoff) != nil {
					return
				}
				continue
			}

			for _, event := range events {
				n.dispatch(ctx, event, seen)
			}
			fromBlock = head + 1
		}

		if sleepCtx(ctx, n.intervals.Poll) != nil {
			return
		}
	}
}

// dispatch spawns one independent task controller, without blocking further
// polling. Duplicate task ids are dropped.
func (n *Node) dispatch(ctx context.Context, event ledger.TaskCreated, seen map[string]bool) {
	id := event.TaskID.String()
	if seen[id] {
		n.emit(ctx, zerolog.DebugLevel, fmt.Sprintf("Task %s already dispatched, skipping", id))
		return
	}
	seen[id] = true

	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("[NEW TASK] ID: %s | Reward: %s APDX", id, toWhole(event.Reward)))

	n.supervisor.set(id, StateDiscovered)

	// the controller outlives loop cancellation: in-flight tasks run to a
	// natural terminal state (see Stop)
	taskCtx := logger.ContextWithTaskIDLogger(context.WithoutCancel(ctx), id)
	go n.processTask(taskCtx, event)
}
