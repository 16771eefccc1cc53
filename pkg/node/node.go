package node

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/apodeixis-project/apodeixis/pkg/ledger"
)

// ArtifactFetcher retrieves a task's artifact to a local path.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, taskID *big.Int, cid string) (string, error)
}

// SandboxVerifier runs the verification image and returns its raw output.
type SandboxVerifier interface {
	Verify(ctx context.Context, artifactPath string) (string, error)
}

// TxSubmitter serializes outgoing writes for the node's account. The
// sequencer package provides the real implementation.
type TxSubmitter interface {
	Submit(ctx context.Context, call ledger.ContractCall) (*types.Receipt, error)
	Address() common.Address
}

// LogSink receives every observable state change, for the operator
// front-end. Called in addition to, never instead of, structured logging.
type LogSink func(level zerolog.Level, message string)

// Intervals are the fixed waits that pace the node. Zero values take
// protocol defaults; tests shrink them.
type Intervals struct {
	// Poll is the ingestion loop's event polling interval.
	Poll time.Duration
	// PollBackoff is the longer wait after a transient polling failure.
	PollBackoff time.Duration
	// RevealDelay is the minimum commit/reveal separation.
	RevealDelay time.Duration
	// FinalizePoll is the ledger-time sampling interval of the finalize watcher.
	FinalizePoll time.Duration
	// FinalizeGrace is the ledger-seconds window past a task's deadline
	// before finalization may be attempted.
	FinalizeGrace uint64
}

func (i Intervals) withDefaults() Intervals {
	if i.Poll == 0 {
		i.Poll = 2 * time.Second
	}
	if i.PollBackoff == 0 {
		i.PollBackoff = 5 * time.Second
	}
	if i.RevealDelay == 0 {
		i.RevealDelay = 5 * time.Second
	}
	if i.FinalizePoll == 0 {
		i.FinalizePoll = 5 * time.Second
	}
	if i.FinalizeGrace == 0 {
		i.FinalizeGrace = 120
	}
	return i
}

// weiPerToken is the APDX base-unit scale, same as ether's.
var weiPerToken = big.NewInt(1_000_000_000_000_000_000)

// defaultMinStake is 100 APDX in wei.
func defaultMinStake() *big.Int {
	return new(big.Int).Mul(big.NewInt(100), weiPerToken)
}

// toWhole renders a wei amount as whole APDX tokens for log lines.
func toWhole(wei *big.Int) *big.Int {
	return new(big.Int).Div(wei, weiPerToken)
}

type Params struct {
	Gateway   ledger.Gateway
	Submitter TxSubmitter
	Fetcher   ArtifactFetcher
	Verifier  SandboxVerifier
	Calls     ledger.CallBuilder
	Greedy    bool
	MinStake  *big.Int
	Intervals Intervals
	LogSink   LogSink
}

// Node is the validator session: one explicit object owning the running and
// mode flags, passed by reference to every operation. No hidden singletons.
type Node struct {
	gateway    ledger.Gateway
	submitter  TxSubmitter
	fetcher    ArtifactFetcher
	verifier   SandboxVerifier
	calls      ledger.CallBuilder
	minStake   *big.Int
	intervals  Intervals
	sink       LogSink
	sessionID  string
	supervisor *supervisor

	running atomic.Bool
	greedy  atomic.Bool
}

func New(params Params) *Node {
	minStake := params.MinStake
	if minStake == nil {
		minStake = defaultMinStake()
	}
	n := &Node{
		gateway:    params.Gateway,
		submitter:  params.Submitter,
		fetcher:    params.Fetcher,
		verifier:   params.Verifier,
		calls:      params.Calls,
		minStake:   minStake,
		intervals:  params.Intervals.withDefaults(),
		sink:       params.LogSink,
		sessionID:  uuid.NewString(),
		supervisor: newSupervisor(),
	}
	n.greedy.Store(params.Greedy)
	return n
}

// Start registers the validator if needed and runs the ingestion loop until
// Stop is called or the context is done. Registration failures are fatal.
func (n *Node) Start(ctx context.Context) error {
	if !n.running.CompareAndSwap(false, true) {
		return fmt.Errorf("node already running")
	}
	defer n.running.Store(false)

	mode := "PASSIVE"
	if n.greedy.Load() {
		mode = "GREEDY"
	}
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Node engine starting (%s)...", mode))
	n.emit(ctx, zerolog.InfoLevel, fmt.Sprintf("Loaded account: %s...", shortAddress(n.submitter.Address())))

	if err := n.EnsureRegistered(ctx); err != nil {
		n.emit(ctx, zerolog.ErrorLevel, fmt.Sprintf("Fatal error: %s", err))
		return err
	}

	n.emit(ctx, zerolog.InfoLevel, "Entering event loop...")
	n.runIngestLoop(ctx)
	n.emit(ctx, zerolog.InfoLevel, "Event loop stopped")
	return nil
}

// Stop requests a cooperative shutdown: the ingestion loop exits at its next
// polling boundary, in-flight task controllers run to completion.
func (n *Node) Stop() {
	if n.running.CompareAndSwap(true, false) {
		n.emit(context.Background(), zerolog.WarnLevel, "Stopping node engine...")
	}
}

// Running reports whether the ingestion loop is live.
func (n *Node) Running() bool {
	return n.running.Load()
}

// ToggleMode flips between greedy and passive finalization and returns the
// new greedy flag.
func (n *Node) ToggleMode() bool {
	for {
		old := n.greedy.Load()
		if n.greedy.CompareAndSwap(old, !old) {
			status := "DISABLED"
			if !old {
				status = "ENABLED"
			}
			n.emit(context.Background(), zerolog.WarnLevel, fmt.Sprintf("Greedy mode %s", status))
			return !old
		}
	}
}

// ActiveTasks reports how many task controllers are currently in flight.
func (n *Node) ActiveTasks() int {
	return n.supervisor.active()
}

func (n *Node) emit(ctx context.Context, level zerolog.Level, message string) {
	log.Ctx(ctx).WithLevel(level).Str("NodeID", n.sessionID[:8]).Msg(message)
	if n.sink != nil {
		n.sink(level, message)
	}
}

func shortAddress(addr common.Address) string {
	return addr.Hex()[:10]
}

// sleepCtx waits for the duration unless the context finishes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
