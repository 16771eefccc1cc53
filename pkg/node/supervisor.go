package node

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// taskState is one step of the task lifecycle state machine.
type taskState string

const (
	StateDiscovered        taskState = "Discovered"
	StateFetching          taskState = "Fetching"
	StateVerifying         taskState = "Verifying"
	StateCommitting        taskState = "Committing"
	StateCommitted         taskState = "Committed"
	StateRevealWaiting     taskState = "RevealWaiting"
	StateRevealing         taskState = "Revealing"
	StateRevealed          taskState = "Revealed"
	StateFinalizeScheduled taskState = "FinalizeScheduled"
	StateFinalized         taskState = "Finalized"
	StateFinalizeFailed    taskState = "FinalizeFailed"
	StateFailed            taskState = "Failed"
)

// supervisor tracks the liveness of in-flight task controllers for
// observability. It does not own task state and never cancels anything.
type supervisor struct {
	mu     sync.Mutex
	states map[string]taskState
}

func newSupervisor() *supervisor {
	return &supervisor{states: map[string]taskState{}}
}

func (s *supervisor) set(taskID string, state taskState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[taskID] = state
	log.Debug().Str("TaskID", taskID).Str("State", string(state)).Msg("task state")
}

func (s *supervisor) remove(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, taskID)
}

func (s *supervisor) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
