package pipeline

import (
	"sync"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// State is a job lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateComputingTimestamps
	StateExtracting
	StateEncoding
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateProbing:             "probing",
	StateComputingTimestamps: "computing_timestamps",
	StateExtracting:          "extracting",
	StateEncoding:            "encoding",
	StateDone:                "done",
	StateFailed:              "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the forward edge of each non-terminal state. Failed is
// reachable from all of them.
var next = map[State]State{
	StateIdle:                StateProbing,
	StateProbing:             StateComputingTimestamps,
	StateComputingTimestamps: StateExtracting,
	StateExtracting:          StateEncoding,
	StateEncoding:            StateDone,
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	n, ok := next[from]
	return ok && n == to
}

// stateMachine guards a job's state. onEnter runs after every accepted
// transition, outside the lock.
type stateMachine struct {
	mu      sync.Mutex
	state   State
	onEnter func(from, to State)
}

func newStateMachine(onEnter func(from, to State)) *stateMachine {
	return &stateMachine{state: StateIdle, onEnter: onEnter}
}

func (m *stateMachine) current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *stateMachine) transition(to State) error {
	m.mu.Lock()
	from := m.state
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return apperrors.Newf(apperrors.CodeInternal, "illegal job transition %s -> %s", from, to).
			WithOp("job.transition")
	}
	m.state = to
	m.mu.Unlock()

	if m.onEnter != nil {
		m.onEnter(from, to)
	}
	return nil
}
