package state

import (
	"sync/atomic"
)

// State captures the state of a node: AwaitingInit, Running or Shutdown.
type State uint32

const (
	// AwaitingInit is the state of a node that has not yet completed the
	// handshake. The only acceptable message in this state is init.
	AwaitingInit State = iota

	// Running is the state in which a node feeds every inbound message to its
	// handler.
	Running

	// Shutdown is the state of a node whose input has ended or which
	// encountered a fatal error. It is terminal.
	Shutdown
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case AwaitingInit:
		return "AwaitingInit"
	case Running:
		return "Running"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Manager wraps a State with get and set methods. The message loop is the only
// writer, but the state may be read from elsewhere, for example by a signal
// handler that logs it.
type Manager struct {
	state State
}

// GetState returns the current state.
func (b *Manager) GetState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

// SetState sets the state.
func (b *Manager) SetState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Transition moves from one state to another and reports whether the current
// state was from. It is used to take the AwaitingInit to Running transition
// exactly once.
func (b *Manager) Transition(from, to State) bool {
	stateAddr := (*uint32)(&b.state)
	return atomic.CompareAndSwapUint32(stateAddr, uint32(from), uint32(to))
}
