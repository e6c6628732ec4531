package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Phase identifies the stage of a node's life in which an error occurred.
type Phase uint32

const (
	// Read is the phase of reading a line from the input stream.
	Read Phase = iota
	// Handshake is the phase of parsing and answering the init message.
	Handshake
	// Construct is the phase of building the handler from the init message.
	Construct
	// Decode is the phase of parsing a line after the handshake.
	Decode
	// Protocol covers messages that are well-formed but arrive out of
	// sequence, such as a second init.
	Protocol
	// Step is the phase of running the handler on a message.
	Step
	// Serialize is the phase of encoding an outbound message.
	Serialize
	// Write is the phase of writing an outbound message to the output stream.
	Write
)

// String returns the name of a Phase as used in diagnostics.
func (p Phase) String() string {
	switch p {
	case Read:
		return "read"
	case Handshake:
		return "init"
	case Construct:
		return "construct"
	case Decode:
		return "decode"
	case Protocol:
		return "protocol"
	case Step:
		return "step"
	case Serialize:
		return "serialize"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// PhaseErr is an error tagged with the Phase that produced it.
type PhaseErr struct {
	phase Phase
	err   error
}

// NewPhaseErr tags err with phase.
func NewPhaseErr(phase Phase, err error) PhaseErr {
	return PhaseErr{
		phase: phase,
		err:   err,
	}
}

// Phase returns the phase in which the error occurred.
func (e PhaseErr) Phase() Phase {
	return e.phase
}

// Error implements the error interface.
func (e PhaseErr) Error() string {
	return fmt.Sprintf("%s: %v", e.phase, e.err)
}

// Unwrap returns the underlying error.
func (e PhaseErr) Unwrap() error {
	return e.err
}

// IsPhase checks that err is, or wraps, a PhaseErr with the given phase. Only
// the outermost PhaseErr in the chain is considered.
func IsPhase(err error, p Phase) bool {
	var phaseErr PhaseErr
	return errors.As(err, &phaseErr) && phaseErr.phase == p
}

// PhaseOf returns the phase of the outermost PhaseErr in err's chain.
func PhaseOf(err error) (Phase, bool) {
	var phaseErr PhaseErr
	if !errors.As(err, &phaseErr) {
		return 0, false
	}
	return phaseErr.phase, true
}
