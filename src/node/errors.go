package node

import "github.com/pkg/errors"

var (
	// ErrNoInit is returned when the input ends before the init message.
	ErrNoInit = errors.New("input ended before init message")

	// ErrUnexpectedInit is returned when an init message arrives after the
	// handshake.
	ErrUnexpectedInit = errors.New("init message after handshake")

	// ErrForeignSource is returned by a Sink asked to send a message whose
	// source is not the node itself.
	ErrForeignSource = errors.New("message source is not this node")

	// ErrAlreadyStarted is returned when Run is called on a node that has
	// already left the AwaitingInit state.
	ErrAlreadyStarted = errors.New("node already started")
)
