package node

import (
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/pkg/errors"
)

// Handler is the application side of a node. The node calls Step once per
// inbound message, in arrival order, never concurrently, so a Handler can
// mutate its state without synchronization.
//
// Step may send zero or more messages through out. Each Send is written and
// flushed before it returns. An error returned by Step is handed to the
// node's ErrorPolicy, which by default stops the node.
type Handler[P message.Variant] interface {
	Step(msg message.Message[P], out Sink[P]) error
}

// Constructor builds a Handler from a handler-specific configuration value and
// the content of the init message. It runs once, before any other message is
// processed, and should not perform I/O. An error aborts the node.
type Constructor[C any, P message.Variant] func(conf C, init message.Init) (Handler[P], error)

// Sink is where a Handler sends its messages.
type Sink[P message.Variant] interface {
	Send(msg message.Message[P]) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[P message.Variant] func(msg message.Message[P], out Sink[P]) error

// Step calls f(msg, out).
func (f HandlerFunc[P]) Step(msg message.Message[P], out Sink[P]) error {
	return f(msg, out)
}

// CheckInit verifies that an init message names this node and that the node
// belongs to the cluster it describes. Constructors use it to reject
// incomplete handshakes.
func CheckInit(info message.Init) error {
	if info.NodeID == "" {
		return errors.New("init message has no node_id")
	}
	for _, id := range info.NodeIDs {
		if id == info.NodeID {
			return nil
		}
	}
	return errors.Errorf("node %q is not in node_ids %v", info.NodeID, info.NodeIDs)
}
