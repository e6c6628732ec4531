// Package broadcast implements a single-node broadcast workload. The node
// records every value it is asked to broadcast and returns them on read. It
// keeps the topology the harness sends but does not gossip to its neighbours.
package broadcast

import (
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Payload is the closed set of broadcast message variants.
type Payload interface {
	message.Variant
	isBroadcastPayload()
}

// Broadcast asks the node to record Message.
type Broadcast struct {
	Message int64 `json:"message"`
}

// Type implements message.Variant.
func (Broadcast) Type() string { return "broadcast" }

func (Broadcast) isBroadcastPayload() {}

// BroadcastOk acknowledges a Broadcast.
type BroadcastOk struct{}

// Type implements message.Variant.
func (BroadcastOk) Type() string { return "broadcast_ok" }

func (BroadcastOk) isBroadcastPayload() {}

// Read asks the node for every value it has recorded.
type Read struct{}

// Type implements message.Variant.
func (Read) Type() string { return "read" }

func (Read) isBroadcastPayload() {}

// ReadOk lists the recorded values in the order they were received.
type ReadOk struct {
	Messages []int64 `json:"messages"`
}

// Type implements message.Variant.
func (ReadOk) Type() string { return "read_ok" }

func (ReadOk) isBroadcastPayload() {}

// Topology maps every node id to the ids of its neighbours.
type Topology struct {
	Topology map[string][]string `json:"topology"`
}

// Type implements message.Variant.
func (Topology) Type() string { return "topology" }

func (Topology) isBroadcastPayload() {}

// TopologyOk acknowledges a Topology.
type TopologyOk struct{}

// Type implements message.Variant.
func (TopologyOk) Type() string { return "topology_ok" }

func (TopologyOk) isBroadcastPayload() {}

// Schema decodes broadcast messages.
var Schema = message.NewSchema[Payload](
	Broadcast{}, BroadcastOk{},
	Read{}, ReadOk{},
	Topology{}, TopologyOk{},
)

// Config configures the broadcast handler.
type Config struct {
	Logger *logrus.Entry
}

// Handler stores broadcast values.
type Handler struct {
	id        string
	seq       *message.Sequence
	messages  []int64
	neighbors []string
	logger    *logrus.Entry
}

// New is a node.Constructor. The returned handler is a *Handler.
func New(conf Config, info message.Init) (node.Handler[Payload], error) {
	if err := node.CheckInit(info); err != nil {
		return nil, err
	}

	logger := conf.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Handler{
		id:       info.NodeID,
		seq:      message.NewSequence(1),
		messages: []int64{},
		logger:   logger.WithField("handler", "broadcast"),
	}, nil
}

// Messages returns a copy of the recorded values, in receipt order.
func (h *Handler) Messages() []int64 {
	res := make([]int64, len(h.messages))
	copy(res, h.messages)
	return res
}

// Neighbors returns the neighbours of this node in the last topology
// received, or nil if none was received.
func (h *Handler) Neighbors() []string {
	return h.neighbors
}

// Step implements node.Handler. Acknowledgements addressed to the node are
// ignored.
func (h *Handler) Step(msg message.Message[Payload], out node.Sink[Payload]) error {
	var res Payload

	switch p := msg.Body.Payload.(type) {
	case Broadcast:
		h.messages = append(h.messages, p.Message)
		res = BroadcastOk{}
	case Read:
		res = ReadOk{Messages: h.Messages()}
	case Topology:
		h.neighbors = p.Topology[h.id]
		h.logger.WithField("neighbors", h.neighbors).Debug("Topology")
		res = TopologyOk{}
	case BroadcastOk, ReadOk, TopologyOk:
		return nil
	default:
		return errors.Errorf("unhandled %T", p)
	}

	reply := msg.IntoReply(h.seq)
	reply.Body.Payload = res
	return out.Send(reply)
}
