// Package uniqueids implements the unique-ids workload: every generate request
// is answered with an identifier that no other request, on this node or any
// other node of the cluster, is ever given.
package uniqueids

import (
	"fmt"

	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Identifier strategies.
const (
	// StrategyCounter derives identifiers from the node id and the id of the
	// reply, e.g. "n1-42". It is deterministic.
	StrategyCounter = "counter"

	// StrategyUUID returns random version 4 UUIDs.
	StrategyUUID = "uuid"
)

// Payload is the closed set of unique-ids message variants.
type Payload interface {
	message.Variant
	isUniqueIDsPayload()
}

// Generate asks the node for a new identifier.
type Generate struct{}

// Type implements message.Variant.
func (Generate) Type() string { return "generate" }

func (Generate) isUniqueIDsPayload() {}

// GenerateOk carries a new identifier.
type GenerateOk struct {
	ID string `json:"id"`
}

// Type implements message.Variant.
func (GenerateOk) Type() string { return "generate_ok" }

func (GenerateOk) isUniqueIDsPayload() {}

// Schema decodes unique-ids messages.
var Schema = message.NewSchema[Payload](Generate{}, GenerateOk{})

// Config configures the unique-ids handler.
type Config struct {
	// Strategy is StrategyCounter or StrategyUUID. Empty means
	// StrategyCounter.
	Strategy string

	Logger *logrus.Entry
}

// Handler hands out unique identifiers.
type Handler struct {
	id       string
	seq      *message.Sequence
	generate func(msgID uint64) string
	logger   *logrus.Entry
}

// New is a node.Constructor for Handler.
func New(conf Config, info message.Init) (node.Handler[Payload], error) {
	if err := node.CheckInit(info); err != nil {
		return nil, err
	}

	logger := conf.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	h := &Handler{
		id:     info.NodeID,
		seq:    message.NewSequence(1),
		logger: logger.WithField("handler", "unique-ids"),
	}

	switch conf.Strategy {
	case "", StrategyCounter:
		h.generate = h.counterID
	case StrategyUUID:
		h.generate = func(uint64) string { return uuid.NewString() }
	default:
		return nil, errors.Errorf("unknown id strategy %q", conf.Strategy)
	}

	return h, nil
}

// counterID is unique because node ids are unique within the cluster and the
// handler never reuses a reply id.
func (h *Handler) counterID(msgID uint64) string {
	return fmt.Sprintf("%s-%d", h.id, msgID)
}

// Step implements node.Handler.
func (h *Handler) Step(msg message.Message[Payload], out node.Sink[Payload]) error {
	switch p := msg.Body.Payload.(type) {
	case Generate:
		reply := msg.IntoReply(h.seq)
		reply.Body.Payload = GenerateOk{ID: h.generate(*reply.Body.MsgID)}
		return out.Send(reply)
	case GenerateOk:
		h.logger.WithField("id", p.ID).Debug("Ignore generate_ok")
		return nil
	default:
		return errors.Errorf("unhandled %T", p)
	}
}
