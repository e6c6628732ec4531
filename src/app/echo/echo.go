// Package echo implements the echo workload: every echo request is answered
// with an echo_ok carrying the same text. Stray echo_ok messages are ignored.
package echo

import (
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Payload is the closed set of echo message variants.
type Payload interface {
	message.Variant
	isEchoPayload()
}

// Echo asks the node to send Echo back.
type Echo struct {
	Echo string `json:"echo"`
}

// Type implements message.Variant.
func (Echo) Type() string { return "echo" }

func (Echo) isEchoPayload() {}

// EchoOk answers an Echo.
type EchoOk struct {
	Echo string `json:"echo"`
}

// Type implements message.Variant.
func (EchoOk) Type() string { return "echo_ok" }

func (EchoOk) isEchoPayload() {}

// Schema decodes echo messages.
var Schema = message.NewSchema[Payload](Echo{}, EchoOk{})

// Config configures the echo handler.
type Config struct {
	Logger *logrus.Entry
}

// Handler answers echo requests.
type Handler struct {
	id     string
	seq    *message.Sequence
	logger *logrus.Entry
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

	return &Handler{
		id:     info.NodeID,
		seq:    message.NewSequence(1),
		logger: logger.WithField("handler", "echo"),
	}, nil
}

// Step implements node.Handler.
func (h *Handler) Step(msg message.Message[Payload], out node.Sink[Payload]) error {
	switch p := msg.Body.Payload.(type) {
	case Echo:
		reply := msg.IntoReply(h.seq)
		reply.Body.Payload = EchoOk{Echo: p.Echo}
		return out.Send(reply)
	case EchoOk:
		h.logger.WithField("src", msg.Src).Debug("Ignore echo_ok")
		return nil
	default:
		return errors.Errorf("unhandled %T", p)
	}
}
