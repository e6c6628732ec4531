package node

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node/state"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Node drives a Handler over a line-delimited JSON stream. It performs the
// init handshake, builds the handler, and then feeds it every subsequent
// message in order.
type Node[C any, P message.Variant] struct {
	state state.Manager

	conf        *Config
	handlerConf C
	construct   Constructor[C, P]
	schema      message.Schema[P]

	id      string
	peers   []string
	handler Handler[P]

	received uint64
	sent     uint64

	logger *logrus.Entry
}

// NewNode returns a Node that will build its handler with construct(handlerConf,
// init) and decode post-handshake messages with schema. A nil conf means
// DefaultConfig().
func NewNode[C any, P message.Variant](
	conf *Config,
	handlerConf C,
	construct Constructor[C, P],
	schema message.Schema[P],
) *Node[C, P] {

	if conf == nil {
		conf = DefaultConfig()
	}

	logger := conf.Logger
	if logger == nil {
		logger = DefaultConfig().Logger
	}

	return &Node[C, P]{
		conf:        conf,
		handlerConf: handlerConf,
		construct:   construct,
		schema:      schema,
		logger:      logger,
	}
}

// ID returns the node's own identifier, as given by the init message. It is
// empty before the handshake.
func (n *Node[C, P]) ID() string {
	return n.id
}

// Peers returns the identifiers of every node in the cluster, including this
// one, as given by the init message.
func (n *Node[C, P]) Peers() []string {
	return n.peers
}

// State returns the current state of the node.
func (n *Node[C, P]) State() state.State {
	return n.state.GetState()
}

// Run performs the handshake on in/out and then processes messages until in
// is exhausted, in which case it returns nil. Any other termination returns
// an error tagged with the phase that produced it. Run can only be called
// once.
func (n *Node[C, P]) Run(in io.Reader, out io.Writer) error {
	if n.state.GetState() != state.AwaitingInit {
		return ErrAlreadyStarted
	}

	r := bufio.NewReader(in)
	w := newLineWriter(out)

	err := n.handshake(r, w)
	if err == nil {
		err = n.loop(r, w)
	}

	n.state.SetState(state.Shutdown)

	fields := logrus.Fields{
		"received": n.received,
		"sent":     n.sent,
	}
	if err != nil {
		n.logger.WithFields(fields).WithError(err).Debug("Node stopped")
		return err
	}
	n.logger.WithFields(fields).Info("Input closed")

	return nil
}

/*******************************************************************************
* Handshake
*******************************************************************************/

func (n *Node[C, P]) handshake(r *bufio.Reader, w *lineWriter) error {
	line, err := readLine(r)
	if err == io.EOF {
		return common.NewPhaseErr(common.Handshake, ErrNoInit)
	}
	if err != nil {
		return common.NewPhaseErr(common.Read, errors.Wrap(err, "read init message"))
	}

	msg, err := message.InitSchema.Decode(line)
	if err != nil {
		return common.NewPhaseErr(common.Handshake, errors.Wrap(err, "parse init message"))
	}

	n.received++

	info, ok := msg.Body.Payload.(message.Init)
	if !ok {
		return common.NewPhaseErr(common.Handshake,
			errors.Errorf("first message should be %q, not %q", message.TypeInit, msg.Type()))
	}

	handler, err := n.construct(n.handlerConf, info)
	if err != nil {
		return common.NewPhaseErr(common.Construct, errors.Wrap(err, "build handler"))
	}
	if handler == nil {
		return common.NewPhaseErr(common.Construct, errors.New("build handler: nil handler"))
	}

	n.id = info.NodeID
	n.peers = info.NodeIDs
	n.handler = handler
	n.logger = n.logger.WithField("node_id", info.NodeID)

	// The acknowledgement is always the first message this node emits, and the
	// handler's own sequence does not exist yet, so its id is fixed at zero.
	reply := msg.IntoReply(nil)
	reply.Body.MsgID = message.ID(0)
	reply.Body.Payload = message.InitOk{}

	if err := newOutput[message.InitPayload](n.id, w, n.logger).Send(reply); err != nil {
		return err
	}
	n.sent++

	if !n.state.Transition(state.AwaitingInit, state.Running) {
		return common.NewPhaseErr(common.Protocol, ErrAlreadyStarted)
	}

	n.logger.WithFields(logrus.Fields{
		"node_ids": info.NodeIDs,
		"types":    n.schema.Types(),
	}).Info("Init")

	return nil
}

/*******************************************************************************
* Message loop
*******************************************************************************/

func (n *Node[C, P]) loop(r *bufio.Reader, w *lineWriter) error {
	out := newOutput[P](n.id, w, n.logger)
	policy := n.conf.policy()

	for {
		line, err := readLine(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return common.NewPhaseErr(common.Read, errors.Wrap(err, "read message"))
		}

		err = n.process(line, out)
		n.sent += out.sent
		out.sent = 0

		if err == nil {
			continue
		}

		// This is the one place where the fate of a failed message is decided.
		if err := policy(err); err != nil {
			return err
		}

		n.logger.WithError(err).Warn("Dropped message")
	}
}

func (n *Node[C, P]) process(line []byte, out *output[P]) error {
	msg, err := n.schema.Decode(line)
	if err != nil {
		var uv *message.UnknownVariantError
		if errors.As(err, &uv) && uv.Type == message.TypeInit {
			return common.NewPhaseErr(common.Protocol, ErrUnexpectedInit)
		}
		return common.NewPhaseErr(common.Decode, err)
	}

	n.received++

	n.logger.WithFields(logrus.Fields{
		"src":    msg.Src,
		"type":   msg.Type(),
		"msg_id": idField(msg.Body.MsgID),
	}).Debug("Receive")

	if err := n.handler.Step(msg, out); err != nil {
		// Errors raised by the sink already carry their phase.
		if _, ok := common.PhaseOf(err); ok {
			return err
		}
		return common.NewPhaseErr(common.Step,
			errors.Wrapf(err, "handle %q message", msg.Type()))
	}

	return nil
}

// readLine returns the next non-blank line of r, without its line terminator.
// A last line that is not terminated by a newline is still returned. It
// returns io.EOF once the input is exhausted.
func readLine(r *bufio.Reader) ([]byte, error) {
	for {
		line, err := r.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return trimmed, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
