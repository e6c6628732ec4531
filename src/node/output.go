package node

import (
	"bufio"
	"io"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// lineWriter writes one JSON document per line and flushes after every line,
// so that a document is always complete on the output stream before the node
// reads its next input.
type lineWriter struct {
	w *bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) writeLine(b []byte) error {
	if _, err := lw.w.Write(b); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	return lw.w.Flush()
}

// output is the Sink handed to handlers. It refuses to send messages on behalf
// of another node.
type output[P message.Variant] struct {
	nodeID string
	lw     *lineWriter
	sent   uint64
	logger *logrus.Entry
}

func newOutput[P message.Variant](nodeID string, lw *lineWriter, logger *logrus.Entry) *output[P] {
	return &output[P]{
		nodeID: nodeID,
		lw:     lw,
		logger: logger,
	}
}

// Send implements Sink.
func (o *output[P]) Send(msg message.Message[P]) error {
	if msg.Src != o.nodeID {
		return common.NewPhaseErr(common.Protocol,
			errors.Wrapf(ErrForeignSource, "%q message from %q", msg.Type(), msg.Src))
	}

	b, err := msg.Marshal()
	if err != nil {
		return common.NewPhaseErr(common.Serialize, err)
	}

	if err := o.lw.writeLine(b); err != nil {
		return common.NewPhaseErr(common.Write,
			errors.Wrapf(err, "write %q message", msg.Type()))
	}

	o.sent++

	o.logger.WithFields(logrus.Fields{
		"dest":        msg.Dest,
		"type":        msg.Type(),
		"msg_id":      idField(msg.Body.MsgID),
		"in_reply_to": idField(msg.Body.InReplyTo),
	}).Debug("Send")

	return nil
}

// idField renders an optional identifier for log fields.
func idField(id *uint64) interface{} {
	if id == nil {
		return "-"
	}
	return *id
}
