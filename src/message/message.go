package message

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Variant is one tagged case of a payload type. Type returns the value of the
// "type" field that identifies the variant on the wire.
type Variant interface {
	Type() string
}

// Message is one protocol message, in either direction. Messages are treated
// as immutable: replies are built as new values with IntoReply.
type Message[P Variant] struct {
	Src  string  `json:"src"`
	Dest string  `json:"dest"`
	Body Body[P] `json:"body"`
}

// Body holds the identifiers of a message and its payload. MsgID and InReplyTo
// are nil when absent; a pointer to zero is a present identifier.
type Body[P Variant] struct {
	MsgID     *uint64
	InReplyTo *uint64
	Payload   P
}

// bodyHeader is the part of a body that does not depend on the payload.
type bodyHeader struct {
	Type      string  `json:"type"`
	MsgID     *uint64 `json:"msg_id,omitempty"`
	InReplyTo *uint64 `json:"in_reply_to,omitempty"`
}

// ID returns a pointer to id, for filling MsgID and InReplyTo.
func ID(id uint64) *uint64 {
	return &id
}

// New returns a message from src to dest with the given payload and no
// identifiers.
func New[P Variant](src, dest string, payload P) Message[P] {
	return Message[P]{
		Src:  src,
		Dest: dest,
		Body: Body[P]{Payload: payload},
	}
}

// Type returns the discriminator of the message's payload, or the empty string
// if it has none.
func (m Message[P]) Type() string {
	if isNil(m.Body.Payload) {
		return ""
	}
	return m.Body.Payload.Type()
}

// Marshal returns the JSON encoding of the message, without a trailing
// newline.
func (m Message[P]) Marshal() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %q message", m.Type())
	}
	return b, nil
}

// MarshalJSON flattens the payload fields into the body object, next to the
// type discriminator and the message identifiers.
func (b Body[P]) MarshalJSON() ([]byte, error) {
	if isNil(b.Payload) {
		return nil, errors.New("body has no payload")
	}

	header, err := json.Marshal(bodyHeader{
		Type:      b.Payload.Type(),
		MsgID:     b.MsgID,
		InReplyTo: b.InReplyTo,
	})
	if err != nil {
		return nil, err
	}

	fields, err := encodePayload(b.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %q payload", b.Payload.Type())
	}

	fields = bytes.TrimSpace(fields)
	if len(fields) < 2 || fields[0] != '{' || fields[len(fields)-1] != '}' {
		return nil, errors.Errorf("%q payload does not encode to a JSON object", b.Payload.Type())
	}

	inner := bytes.TrimSpace(fields[1 : len(fields)-1])
	if len(inner) == 0 {
		return header, nil
	}

	out := make([]byte, 0, len(header)+len(inner)+1)
	out = append(out, header[:len(header)-1]...)
	out = append(out, ',')
	out = append(out, inner...)
	out = append(out, '}')

	return out, nil
}

func isNil(v any) bool {
	return v == nil
}
