package broadcast

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/cbhcbhcbh/dist-sys/src/message"
	"github.com/cbhcbhcbh/dist-sys/src/node"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []message.Message[Payload]
}

func (r *recorder) Send(msg message.Message[Payload]) error {
	r.sent = append(r.sent, msg)
	return nil
}

func newTestHandler(t *testing.T) *Handler {
	h, err := New(
		Config{Logger: common.NewTestEntry(t, common.TestLogLevel)},
		message.Init{NodeID: "n1", NodeIDs: []string{"n1", "n2", "n3"}},
	)
	require.NoError(t, err)
	return h.(*Handler)
}

func request(id uint64, p Payload) message.Message[Payload] {
	msg := message.New[Payload]("c1", "n1", p)
	msg.Body.MsgID = message.ID(id)
	return msg
}

func TestBroadcastThenRead(t *testing.T) {
	h := newTestHandler(t)
	out := &recorder{}

	for i, v := range []int64{5, 7, 5} {
		require.NoError(t, h.Step(request(uint64(i+1), Broadcast{Message: v}), out))
	}
	require.NoError(t, h.Step(request(4, Read{}), out))

	require.Len(t, out.sent, 4)
	for i, m := range out.sent[:3] {
		assert.Equal(t, BroadcastOk{}, m.Body.Payload)
		assert.Equal(t, uint64(i+1), *m.Body.MsgID)
	}
	assert.Equal(t, ReadOk{Messages: []int64{5, 7, 5}}, out.sent[3].Body.Payload)
	assert.Equal(t, uint64(4), *out.sent[3].Body.InReplyTo)
}

func TestReadEmpty(t *testing.T) {
	h := newTestHandler(t)
	out := &recorder{}

	require.NoError(t, h.Step(request(1, Read{}), out))

	require.Len(t, out.sent, 1)
	b, err := out.sent[0].Marshal()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"read_ok","msg_id":1,"in_reply_to":1,"messages":[]}}`,
		string(b))
}

func TestReadReturnsCopy(t *testing.T) {
	h := newTestHandler(t)
	out := &recorder{}

	require.NoError(t, h.Step(request(1, Broadcast{Message: 1}), out))
	require.NoError(t, h.Step(request(2, Read{}), out))

	read := out.sent[1].Body.Payload.(ReadOk)
	read.Messages[0] = 42

	assert.Equal(t, []int64{1}, h.Messages())
}

func TestTopology(t *testing.T) {
	h := newTestHandler(t)
	out := &recorder{}

	assert.Nil(t, h.Neighbors())

	require.NoError(t, h.Step(request(1, Topology{Topology: map[string][]string{
		"n1": {"n2", "n3"},
		"n2": {"n1"},
		"n3": {"n1"},
	}}), out))

	require.Len(t, out.sent, 1)
	assert.Equal(t, TopologyOk{}, out.sent[0].Body.Payload)
	assert.Equal(t, []string{"n2", "n3"}, h.Neighbors())
}

func TestAcknowledgementsIgnored(t *testing.T) {
	h := newTestHandler(t)
	out := &recorder{}

	for _, p := range []Payload{BroadcastOk{}, ReadOk{}, TopologyOk{}} {
		require.NoError(t, h.Step(request(1, p), out))
	}
	assert.Empty(t, out.sent)

	require.NoError(t, h.Step(request(2, Read{}), out))
	assert.Equal(t, uint64(1), *out.sent[0].Body.MsgID)
}

func TestRun(t *testing.T) {
	in := strings.Join([]string{
		`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1","n2"]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"topology","msg_id":2,"topology":{"n1":["n2"],"n2":["n1"]}}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":3,"message":5}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":4,"message":7}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":5,"message":5}}`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":6}}`,
	}, "\n")

	var out bytes.Buffer
	n := node.NewNode[Config, Payload](node.TestConfig(t), Config{}, New, Schema)
	require.NoError(t, n.Run(strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)

	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"topology_ok","msg_id":1,"in_reply_to":2}}`,
		lines[1])
	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"broadcast_ok","msg_id":2,"in_reply_to":3}}`,
		lines[2])
	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"read_ok","msg_id":5,"in_reply_to":6,"messages":[5,7,5]}}`,
		lines[5])
}

func TestRoundTrip(t *testing.T) {
	payloads := []Payload{
		Broadcast{Message: 5},
		Broadcast{Message: -12},
		BroadcastOk{},
		Read{},
		ReadOk{Messages: []int64{5, 7, 5}},
		Topology{Topology: map[string][]string{"n1": {"n2", "n3"}, "n2": {"n1"}}},
		TopologyOk{},
	}

	covered := map[string]bool{}
	for i, p := range payloads {
		msg := message.New[Payload]("n1", "c1", p)
		msg.Body.MsgID = message.ID(uint64(i + 1))
		msg.Body.InReplyTo = message.ID(uint64(i))

		b, err := msg.Marshal()
		require.NoError(t, err)

		decoded, err := Schema.Decode(b)
		require.NoError(t, err, string(b))
		assert.Equal(t, msg, decoded)

		covered[p.Type()] = true
	}

	for _, tag := range Schema.Types() {
		assert.True(t, covered[tag], "variant %s is not round-tripped", tag)
	}
}

func TestDecodeRejectsBadShape(t *testing.T) {
	for _, l := range []string{
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":1,"message":"7"}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":1,"message":7.5}}`,
		`{"src":"c1","dest":"n1","body":{"type":"topology","msg_id":1,"topology":{"n1":[1]}}}`,
	} {
		_, err := Schema.Decode([]byte(l))
		assert.True(t, errors.Is(err, message.ErrInvalidPayload), "%s: %v", l, err)
	}
}
