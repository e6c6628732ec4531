package message_test

import (
	"fmt"

	"github.com/cbhcbhcbh/dist-sys/src/message"
)

type Payload interface {
	message.Variant
}

type Echo struct {
	Echo string `json:"echo"`
}

func (Echo) Type() string { return "echo" }

type EchoOk struct {
	Echo string `json:"echo"`
}

func (EchoOk) Type() string { return "echo_ok" }

func Example() {
	schema := message.NewSchema[Payload](Echo{}, EchoOk{})

	in, err := schema.Decode([]byte(`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"hello"}}`))
	if err != nil {
		panic(err)
	}

	// Build the envelope of the reply, then choose its payload.
	reply := in.IntoReply(message.NewSequence(1))
	reply.Body.Payload = EchoOk{Echo: in.Body.Payload.(Echo).Echo}

	b, err := reply.Marshal()
	if err != nil {
		panic(err)
	}

	fmt.Println(string(b))
	// Output: {"src":"n1","dest":"c1","body":{"type":"echo_ok","msg_id":1,"in_reply_to":2,"echo":"hello"}}
}
