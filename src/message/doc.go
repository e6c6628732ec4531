// Package message defines the wire format of the node protocol.
//
// Every line exchanged with the harness is one JSON document:
//
//  {"src": "c1", "dest": "n1", "body": {"type": "echo", "msg_id": 2, "echo": "hello"}}
//
// A Message carries a source, a destination and a Body. The Body holds the
// message identifier, the optional reply-correlation identifier, and a payload
// whose fields are flattened into the body object next to a "type"
// discriminator.
//
// Payloads are modelled as closed sets of variants. A handler declares an
// interface type for its payload and one Go type per variant, each reporting
// its discriminator through Type(). A Schema built from the variants decodes
// lines into Message values of that payload type:
//
//  type Payload interface{ message.Variant }
//
//  type Echo struct{ Echo string `json:"echo"` }
//
//  func (Echo) Type() string { return "echo" }
//
//  var schema = message.NewSchema[Payload](Echo{}, EchoOk{})
//
// The handshake payloads (init and init_ok) live in their own schema,
// InitSchema, and their tags cannot be registered by handlers.
package message
