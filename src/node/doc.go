// Package node implements the runtime of a single simulated node.
//
// The harness starts one process per node and talks to it over stdin and
// stdout, one JSON document per line. Node implements a state machine where
// the states are defined in the state package:
//
// AwaitingInit
//
// The first line must be an init message carrying the node's own identifier
// and the identifiers of the whole cluster. The node builds its Handler from
// it, answers init_ok with msg_id 0, and moves to Running. Anything else on the
// first line is fatal.
//
// Running
//
// Every following line is decoded with the handler's message.Schema and
// passed to Handler.Step, strictly one at a time and in arrival order. The
// handler answers through a Sink; each sent message is written as a complete
// line and flushed before the next input line is read.
//
// Shutdown
//
// The end of the input moves the node to Shutdown and Run returns nil. Errors
// are tagged with the phase that produced them (see common.PhaseErr). After
// the handshake they go through Config.ErrorPolicy, which by default stops the
// node.
package node
