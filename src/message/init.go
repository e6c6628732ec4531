package message

// Handshake discriminators.
const (
	TypeInit   = "init"
	TypeInitOk = "init_ok"
)

// InitPayload is the payload type of the handshake. Its variants are Init and
// InitOk.
type InitPayload interface {
	Variant
	isInitPayload()
}

// Init is the first message a node receives. It carries the node's own
// identifier and the identifiers of every node in the cluster, itself
// included.
type Init struct {
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

// Type implements Variant.
func (Init) Type() string { return TypeInit }

func (Init) isInitPayload() {}

// InitOk acknowledges an Init.
type InitOk struct{}

// Type implements Variant.
func (InitOk) Type() string { return TypeInitOk }

func (InitOk) isInitPayload() {}

// InitSchema decodes handshake messages.
var InitSchema = newSchema[InitPayload](true, Init{}, InitOk{})
