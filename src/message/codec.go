package message

import (
	"github.com/ugorji/go/codec"
)

// jsonHandle encodes and decodes payload variants. Map keys are sorted so that
// the same payload always produces the same bytes.
var jsonHandle = newJSONHandle()

func newJSONHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

func encodePayload(v any) ([]byte, error) {
	var b []byte
	enc := codec.NewEncoderBytes(&b, jsonHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

func decodePayload(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, jsonHandle)
	return dec.Decode(v)
}
