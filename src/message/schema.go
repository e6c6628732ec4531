package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrMissingBody is returned when a line has no "body" object.
	ErrMissingBody = errors.New("missing body")

	// ErrMissingType is returned when a body has no "type" discriminator.
	ErrMissingType = errors.New("missing body type")
)

// UnknownVariantError is returned when the type discriminator of a body does
// not belong to the schema used to decode it.
type UnknownVariantError struct {
	Type string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// Schema is the closed set of variants of a payload type P, keyed by their
// discriminator. It decodes lines into Message[P].
type Schema[P Variant] struct {
	variants map[string]reflect.Type
}

// envelope is the undecoded shape of a line. Src and Dest are pointers so that
// absent fields can be told apart from empty ones.
type envelope struct {
	Src  *string         `json:"src"`
	Dest *string         `json:"dest"`
	Body json.RawMessage `json:"body"`
}

// rawHeader mirrors bodyHeader with an optional type.
type rawHeader struct {
	Type      *string `json:"type"`
	MsgID     *uint64 `json:"msg_id"`
	InReplyTo *uint64 `json:"in_reply_to"`
}

// NewSchema builds a Schema from one zero value per variant. It panics if two
// variants share a discriminator, or if a discriminator is empty or reserved
// for the handshake; these are programming errors in a handler definition.
func NewSchema[P Variant](variants ...P) Schema[P] {
	return newSchema(false, variants...)
}

func newSchema[P Variant](allowReserved bool, variants ...P) Schema[P] {
	s := Schema[P]{variants: make(map[string]reflect.Type, len(variants))}

	for _, v := range variants {
		if isNil(v) {
			panic("message: nil variant in schema")
		}

		tag := v.Type()
		if tag == "" {
			panic(fmt.Sprintf("message: variant %T has an empty type", v))
		}
		if !allowReserved && (tag == TypeInit || tag == TypeInitOk) {
			panic(fmt.Sprintf("message: type %q is reserved for the handshake", tag))
		}
		if _, ok := s.variants[tag]; ok {
			panic(fmt.Sprintf("message: duplicate variant type %q", tag))
		}

		s.variants[tag] = reflect.TypeOf(v)
	}

	return s
}

// Types returns the discriminators known to the schema, sorted.
func (s Schema[P]) Types() []string {
	types := make([]string, 0, len(s.variants))
	for t := range s.variants {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Has reports whether the schema knows the given discriminator.
func (s Schema[P]) Has(tag string) bool {
	_, ok := s.variants[tag]
	return ok
}

// Decode parses one line into a Message[P]. The payload variant is chosen by
// the body's "type" field; fields that the variant does not declare are
// ignored. Fields it does declare must be present, unless tagged omitempty,
// and have the right JSON kind; otherwise the error wraps ErrInvalidPayload.
func (s Schema[P]) Decode(line []byte) (Message[P], error) {
	var msg Message[P]

	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return msg, errors.Wrap(err, "decode envelope")
	}
	if env.Src == nil {
		return msg, errors.New("missing src")
	}
	if env.Dest == nil {
		return msg, errors.New("missing dest")
	}
	if len(env.Body) == 0 || bytes.Equal(env.Body, []byte("null")) {
		return msg, ErrMissingBody
	}

	var header rawHeader
	if err := json.Unmarshal(env.Body, &header); err != nil {
		return msg, errors.Wrap(err, "decode body")
	}
	if header.Type == nil {
		return msg, ErrMissingType
	}

	rt, ok := s.variants[*header.Type]
	if !ok {
		return msg, &UnknownVariantError{Type: *header.Type}
	}

	if err := checkShape(env.Body, rt, ""); err != nil {
		return msg, errors.Wrapf(err, "decode %q payload", *header.Type)
	}

	ptr := reflect.New(rt)
	if err := decodePayload(env.Body, ptr.Interface()); err != nil {
		return msg, errors.Wrapf(err, "decode %q payload", *header.Type)
	}

	payload, ok := ptr.Elem().Interface().(P)
	if !ok {
		return msg, errors.Errorf("variant %s is not a %s payload", rt, reflect.TypeOf((*P)(nil)).Elem())
	}

	msg.Src = *env.Src
	msg.Dest = *env.Dest
	msg.Body = Body[P]{
		MsgID:     header.MsgID,
		InReplyTo: header.InReplyTo,
		Payload:   payload,
	}

	return msg, nil
}
