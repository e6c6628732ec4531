package message

// Sequence hands out message identifiers. It is owned by a single node and
// must not be shared between goroutines.
type Sequence struct {
	next uint64
}

// NewSequence returns a Sequence whose first identifier is start.
func NewSequence(start uint64) *Sequence {
	return &Sequence{next: start}
}

// Next returns the current identifier and advances the sequence.
func (s *Sequence) Next() uint64 {
	id := s.next
	s.next++
	return id
}

// Peek returns the identifier the next call to Next will return.
func (s *Sequence) Peek() uint64 {
	return s.next
}

// IntoReply returns a new message addressed back to the sender of m. Source
// and destination are swapped, InReplyTo is m's MsgID, and the payload is a
// copy of m's payload which the caller is expected to replace with the actual
// response variant. If seq is not nil, the reply takes its MsgID from it;
// otherwise the reply has no MsgID.
func (m Message[P]) IntoReply(seq *Sequence) Message[P] {
	reply := Message[P]{
		Src:  m.Dest,
		Dest: m.Src,
		Body: Body[P]{
			InReplyTo: copyID(m.Body.MsgID),
			Payload:   m.Body.Payload,
		},
	}

	if seq != nil {
		reply.Body.MsgID = ID(seq.Next())
	}

	return reply
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	return ID(*id)
}
