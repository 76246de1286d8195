package protocol

import (
	"encoding/binary"

	"spark-go/errcode"
	"spark-go/types"
)

// Layout: Version(1) | Tag(uvarint) | fields... | zero padding to MessageSize.
//   ButtonEvent:         Button(uvarint) | EventTag(uvarint) [| Count(uvarint)]
//   ButtonSequenceEvent: Len(uvarint) | Button(uvarint) * Len

// EncodeMessage serialises m into a MessageSize buffer.
func EncodeMessage(m Message) ([]byte, error) {
	if m.Payload == nil {
		return nil, errcode.Wrap(errcode.Malformed, "encode", "nil payload")
	}
	b := make([]byte, 0, MessageSize)
	b = append(b, m.Version)
	b = binary.AppendUvarint(b, uint64(m.Payload.Tag()))

	switch p := m.Payload.(type) {
	case ButtonEvent:
		if !p.Button.Valid() {
			return nil, errcode.Wrap(errcode.Malformed, "encode", "button out of range")
		}
		if p.Event == nil {
			return nil, errcode.Wrap(errcode.Malformed, "encode", "nil event type")
		}
		b = binary.AppendUvarint(b, uint64(p.Button))
		b = binary.AppendUvarint(b, p.Event.eventTag())
		if sp, ok := p.Event.(ShortPress); ok {
			b = binary.AppendUvarint(b, uint64(sp.Count))
		}
	case ButtonSequenceEvent:
		b = binary.AppendUvarint(b, uint64(p.Sequence.Len()))
		for i := 0; i < p.Sequence.Len(); i++ {
			b = binary.AppendUvarint(b, uint64(p.Sequence.At(i)))
		}
	default:
		return nil, errcode.Wrap(errcode.Unsupported, "encode", "payload type")
	}

	if len(b) > MessageSize {
		return nil, errcode.Wrap(errcode.FrameTooLarge, "encode", "message exceeds datagram")
	}
	return b[:MessageSize], nil
}

// DecodeMessage parses a datagram. A version other than Version yields
// errcode.VersionMismatch and never a payload. Trailing bytes are ignored.
func DecodeMessage(data []byte) (Message, error) {
	if len(data) < 1 {
		return Message{}, errcode.Wrap(errcode.Malformed, "decode", "empty datagram")
	}
	if data[0] != Version {
		return Message{}, errcode.Wrap(errcode.VersionMismatch, "decode", "")
	}
	r := reader{b: data[1:]}
	tag := r.uvarint()

	var p Payload
	switch Tag(tag) {
	case TagButtonEvent:
		btn := r.button()
		var ev EventType
		switch et := r.uvarint(); et {
		case eventShortPress:
			ev = ShortPress{Count: uint32(r.uvarintMax(1<<32 - 1))}
		case eventLongPress:
			ev = LongPress{}
		default:
			if r.err == nil {
				return Message{}, errcode.Wrap(errcode.UnknownTag, "decode", "event type")
			}
		}
		p = ButtonEvent{Button: btn, Event: ev}
	case TagButtonSequenceEvent:
		n := r.uvarintMax(types.MaxSequenceLen)
		var seq types.ButtonSequence
		for i := uint64(0); i < n && r.err == nil; i++ {
			seq.Push(r.button())
		}
		p = ButtonSequenceEvent{Sequence: seq}
	default:
		if r.err == nil {
			return Message{}, errcode.Wrap(errcode.UnknownTag, "decode", "payload")
		}
	}
	if r.err != nil {
		return Message{}, r.err
	}
	return Message{Version: data[0], Payload: p}, nil
}

// reader is a sticky-error cursor.
type reader struct {
	b   []byte
	err error
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.b)
	if n <= 0 {
		r.err = errcode.Wrap(errcode.Malformed, "decode", "bad varint")
		return 0
	}
	r.b = r.b[n:]
	return v
}

func (r *reader) uvarintMax(max uint64) uint64 {
	v := r.uvarint()
	if r.err == nil && v > max {
		r.err = errcode.Wrap(errcode.Malformed, "decode", "value out of range")
		return 0
	}
	return v
}

func (r *reader) button() types.Button {
	return types.Button(r.uvarintMax(types.NumButtons - 1))
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.b) < n {
		r.err = errcode.Wrap(errcode.Malformed, "decode", "short body")
		return nil
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out
}
