package protocol

import "spark-go/types"

// Message is one broadcast datagram.
type Message struct {
	Version uint8
	Payload Payload
}

// NewMessage stamps p with this build's protocol version.
func NewMessage(p Payload) Message { return Message{Version: Version, Payload: p} }

// Tag identifies a payload variant on the wire.
type Tag uint64

const (
	TagButtonEvent         Tag = 0
	TagButtonSequenceEvent Tag = 1
)

// Payload is closed over this version's variants. Unknown tags from newer
// senders surface as errcode.UnknownTag rather than a payload.
type Payload interface {
	Tag() Tag
}

// ButtonEvent reports a classified gesture on a single button.
type ButtonEvent struct {
	Button types.Button
	Event  EventType
}

func (ButtonEvent) Tag() Tag { return TagButtonEvent }

// ButtonSequenceEvent carries a mixed gesture verbatim.
type ButtonSequenceEvent struct {
	Sequence types.ButtonSequence
}

func (ButtonSequenceEvent) Tag() Tag { return TagButtonSequenceEvent }

// EventType classifies a ButtonEvent.
type EventType interface {
	eventTag() uint64
}

const (
	eventShortPress uint64 = 0
	eventLongPress  uint64 = 1
)

// ShortPress is Count quick presses of the same button.
type ShortPress struct{ Count uint32 }

// LongPress is a single held press.
type LongPress struct{}

func (ShortPress) eventTag() uint64 { return eventShortPress }
func (LongPress) eventTag() uint64  { return eventLongPress }

// Classify turns a flushed gesture into a payload: a run of one button is a
// ShortPress with its count, anything mixed is sent as a sequence.
func Classify(seq types.ButtonSequence) Payload {
	if b, ok := seq.Uniform(); ok {
		return ButtonEvent{Button: b, Event: ShortPress{Count: uint32(seq.Len())}}
	}
	return ButtonSequenceEvent{Sequence: seq}
}
