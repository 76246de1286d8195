package protocol

import (
	"testing"

	"spark-go/errcode"
	"spark-go/types"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "single short press",
			msg:  NewMessage(ButtonEvent{Button: types.Button1, Event: ShortPress{Count: 1}}),
		},
		{
			name: "triple short press",
			msg:  NewMessage(ButtonEvent{Button: types.Button2, Event: ShortPress{Count: 3}}),
		},
		{
			name: "large count",
			msg:  NewMessage(ButtonEvent{Button: types.Button4, Event: ShortPress{Count: 1 << 20}}),
		},
		{
			name: "long press",
			msg:  NewMessage(ButtonEvent{Button: types.Button3, Event: LongPress{}}),
		},
		{
			name: "mixed sequence",
			msg: NewMessage(ButtonSequenceEvent{
				Sequence: types.SequenceOf(types.Button1, types.Button2, types.Button1, types.Button4, types.Button3),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeMessage(tt.msg)
			if err != nil {
				t.Fatalf("EncodeMessage: %v", err)
			}
			if len(buf) != MessageSize {
				t.Fatalf("encoded size = %d, want %d", len(buf), MessageSize)
			}
			got, err := DecodeMessage(buf)
			if err != nil {
				t.Fatalf("DecodeMessage: %v", err)
			}
			if got != tt.msg {
				t.Fatalf("round trip = %+v, want %+v", got, tt.msg)
			}
		})
	}
}

func TestDecodeRejectsOtherVersion(t *testing.T) {
	msg := Message{Version: Version + 1, Payload: ButtonEvent{Button: types.Button1, Event: ShortPress{Count: 1}}}
	buf, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	got, err := DecodeMessage(buf)
	if errcode.Of(err) != errcode.VersionMismatch {
		t.Fatalf("err = %v, want version_mismatch", err)
	}
	if got.Payload != nil {
		t.Fatalf("payload leaked on version mismatch: %+v", got.Payload)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want errcode.Code
	}{
		{name: "empty", data: nil, want: errcode.Malformed},
		{name: "unknown payload tag", data: []byte{Version, 9, 0, 0}, want: errcode.UnknownTag},
		{name: "unknown event type", data: []byte{Version, 0, 1, 7}, want: errcode.UnknownTag},
		{name: "button out of range", data: []byte{Version, 0, 4, 0, 1}, want: errcode.Malformed},
		{name: "truncated varint", data: []byte{Version, 0, 0, 0, 0x80}, want: errcode.Malformed},
		{name: "sequence too long", data: []byte{Version, 1, 6, 0, 0, 0, 0, 0, 0}, want: errcode.Malformed},
		{name: "sequence short", data: []byte{Version, 1, 3, 0}, want: errcode.Malformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage(tt.data)
			if errcode.Of(err) != tt.want {
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
			if got.Payload != nil {
				t.Fatalf("payload returned with error: %+v", got.Payload)
			}
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	if _, err := EncodeMessage(Message{Version: Version}); err == nil {
		t.Fatal("nil payload encoded")
	}
	if _, err := EncodeMessage(NewMessage(ButtonEvent{Button: 9, Event: LongPress{}})); err == nil {
		t.Fatal("out-of-range button encoded")
	}
}

func TestClassify(t *testing.T) {
	p := Classify(types.SequenceOf(types.Button2, types.Button2, types.Button2))
	want := ButtonEvent{Button: types.Button2, Event: ShortPress{Count: 3}}
	if p != Payload(want) {
		t.Fatalf("Classify uniform = %+v, want %+v", p, want)
	}

	mixed := types.SequenceOf(types.Button1, types.Button3)
	if got, ok := Classify(mixed).(ButtonSequenceEvent); !ok || got.Sequence != mixed {
		t.Fatalf("Classify mixed = %+v", got)
	}
}
