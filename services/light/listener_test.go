package light

import (
	"testing"

	"spark-go/protocol"
	"spark-go/services/hal/core"
	"spark-go/types"
	"spark-go/x/wakeup"
)

var (
	remoteMAC   = types.MAC{0xC8, 0xF0, 0x9E, 0x2C, 0x28, 0x8C}
	strangerMAC = types.MAC{0x02, 0, 0, 0, 0, 0x99}
)

func encode(t *testing.T, p protocol.Payload) []byte {
	t.Helper()
	b, err := protocol.EncodeMessage(protocol.NewMessage(p))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestListenerHandle(t *testing.T) {
	short := encode(t, protocol.ButtonEvent{Button: types.Button1, Event: protocol.ShortPress{Count: 2}})
	seq := encode(t, protocol.ButtonSequenceEvent{Sequence: types.SequenceOf(types.Button1, types.Button3)})

	badVersion := append([]byte(nil), short...)
	badVersion[0] = protocol.Version + 1
	unknownTag := make([]byte, protocol.MessageSize)
	unknownTag[1] = 7
	malformed := make([]byte, protocol.MessageSize)
	malformed[2] = 9 // button 10

	tests := []struct {
		name    string
		dg      core.Datagram
		trigger bool
		stat    func(types.RadioStats) uint32
	}{
		{"short press", core.Datagram{Src: remoteMAC, Dst: types.Broadcast, Data: short}, true,
			func(s types.RadioStats) uint32 { return s.Accepted }},
		{"sequence", core.Datagram{Src: remoteMAC, Dst: types.Broadcast, Data: seq}, true,
			func(s types.RadioStats) uint32 { return s.Accepted }},
		{"unknown source", core.Datagram{Src: strangerMAC, Dst: types.Broadcast, Data: short}, false,
			func(s types.RadioStats) uint32 { return s.Filtered }},
		{"unicast", core.Datagram{Src: remoteMAC, Dst: types.MAC{2, 0, 0, 0, 0, 1}, Data: short}, false,
			func(s types.RadioStats) uint32 { return s.Filtered }},
		{"other version", core.Datagram{Src: remoteMAC, Dst: types.Broadcast, Data: badVersion}, false,
			func(s types.RadioStats) uint32 { return s.BadVersion }},
		{"unknown tag", core.Datagram{Src: remoteMAC, Dst: types.Broadcast, Data: unknownTag}, false,
			func(s types.RadioStats) uint32 { return s.UnknownTag }},
		{"malformed", core.Datagram{Src: remoteMAC, Dst: types.Broadcast, Data: malformed}, false,
			func(s types.RadioStats) uint32 { return s.Malformed }},
		{"empty", core.Datagram{Src: remoteMAC, Dst: types.Broadcast}, false,
			func(s types.RadioStats) uint32 { return s.Malformed }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wakeup.New()
			l := NewListener(nil, w, nil)
			l.AllowPeer(remoteMAC)

			if got := l.Handle(tt.dg); got != tt.trigger {
				t.Fatalf("Handle() = %v, want %v", got, tt.trigger)
			}
			bits := w.Take()
			if tt.trigger && bits != wakeup.Bit(TriggerBit) {
				t.Fatalf("trigger bits = %b", bits)
			}
			if !tt.trigger && bits != 0 {
				t.Fatalf("trigger raised for a dropped datagram")
			}
			if n := tt.stat(l.Stats()); n != 1 {
				t.Fatalf("counter = %d, want 1 (stats %+v)", n, l.Stats())
			}
		})
	}
}

func TestSequenceOf(t *testing.T) {
	tests := []struct {
		name string
		p    protocol.Payload
		want types.ButtonSequence
	}{
		{"single", protocol.ButtonEvent{Button: types.Button2, Event: protocol.ShortPress{Count: 1}},
			types.SequenceOf(types.Button2)},
		{"count", protocol.ButtonEvent{Button: types.Button4, Event: protocol.ShortPress{Count: 3}},
			types.SequenceOf(types.Button4, types.Button4, types.Button4)},
		{"count capped", protocol.ButtonEvent{Button: types.Button1, Event: protocol.ShortPress{Count: 1000}},
			types.SequenceOf(types.Button1, types.Button1, types.Button1, types.Button1, types.Button1)},
		{"long", protocol.ButtonEvent{Button: types.Button3, Event: protocol.LongPress{}},
			types.SequenceOf(types.Button3)},
		{"mixed", protocol.ButtonSequenceEvent{Sequence: types.SequenceOf(types.Button1, types.Button2)},
			types.SequenceOf(types.Button1, types.Button2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sequenceOf(tt.p); got != tt.want {
				t.Fatalf("sequenceOf = %s, want %s", got, tt.want)
			}
		})
	}
}
