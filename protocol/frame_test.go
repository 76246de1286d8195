package protocol

import (
	"bytes"
	"testing"

	"spark-go/errcode"
	"spark-go/types"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "one byte", body: []byte{0x42}},
		{name: "handshake sized", body: bytes.Repeat([]byte{0xA5}, 8)},
		{name: "maximum body", body: bytes.Repeat([]byte{0x11}, MaxBodySize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeFrame(tt.body)
			if err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}
			if len(frame) > MaxFrameSize {
				t.Fatalf("frame size %d exceeds %d", len(frame), MaxFrameSize)
			}
			// Fixed-size bus reads pad with idle bytes.
			padded := append(append([]byte{}, frame...), 0xFF, 0xFF, 0xFF)
			body, err := DecodeFrame(padded)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if !bytes.Equal(body, tt.body) {
				t.Fatalf("body = %x, want %x", body, tt.body)
			}
		})
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	_, err := EncodeFrame(bytes.Repeat([]byte{1}, MaxBodySize+1))
	if errcode.Of(err) != errcode.FrameTooLarge {
		t.Fatalf("err = %v, want frame_too_large", err)
	}
}

func TestDecodeInvalidFrames(t *testing.T) {
	good, _ := EncodeFrame([]byte{1, 2, 3})
	tests := []struct {
		name string
		data []byte
		want errcode.Code
	}{
		{name: "nil", data: nil, want: errcode.Malformed},
		{name: "all zero idle bus", data: make([]byte, MaxFrameSize), want: errcode.Malformed},
		{name: "all 0xFF idle bus", data: bytes.Repeat([]byte{0xFF}, MaxFrameSize), want: errcode.Malformed},
		{name: "truncated", data: good[:len(good)-1], want: errcode.Malformed},
		{
			name: "corrupt checksum",
			data: func() []byte {
				d := append([]byte{}, good...)
				d[len(d)-1] ^= 0xFF
				return d
			}(),
			want: errcode.ChecksumMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFrame(tt.data); errcode.Of(err) != tt.want {
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestParseFrameStream(t *testing.T) {
	a, _ := AppendFrame(nil, []byte("abc"))
	stream, _ := AppendFrame(a, []byte("de"))

	body, n, err := ParseFrame(stream)
	if err != nil || string(body) != "abc" {
		t.Fatalf("first frame = %q, %v", body, err)
	}
	body, m, err := ParseFrame(stream[n:])
	if err != nil || string(body) != "de" || n+m != len(stream) {
		t.Fatalf("second frame = %q n=%d, %v", body, m, err)
	}
	if _, n, err := ParseFrame(stream[:3]); n != 0 || err != nil {
		t.Fatalf("partial frame: n=%d err=%v", n, err)
	}
}

func TestHandshakeRoundTrip(t *testing.T) {
	remote := types.MAC{0xC8, 0xF0, 0x9E, 0x2C, 0x28, 0x8C}
	light := types.MAC{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}

	cmdFrame, err := EncodeCommand(NewHandshake(remote))
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	cmd, err := DecodeCommand(cmdFrame)
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if cmd != NewHandshake(remote) {
		t.Fatalf("command = %+v", cmd)
	}

	respFrame, err := EncodeResponse(NewHandshakeResponse(light))
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	resp, err := DecodeResponse(respFrame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Addr != light || resp.Version != Version {
		t.Fatalf("response = %+v", resp)
	}
}

// Every single-byte mutation of the body must be caught by the checksum.
func TestHandshakeRejectsAnyBodyMutation(t *testing.T) {
	frames := map[string][]byte{}
	frames["command"], _ = EncodeCommand(NewHandshake(types.MAC{1, 2, 3, 4, 5, 6}))
	frames["response"], _ = EncodeResponse(NewHandshakeResponse(types.MAC{6, 5, 4, 3, 2, 1}))

	for name, frame := range frames {
		bodyLen := int(frame[0])
		for i := LengthFieldSize; i < LengthFieldSize+bodyLen; i++ {
			for _, flip := range []byte{0x01, 0x80, 0xFF} {
				mut := append([]byte{}, frame...)
				mut[i] ^= flip
				var err error
				if name == "command" {
					_, err = DecodeCommand(mut)
				} else {
					_, err = DecodeResponse(mut)
				}
				if errcode.Of(err) != errcode.ChecksumMismatch {
					t.Fatalf("%s: byte %d ^%#x: err = %v, want checksum_mismatch", name, i, flip, err)
				}
			}
		}
	}
}

func TestHandshakeVersionMismatch(t *testing.T) {
	cmd := NewHandshake(types.MAC{1, 1, 1, 1, 1, 1})
	cmd.Version = Version + 2
	frame, _ := EncodeCommand(cmd)
	got, err := DecodeCommand(frame)
	if errcode.Of(err) != errcode.VersionMismatch {
		t.Fatalf("err = %v, want version_mismatch", err)
	}
	if got.Version != Version+2 {
		t.Fatalf("version = %d", got.Version)
	}
}
