package pairing

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"spark-go/protocol"
	"spark-go/services/hal/provider"
	"spark-go/types"
)

var (
	remoteMAC = types.MAC{0xC8, 0xF0, 0x9E, 0x2C, 0x28, 0x8C}
	lightMAC  = types.MAC{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
)

type serveResult struct {
	peer types.MAC
	err  error
}

func runPair(t *testing.T, link *provider.I2CLink) (types.MAC, serveResult) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan serveResult, 1)
	go func() {
		s := &Slave{Bus: link.Target()}
		peer, err := s.Serve(ctx, lightMAC)
		done <- serveResult{peer, err}
	}()

	m := &Master{Bus: link.Controller(), Addr: DefaultAddr}
	got, err := m.Pair(ctx, remoteMAC)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	return got, <-done
}

func TestPairExchangesAddresses(t *testing.T) {
	got, res := runPair(t, provider.NewI2CLink(DefaultAddr))
	if got != lightMAC {
		t.Fatalf("master learned %s, want %s", got, lightMAC)
	}
	if res.err != nil || res.peer != remoteMAC {
		t.Fatalf("slave learned %s, %v", res.peer, res.err)
	}
}

func TestPairSurvivesCorruptedCommand(t *testing.T) {
	link := provider.NewI2CLink(DefaultAddr)
	link.CorruptWrites(1)
	got, res := runPair(t, link)
	if got != lightMAC || res.peer != remoteMAC || res.err != nil {
		t.Fatalf("pairing after corruption: master=%s slave=%s err=%v", got, res.peer, res.err)
	}
}

func TestPairSurvivesCorruptedResponse(t *testing.T) {
	link := provider.NewI2CLink(DefaultAddr)
	bad, _ := protocol.EncodeResponse(protocol.NewHandshakeResponse(types.MAC{9, 9, 9, 9, 9, 9}))
	bad[3] ^= 0x01
	_ = link.Target().Write(bad)

	got, res := runPair(t, link)
	if got != lightMAC || res.err != nil {
		t.Fatalf("master=%s err=%v", got, res.err)
	}
}

// A command whose length byte was damaged must not swallow the good command
// written right after it.
func TestSlaveResyncsAfterDamagedLength(t *testing.T) {
	link := provider.NewI2CLink(DefaultAddr)
	good, _ := protocol.EncodeCommand(protocol.NewHandshake(remoteMAC))
	bad := append([]byte(nil), good...)
	bad[0] += 2
	stream := append(append(bad, good...), bytes.Repeat([]byte{0xFF}, protocol.MaxFrameSize)...)
	if err := link.Controller().Tx(DefaultAddr, stream, nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s := &Slave{Bus: link.Target()}
	peer, err := s.Serve(ctx, lightMAC)
	if err != nil || peer != remoteMAC {
		t.Fatalf("Serve = %s, %v", peer, err)
	}

	rx := make([]byte, protocol.MaxFrameSize)
	if err := link.Controller().Tx(DefaultAddr, nil, rx); err != nil {
		t.Fatal(err)
	}
	if resp, err := protocol.DecodeResponse(rx); err != nil || resp.Addr != lightMAC {
		t.Fatalf("reply = %+v, %v", resp, err)
	}
}

func TestNextFrame(t *testing.T) {
	good, _ := protocol.EncodeCommand(protocol.NewHandshake(remoteMAC))
	tests := []struct {
		name    string
		acc     []byte
		wantLen int
		wantErr bool
	}{
		{"complete", good, len(good), false},
		{"partial", good[:5], 0, false},
		{"idle byte", []byte{0xFF}, 0, true},
		{"zero length", []byte{0, 1, 2}, 0, true},
		{"checksum", append([]byte{good[0]}, make([]byte, len(good)-1)...), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := nextFrame(tt.acc)
			if len(frame) != tt.wantLen || (err != nil) != tt.wantErr {
				t.Fatalf("nextFrame() = %d bytes, %v", len(frame), err)
			}
		})
	}
}

func TestSlaveSkipsOtherVersion(t *testing.T) {
	link := provider.NewI2CLink(DefaultAddr)
	old := protocol.NewHandshake(types.MAC{7, 7, 7, 7, 7, 7})
	old.Version = protocol.Version + 1
	frame, _ := protocol.EncodeCommand(old)
	_ = link.Controller().Tx(DefaultAddr, frame, nil)

	_, res := runPair(t, link)
	if res.peer != remoteMAC {
		t.Fatalf("slave accepted %s", res.peer)
	}
}

func TestMasterWithoutTargetBlocksUntilDone(t *testing.T) {
	link := provider.NewI2CLink(DefaultAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	m := &Master{Bus: link.Controller(), Addr: DefaultAddr}
	if _, err := m.Pair(ctx, remoteMAC); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline", err)
	}
}
