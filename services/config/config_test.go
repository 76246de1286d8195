// config/config_test.go
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/services/pairing"
	"spark-go/types"
)

func TestEmbeddedConfigsParse(t *testing.T) {
	tests := []struct {
		device      string
		remote      bool
		light       bool
		radioPort   string
		heartbeatOn bool
	}{
		{device: "remote", remote: true, radioPort: "uart0", heartbeatOn: true},
		{device: "light", light: true, radioPort: "uart0", heartbeatOn: true},
		{device: "sim", remote: true, light: true},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			d, err := Load(tt.device)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if (d.Remote != nil) != tt.remote || (d.Light != nil) != tt.light {
				t.Fatalf("sections remote=%v light=%v", d.Remote != nil, d.Light != nil)
			}
			if (d.Heartbeat != nil) != tt.heartbeatOn {
				t.Fatalf("heartbeat section = %v", d.Heartbeat)
			}
			if d.Remote != nil {
				if len(d.Remote.Buttons) != 4 || d.Remote.Buttons[3].Button != types.Button4 {
					t.Fatalf("buttons = %+v", d.Remote.Buttons)
				}
				if d.Remote.Radio.Port != tt.radioPort {
					t.Fatalf("remote radio port = %q", d.Remote.Radio.Port)
				}
				if d.Remote.Pairing.Addr != pairing.DefaultAddr {
					t.Fatalf("remote pairing addr = %#x", d.Remote.Pairing.Addr)
				}
			}
			if d.Light != nil {
				if len(d.Light.Strips) != 4 {
					t.Fatalf("strips = %+v", d.Light.Strips)
				}
				if d.Light.Radio.Addr.IsZero() {
					t.Fatal("light radio address missing")
				}
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	d, err := Parse([]byte(`
remote:
  buttons: [{button: 2, pin: 9}]
  radio: {addr: "aa:bb:cc:dd:ee:01", port: /dev/ttyUSB0}
  pairing: {bus: i2c1}
`))
	if err != nil {
		t.Fatal(err)
	}
	r := d.Remote
	if r.Pull != "up" {
		t.Errorf("pull = %q, want up", r.Pull)
	}
	if r.ActiveLow == nil || !*r.ActiveLow {
		t.Errorf("active_low = %v, want true with pull up", r.ActiveLow)
	}
	if r.Radio.Baud != defaultBaud {
		t.Errorf("baud = %d", r.Radio.Baud)
	}
	if r.Pairing.Addr != pairing.DefaultAddr || r.Pairing.Hz != defaultHz {
		t.Errorf("pairing = %+v", r.Pairing)
	}
	if r.Buttons[0].Button != types.Button2 {
		t.Errorf("button label 2 decoded as %s", r.Buttons[0].Button)
	}
	want := types.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0x01}
	if r.Radio.Addr != want {
		t.Errorf("addr = %s", r.Radio.Addr)
	}
}

func TestParseActiveLevelFollowsPull(t *testing.T) {
	d, err := Parse([]byte(`
remote:
  buttons: [{button: 1, pin: 2}]
  pull: down
  radio: {addr: "aa:bb:cc:dd:ee:01"}
`))
	if err != nil {
		t.Fatal(err)
	}
	if r := d.Remote; r.ActiveLow == nil || *r.ActiveLow || r.PressedLow() {
		t.Fatalf("pull down gave active_low = %v", r.ActiveLow)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"unknown key", "remote:\n  buttons: [{button: 1, pin: 2}]\n  radio: {addr: \"02:00:00:00:00:02\"}\n  colour: red\n"},
		{"unknown section", "lamp: {}\n"},
		{"button label zero", "remote:\n  buttons: [{button: 0, pin: 2}]\n  radio: {addr: \"02:00:00:00:00:02\"}\n"},
		{"button label five", "remote:\n  buttons: [{button: 5, pin: 2}]\n  radio: {addr: \"02:00:00:00:00:02\"}\n"},
		{"bad mac", "remote:\n  buttons: [{button: 1, pin: 2}]\n  radio: {addr: \"02:00:00\"}\n"},
		{"no radio address", "remote:\n  buttons: [{button: 1, pin: 2}]\n"},
		{"light with peer and bus", "light:\n  strips: [{pin: 16, pixels: 8}]\n  radio: {addr: \"02:00:00:00:00:01\"}\n  pairing: {bus: i2c0}\n  peer: \"c8:f0:9e:2c:28:8c\"\n"},
		{"light without peer or bus", "light:\n  strips: [{pin: 16, pixels: 8}]\n  radio: {addr: \"02:00:00:00:00:01\"}\n"},
		{"light strip without pixels", "light:\n  strips: [{pin: 16}]\n  radio: {addr: \"02:00:00:00:00:01\"}\n  pairing: {bus: i2c0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if errcode.Of(err) != errcode.InvalidParams {
				t.Fatalf("Parse() err = %v, want invalid_params", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "light.yaml")
	raw := "light:\n  strips: [{pin: 16, pixels: 8}]\n  radio: {addr: \"02:00:00:00:00:01\"}\n  peer: \"c8:f0:9e:2c:28:8c\"\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Light.Peer != (types.MAC{0xC8, 0xF0, 0x9E, 0x2C, 0x28, 0x8C}) {
		t.Fatalf("peer = %s", d.Light.Peer)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "remote")
	svc.Start(ctx, conn)

	awaitCtx, cancel := context.WithTimeout(ctx, 600*time.Millisecond)
	defer cancel()
	rc, err := Await[types.RemoteConfig](awaitCtx, conn, "remote")
	if err != nil {
		t.Fatalf("Await remote: %v", err)
	}
	if len(rc.Buttons) != 4 {
		t.Fatalf("remote config = %+v", rc)
	}
	hb, err := Await[types.HeartbeatConfig](awaitCtx, conn, "heartbeat")
	if err != nil {
		t.Fatalf("Await heartbeat: %v", err)
	}
	if hb.Interval != 10 {
		t.Fatalf("heartbeat interval = %d", hb.Interval)
	}

	// The remote device has no light section.
	short, cancel2 := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel2()
	if _, err := Await[types.LightConfig](short, conn, "light"); err != context.DeadlineExceeded {
		t.Fatalf("Await light = %v, want deadline", err)
	}
}

func TestAwaitSkipsForeignPayloads(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), "not a config", true))

	done := make(chan types.HeartbeatConfig, 1)
	go func() {
		v, _ := Await[types.HeartbeatConfig](context.Background(), conn, "heartbeat")
		done <- v
	}()
	time.Sleep(20 * time.Millisecond)
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), types.HeartbeatConfig{Interval: 3}, true))

	select {
	case v := <-done:
		if v.Interval != 3 {
			t.Fatalf("interval = %d", v.Interval)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Await never returned")
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	// No device ID in context
	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	// Override lookup to simulate absence.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}
