// services/hal/core/types.go
package core

import (
	"context"
	"image/color"

	"spark-go/types"

	"tinygo.org/x/drivers"
)

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// ParsePull maps the config spelling; unknown strings select PullNone.
func ParsePull(s string) Pull {
	switch s {
	case "up":
		return PullUp
	case "down":
		return PullDown
	}
	return PullNone
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin is an input pin that can call back from interrupt context.
// Handlers must not block, allocate or read the bus.
type IRQPin interface {
	ConfigureInput(pull Pull) error
	Get() bool
	Number() int
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// ---- Pixel output ----

// PixelStrip is one addressable LED chain.
type PixelStrip interface {
	Len() int
	WriteColors(buf []color.RGBA) error
}

// ---- Broadcast radio ----

// Datagram is one received radio frame with its link-layer addresses.
type Datagram struct {
	Src  types.MAC
	Dst  types.MAC
	Data []byte
}

// Radio is a connectionless, best-effort datagram link. Send to
// types.Broadcast needs no peer entry; unicast requires AddPeer first.
type Radio interface {
	Addr() types.MAC
	AddPeer(peer types.MAC) error
	Send(dst types.MAC, data []byte) error
	Receive(ctx context.Context) (Datagram, error)
}

// ---- Pairing bus ----

// I2CTarget is the addressed (slave) side of a transactional bus.
// Read returns bytes the controller wrote; Write stages bytes served on the
// controller's next read. Reads with nothing staged see 0xFF idle bytes.
type I2CTarget interface {
	Read(ctx context.Context, buf []byte) (int, error)
	Write(buf []byte) error
}

// ---- Resource registry ----

// Registry hands out peripherals with single ownership. Claims of an
// owned resource fail with errcode.PinInUse or errcode.BusInUse, unknown
// ones with errcode.UnknownPin or errcode.UnknownBus.
type Registry interface {
	ClaimIRQPin(owner string, pin int) (IRQPin, error)
	ClaimStrip(owner string, cfg types.StripConfig) (PixelStrip, error)
	ClaimRadio(owner string, cfg types.RadioConfig) (Radio, error)
	ClaimI2CController(owner string, cfg types.PairingConfig) (drivers.I2C, error)
	ClaimI2CTarget(owner string, cfg types.PairingConfig) (I2CTarget, error)
	Close()
}
