//go:build !rp2040

// services/hal/provider/host.go
package provider

import (
	"io"
	"strings"
	"sync"

	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/types"

	"tinygo.org/x/drivers"
)

// HostPins bounds simulated GPIO numbers, matching the RP2040 bank.
const HostPins = 30

// pairPrefix in RadioConfig.Port selects an in-memory serial line shared
// through the World instead of a device path.
const pairPrefix = "pair:"

// World is the environment shared by simulated devices: the air, the
// pairing links and in-memory serial lines. Devices never share anything else.
type World struct {
	Air *Air

	mu    sync.Mutex
	links map[string]*I2CLink
	lines map[string]*pairEnds
}

type pairEnds struct {
	ends  [2]SerialPort
	taken int
}

func NewWorld() *World {
	return &World{
		Air:   NewAir(),
		links: map[string]*I2CLink{},
		lines: map[string]*pairEnds{},
	}
}

// Link returns the pairing link for a bus id, creating it on first use.
func (w *World) Link(bus string, addr uint16) *I2CLink {
	w.mu.Lock()
	defer w.mu.Unlock()
	l := w.links[bus]
	if l == nil {
		l = NewI2CLink(addr)
		w.links[bus] = l
	}
	return l
}

func (w *World) lineEnd(name string) (SerialPort, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pe := w.lines[name]
	if pe == nil {
		a, b := NewSerialPair(1024)
		pe = &pairEnds{ends: [2]SerialPort{a, b}}
		w.lines[name] = pe
	}
	if pe.taken == len(pe.ends) {
		return nil, errcode.Wrap(errcode.BusInUse, "serial", name)
	}
	end := pe.ends[pe.taken]
	pe.taken++
	return end, nil
}

// Default returns a registry in a private World. Without a partner device
// only serial radio ports and preconfigured peers are useful.
func Default(device string) core.Registry { return NewWorld().NewRegistry(device) }

// NewRegistry returns a per-device registry attached to w.
func (w *World) NewRegistry(device string) *HostRegistry {
	return &HostRegistry{
		device: device,
		world:  w,
		pins:   map[int]*SimPin{},
		strips: map[int]*MemStrip{},
	}
}

var _ core.Registry = (*HostRegistry)(nil)

// HostRegistry hands out simulated peripherals for one device.
type HostRegistry struct {
	device string
	world  *World
	own    core.Owners

	mu      sync.Mutex
	pins    map[int]*SimPin
	strips  map[int]*MemStrip
	closers []io.Closer
}

func (r *HostRegistry) validPin(n int) bool { return n >= 0 && n < HostPins }

// Pin exposes the simulated pin n so a driver can press buttons.
func (r *HostRegistry) Pin(n int) *SimPin {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pins[n]
	if p == nil {
		p = NewSimPin(n)
		r.pins[n] = p
	}
	return p
}

// Strip returns the strip claimed on pin n, or nil.
func (r *HostRegistry) Strip(n int) *MemStrip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strips[n]
}

func (r *HostRegistry) ClaimIRQPin(owner string, n int) (core.IRQPin, error) {
	if !r.validPin(n) {
		return nil, errcode.UnknownPin
	}
	if err := r.own.ClaimPin(owner, n); err != nil {
		return nil, err
	}
	return r.Pin(n), nil
}

func (r *HostRegistry) ClaimStrip(owner string, cfg types.StripConfig) (core.PixelStrip, error) {
	if !r.validPin(cfg.Pin) {
		return nil, errcode.UnknownPin
	}
	if cfg.Pixels <= 0 {
		return nil, errcode.InvalidParams
	}
	if err := r.own.ClaimPin(owner, cfg.Pin); err != nil {
		return nil, err
	}
	s := NewMemStrip(cfg.Pixels)
	r.mu.Lock()
	r.strips[cfg.Pin] = s
	r.mu.Unlock()
	return s, nil
}

func (r *HostRegistry) ClaimRadio(owner string, cfg types.RadioConfig) (core.Radio, error) {
	if err := r.own.ClaimBus(owner, "radio"); err != nil {
		return nil, err
	}
	switch {
	case cfg.Port == "":
		radio, err := r.world.Air.Join(cfg.Addr, cfg.Channel)
		if err != nil {
			r.own.ReleaseBus(owner, "radio")
			return nil, err
		}
		r.track(radio)
		return radio, nil
	case strings.HasPrefix(cfg.Port, pairPrefix):
		port, err := r.world.lineEnd(strings.TrimPrefix(cfg.Port, pairPrefix))
		if err != nil {
			r.own.ReleaseBus(owner, "radio")
			return nil, err
		}
		return NewStreamRadio(port, cfg.Addr), nil
	default:
		port, err := openHostSerial(cfg.Port, cfg.Baud)
		if err != nil {
			r.own.ReleaseBus(owner, "radio")
			return nil, &errcode.E{C: errcode.UnknownBus, Op: "radio", Msg: cfg.Port, Err: err}
		}
		r.track(port)
		return NewStreamRadio(port, cfg.Addr), nil
	}
}

func (r *HostRegistry) ClaimI2CController(owner string, cfg types.PairingConfig) (drivers.I2C, error) {
	if cfg.Bus == "" {
		return nil, errcode.UnknownBus
	}
	if err := r.own.ClaimBus(owner, cfg.Bus); err != nil {
		return nil, err
	}
	return r.world.Link(cfg.Bus, cfg.Addr).Controller(), nil
}

func (r *HostRegistry) ClaimI2CTarget(owner string, cfg types.PairingConfig) (core.I2CTarget, error) {
	if cfg.Bus == "" {
		return nil, errcode.UnknownBus
	}
	if err := r.own.ClaimBus(owner, cfg.Bus); err != nil {
		return nil, err
	}
	return r.world.Link(cfg.Bus, cfg.Addr).Target(), nil
}

func (r *HostRegistry) track(v any) {
	if c, ok := v.(io.Closer); ok {
		r.mu.Lock()
		r.closers = append(r.closers, c)
		r.mu.Unlock()
	}
}

// Close releases radios joined to the air and open serial ports.
func (r *HostRegistry) Close() {
	r.mu.Lock()
	cs := r.closers
	r.closers = nil
	r.mu.Unlock()
	for _, c := range cs {
		_ = c.Close()
	}
}
