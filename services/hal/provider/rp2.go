//go:build rp2040

// services/hal/provider/rp2.go
package provider

import (
	"context"
	"image/color"
	"machine"
	"sync"
	"time"

	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/types"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ws2812"
)

// Ensure the provider satisfies the contracts at compile time.
var _ core.Registry = (*rp2Registry)(nil)

const rp2Pins = 30

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }
func (r *rp2Pin) Get() bool   { return r.p.Get() }

func (r *rp2Pin) ConfigureInput(pull core.Pull) error {
	var mode machine.PinMode
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) SetIRQ(edge core.Edge, handler func()) error {
	var change machine.PinChange
	switch edge {
	case core.EdgeRising:
		change = machine.PinRising
	case core.EdgeFalling:
		change = machine.PinFalling
	case core.EdgeBoth:
		change = machine.PinToggle
	default:
		return r.ClearIRQ()
	}
	return r.p.SetInterrupt(change, func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error { return r.p.SetInterrupt(0, nil) }

// -----------------------------------------------------------------------------
// Pixel strip (WS2812 on one data pin)
// -----------------------------------------------------------------------------

type rp2Strip struct {
	dev ws2812.Device
	n   int
}

func (s *rp2Strip) Len() int { return s.n }

func (s *rp2Strip) WriteColors(buf []color.RGBA) error {
	if len(buf) > s.n {
		return errcode.InvalidParams
	}
	return s.dev.WriteColors(buf)
}

// -----------------------------------------------------------------------------
// I²C controller owner (one worker per bus)
// -----------------------------------------------------------------------------

type i2cReq struct {
	addr uint16
	w, r []byte
	done chan error // buffered(1); worker replies best-effort
}

type i2cOwner struct {
	hw   *machine.I2C
	reqs chan i2cReq
	quit chan struct{}
}

func newI2COwner(hw *machine.I2C) *i2cOwner {
	o := &i2cOwner{hw: hw, reqs: make(chan i2cReq, 4), quit: make(chan struct{})}
	go o.loop()
	return o
}

func (o *i2cOwner) loop() {
	for {
		select {
		case req := <-o.reqs:
			err := o.hw.Tx(req.addr, req.w, req.r)
			select {
			case req.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

func (o *i2cOwner) stop() { close(o.quit) }

// driversI2C adapts the owner to tinygo.org/x/drivers.I2C with a per-call deadline.
type driversI2C struct {
	o       *i2cOwner
	timeout time.Duration
}

var _ drivers.I2C = (*driversI2C)(nil)

func (d *driversI2C) Tx(addr uint16, w, r []byte) error {
	req := i2cReq{addr: addr, w: w, r: r, done: make(chan error, 1)}
	t := time.NewTimer(d.timeout)
	defer t.Stop()
	select {
	case d.o.reqs <- req:
	case <-t.C:
		return errcode.Busy
	}
	select {
	case err := <-req.done:
		if err != nil {
			return &errcode.E{C: errcode.NoAck, Op: "i2c", Err: err}
		}
		return nil
	case <-t.C:
		return errcode.Timeout
	}
}

// -----------------------------------------------------------------------------
// I²C target
// -----------------------------------------------------------------------------

type rp2Target struct {
	hw *machine.I2C
	rx chan []byte

	mu     sync.Mutex
	staged []byte
	idle   [32]byte
}

// newRP2Target starts the bus worker; it keeps answering controller reads
// (with idle bytes once the staged reply is consumed) for the bus lifetime.
func newRP2Target(hw *machine.I2C) *rp2Target {
	t := &rp2Target{hw: hw, rx: make(chan []byte, 4)}
	for i := range t.idle {
		t.idle[i] = idleByte
	}
	go t.loop()
	return t
}

func (t *rp2Target) loop() {
	buf := make([]byte, 64)
	for {
		evt, n, err := t.hw.WaitForEvent(buf)
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		switch evt {
		case machine.I2CReceive:
			if n == 0 {
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case t.rx <- chunk:
			default:
				// reader is behind; the controller will repeat itself
			}
		case machine.I2CRequest:
			t.mu.Lock()
			out := t.staged
			t.staged = nil
			t.mu.Unlock()
			if out == nil {
				out = t.idle[:]
			}
			_ = t.hw.Reply(out)
		}
	}
}

func (t *rp2Target) Read(ctx context.Context, buf []byte) (int, error) {
	select {
	case chunk := <-t.rx:
		return copy(buf, chunk), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (t *rp2Target) Write(buf []byte) error {
	t.mu.Lock()
	t.staged = append(t.staged[:0], buf...)
	t.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// UART: adapts uartx to SerialPort
// -----------------------------------------------------------------------------

type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2SerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, buf)
}

// -----------------------------------------------------------------------------
// Resource registry (GPIO + strips + I²C + UART radio)
// -----------------------------------------------------------------------------

type rp2Registry struct {
	own core.Owners

	mu        sync.Mutex
	i2cOwners map[string]*i2cOwner
}

// NewRegistry returns the hardware registry. Buses are configured on claim.
func NewRegistry() core.Registry {
	return &rp2Registry{i2cOwners: map[string]*i2cOwner{}}
}

func i2cByID(id string) *machine.I2C {
	switch id {
	case "i2c0":
		return machine.I2C0
	case "i2c1":
		return machine.I2C1
	}
	return nil
}

func uartByID(id string) *uartx.UART {
	switch id {
	case "uart0":
		return uartx.UART0
	case "uart1":
		return uartx.UART1
	}
	return nil
}

func (r *rp2Registry) ClaimIRQPin(owner string, n int) (core.IRQPin, error) {
	if n < 0 || n >= rp2Pins {
		return nil, errcode.UnknownPin
	}
	if err := r.own.ClaimPin(owner, n); err != nil {
		return nil, err
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, nil
}

func (r *rp2Registry) ClaimStrip(owner string, cfg types.StripConfig) (core.PixelStrip, error) {
	if cfg.Pin < 0 || cfg.Pin >= rp2Pins {
		return nil, errcode.UnknownPin
	}
	if cfg.Pixels <= 0 {
		return nil, errcode.InvalidParams
	}
	if err := r.own.ClaimPin(owner, cfg.Pin); err != nil {
		return nil, err
	}
	p := machine.Pin(cfg.Pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &rp2Strip{dev: ws2812.New(p), n: cfg.Pixels}, nil
}

func (r *rp2Registry) ClaimRadio(owner string, cfg types.RadioConfig) (core.Radio, error) {
	u := uartByID(cfg.Port)
	if u == nil {
		return nil, errcode.UnknownBus
	}
	if err := r.own.ClaimBus(owner, cfg.Port); err != nil {
		return nil, err
	}
	// Defaults inside uartx apply when zero.
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	}); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "radio", Err: err}
	}
	return NewStreamRadio(&rp2SerialPort{u: u}, cfg.Addr), nil
}

func (r *rp2Registry) configureI2C(cfg types.PairingConfig, mode machine.I2CMode) (*machine.I2C, error) {
	hw := i2cByID(cfg.Bus)
	if hw == nil {
		return nil, errcode.UnknownBus
	}
	sda, scl := machine.Pin(cfg.SDA), machine.Pin(cfg.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{
		SDA:       sda,
		SCL:       scl,
		Frequency: cfg.Hz,
		Mode:      mode,
	}); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "i2c", Err: err}
	}
	return hw, nil
}

func (r *rp2Registry) ClaimI2CController(owner string, cfg types.PairingConfig) (drivers.I2C, error) {
	if err := r.own.ClaimBus(owner, cfg.Bus); err != nil {
		return nil, err
	}
	hw, err := r.configureI2C(cfg, machine.I2CModeController)
	if err != nil {
		return nil, err
	}
	o := newI2COwner(hw)
	r.mu.Lock()
	r.i2cOwners[cfg.Bus] = o
	r.mu.Unlock()
	return &driversI2C{o: o, timeout: 250 * time.Millisecond}, nil
}

func (r *rp2Registry) ClaimI2CTarget(owner string, cfg types.PairingConfig) (core.I2CTarget, error) {
	if err := r.own.ClaimBus(owner, cfg.Bus); err != nil {
		return nil, err
	}
	hw, err := r.configureI2C(cfg, machine.I2CModeTarget)
	if err != nil {
		return nil, err
	}
	if err := hw.Listen(cfg.Addr); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "i2c", Err: err}
	}
	return newRP2Target(hw), nil
}

// Close stops background workers (per-bus I²C goroutines).
func (r *rp2Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.i2cOwners {
		o.stop()
		delete(r.i2cOwners, id)
	}
}

// Default returns the registry for this build's hardware.
func Default(string) core.Registry { return NewRegistry() }
