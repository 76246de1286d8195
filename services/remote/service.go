// Package remote is the button remote: pin interrupts feed a monitor, presses
// are grouped into gestures and each gesture is broadcast once.
package remote

import (
	"context"
	"sync"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/services/pairing"
	"spark-go/types"
)

const owner = "remote"

// Run claims the remote's peripherals, pairs with the light if a pairing bus
// is configured and then runs monitor, aggregator and sender until ctx ends.
// Peripheral errors are returned before anything starts.
func Run(ctx context.Context, cfg types.RemoteConfig, reg core.Registry, conn *bus.Connection) error {
	if err := cfg.Validate(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: owner, Msg: err.Error()}
	}

	pull := core.ParsePull(cfg.Pull)
	inputs := make([]ButtonInput, 0, len(cfg.Buttons))
	for _, bp := range cfg.Buttons {
		pin, err := reg.ClaimIRQPin(owner, bp.Pin)
		if err != nil {
			return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "button " + bp.Button.String(), Err: err}
		}
		if err := pin.ConfigureInput(pull); err != nil {
			return &errcode.E{C: errcode.InvalidParams, Op: owner, Msg: "button " + bp.Button.String(), Err: err}
		}
		inputs = append(inputs, ButtonInput{Button: bp.Button, Pin: pin})
	}

	radio, err := reg.ClaimRadio(owner, cfg.Radio)
	if err != nil {
		return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "radio", Err: err}
	}

	var master *pairing.Master
	if cfg.Pairing.Bus != "" {
		ctrl, err := reg.ClaimI2CController(owner, cfg.Pairing)
		if err != nil {
			return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "pairing bus", Err: err}
		}
		master = &pairing.Master{Bus: ctrl, Addr: cfg.Pairing.Addr}
	}

	mon, err := NewMonitor(inputs, cfg.PressedLow(), conn)
	if err != nil {
		return err
	}
	defer mon.Close()

	if master != nil {
		println("[remote] pairing on", cfg.Pairing.Bus)
		peer, err := master.Pair(ctx, radio.Addr())
		if err != nil {
			return err
		}
		if err := radio.AddPeer(peer); err != nil {
			return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "add peer", Err: err}
		}
		println("[remote] paired with", peer.String())
		if conn != nil {
			conn.Publish(conn.NewMessage(bus.T("remote", "pairing"),
				types.PairingValue{Own: radio.Addr(), Peer: peer}, true))
		}
	}

	presses := make(chan types.ButtonPressEvent, 8)
	gestures := make(chan types.ButtonSequence, 2)
	sender := &Sender{Radio: radio, Conn: conn}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); _ = mon.Run(ctx, presses) }()
	go func() { defer wg.Done(); _ = RunAggregator(ctx, presses, gestures, PollTick) }()
	go func() { defer wg.Done(); _ = sender.Run(ctx, gestures) }()
	println("[remote] running with", len(inputs), "buttons")
	wg.Wait()
	return ctx.Err()
}
