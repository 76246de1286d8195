// Package light is the light controller: it pairs with the remote, listens
// for broadcast gestures and runs a timed colour-cycle animation on its strips.
package light

import (
	"context"
	"sync"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/services/pairing"
	"spark-go/types"
	"spark-go/x/wakeup"
)

const owner = "light"

// Run claims the strips, radio and pairing target, then animates on every
// accepted gesture until ctx ends. Peripheral errors are returned before
// anything starts. A preset Peer is trusted without pairing.
func Run(ctx context.Context, cfg types.LightConfig, reg core.Registry, conn *bus.Connection) error {
	if err := cfg.Validate(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: owner, Msg: err.Error()}
	}

	strips := make([]core.PixelStrip, 0, len(cfg.Strips))
	for _, sc := range cfg.Strips {
		s, err := reg.ClaimStrip(owner, sc)
		if err != nil {
			return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "strip", Err: err}
		}
		strips = append(strips, s)
	}

	radio, err := reg.ClaimRadio(owner, cfg.Radio)
	if err != nil {
		return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "radio", Err: err}
	}

	var slave *pairing.Slave
	if cfg.Pairing.Bus != "" {
		tgt, err := reg.ClaimI2CTarget(owner, cfg.Pairing)
		if err != nil {
			return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "pairing bus", Err: err}
		}
		slave = &pairing.Slave{Bus: tgt}
	}

	trigger := wakeup.New()
	lis := NewListener(radio, trigger, conn)
	anim := NewAnimator(strips, cfg.Brightness, trigger, conn)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()
	wg.Add(1)
	go func() { defer wg.Done(); _ = anim.Run(ctx) }()

	peer := cfg.Peer
	if slave != nil {
		println("[light] waiting for pairing on", cfg.Pairing.Bus)
		p, err := slave.Serve(ctx, radio.Addr())
		if err != nil {
			return err
		}
		peer = p
	}
	if err := radio.AddPeer(peer); err != nil {
		return &errcode.E{C: errcode.Of(err), Op: owner, Msg: "add peer", Err: err}
	}
	lis.AllowPeer(peer)
	println("[light] accepting gestures from", peer.String())
	if conn != nil {
		conn.Publish(conn.NewMessage(bus.T("light", "pairing"),
			types.PairingValue{Own: radio.Addr(), Peer: peer}, true))
	}

	wg.Add(1)
	go func() { defer wg.Done(); _ = lis.Run(ctx) }()
	<-ctx.Done()
	return ctx.Err()
}
