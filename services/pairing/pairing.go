// Package pairing exchanges wireless addresses over the pairing bus once at
// startup. The remote is the bus controller, the light the addressed target.
package pairing

import (
	"context"
	"errors"
	"time"

	"spark-go/errcode"
	"spark-go/protocol"
	"spark-go/services/hal/core"
	"spark-go/types"

	"tinygo.org/x/drivers"
)

const (
	// DefaultAddr is the light's target address on the pairing bus.
	DefaultAddr uint16 = 0x23

	PollInterval = 20 * time.Millisecond
	// ResendEvery polls without a valid reply, the command is written again.
	ResendEvery = 10
	// Linger keeps the target answering repeated commands after it replied.
	Linger = 500 * time.Millisecond
)

// Master drives the exchange from the controller side.
type Master struct {
	Bus  drivers.I2C
	Addr uint16
}

// Pair writes a handshake command and polls for the response, re-sending
// the command periodically. It blocks until a response verifies or ctx ends.
func (m *Master) Pair(ctx context.Context, own types.MAC) (types.MAC, error) {
	cmd, err := protocol.EncodeCommand(protocol.NewHandshake(own))
	if err != nil {
		return types.MAC{}, err
	}
	var rx [protocol.MaxFrameSize]byte
	t := time.NewTicker(PollInterval)
	defer t.Stop()

	for poll := 0; ; poll++ {
		if poll%ResendEvery == 0 {
			if err := m.Bus.Tx(m.Addr, cmd, nil); err != nil && poll == 0 {
				println("[pair] command not acknowledged:", err.Error())
			}
		}
		select {
		case <-ctx.Done():
			return types.MAC{}, ctx.Err()
		case <-t.C:
		}

		if err := m.Bus.Tx(m.Addr, nil, rx[:]); err != nil {
			continue
		}
		resp, err := protocol.DecodeResponse(rx[:])
		switch {
		case err == nil:
			return resp.Addr, nil
		case errcode.Of(err) == errcode.Malformed:
			// idle bus: the target has not answered yet
		default:
			println("[pair] response dropped:", err.Error())
		}
	}
}

// Slave answers handshake commands from the target side.
type Slave struct {
	Bus core.I2CTarget
}

// Serve reads command frames until one verifies, replies with own address
// and returns the controller's address. Damaged or foreign-version frames
// are logged and skipped. After replying it keeps answering repeated
// commands until the bus has been quiet for Linger.
func (s *Slave) Serve(ctx context.Context, own types.MAC) (types.MAC, error) {
	resp, err := protocol.EncodeResponse(protocol.NewHandshakeResponse(own))
	if err != nil {
		return types.MAC{}, err
	}

	var (
		peer   types.MAC
		paired bool
		resync bool
		acc    []byte
		buf    [protocol.MaxFrameSize]byte
	)
	for {
		for len(acc) > 0 {
			frame, err := nextFrame(acc)
			if frame == nil && err == nil {
				break
			}
			if err != nil {
				// resync a byte at a time so a damaged length cannot eat the next command
				if !resync {
					println("[pair] frame dropped:", err.Error())
				}
				resync = true
				acc = acc[1:]
				continue
			}
			resync = false
			acc = acc[len(frame):]
			cmd, err := protocol.DecodeCommand(frame)
			if err != nil {
				if errcode.IsProtocol(err) {
					println("[pair] command ignored:", err.Error())
				} else {
					println("[pair] command dropped:", err.Error())
				}
				continue
			}
			if err := s.Bus.Write(resp); err != nil {
				println("[pair] reply failed:", err.Error())
				continue
			}
			if !paired {
				println("[pair] peer", cmd.Peer.String())
			}
			peer, paired = cmd.Peer, true
		}

		rctx, cancel := ctx, context.CancelFunc(func() {})
		if paired {
			rctx, cancel = context.WithTimeout(ctx, Linger)
		}
		n, err := s.Bus.Read(rctx, buf[:])
		cancel()
		if err != nil {
			if paired && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return peer, nil
			}
			return types.MAC{}, err
		}
		acc = append(acc, buf[:n]...)
	}
}

// nextFrame returns the verified frame at the start of acc, or nil and no
// error when acc holds only part of one. Lengths beyond a pairing frame,
// including idle bytes, are rejected without waiting for more input.
func nextFrame(acc []byte) ([]byte, error) {
	if int(acc[0]) > protocol.MaxBodySize {
		return nil, errcode.Wrap(errcode.FrameTooLarge, "frame", "")
	}
	_, n, err := protocol.ParseFrame(acc)
	if n == 0 || err != nil {
		return nil, err
	}
	return acc[:n], nil
}
