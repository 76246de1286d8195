// services/hal/provider/air.go
package provider

import (
	"context"
	"sync"
	"sync/atomic"

	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/types"
)

// MaxDatagram is the largest payload the simulated link carries.
const MaxDatagram = 250

// Air is a shared broadcast medium for host simulation. Every joined radio
// on the same channel hears broadcasts; nothing is retried or acknowledged.
type Air struct {
	mu    sync.RWMutex
	nodes map[types.MAC]*airRadio
	drop  func(core.Datagram) bool

	lost atomic.Uint32
}

func NewAir() *Air { return &Air{nodes: map[types.MAC]*airRadio{}} }

// SetDrop installs a loss model; returning true discards the datagram.
func (a *Air) SetDrop(fn func(core.Datagram) bool) {
	a.mu.Lock()
	a.drop = fn
	a.mu.Unlock()
}

// Lost counts datagrams discarded by the loss model or full receivers.
func (a *Air) Lost() uint32 { return a.lost.Load() }

// Join attaches a radio with the given address. Addresses are unique on the air.
func (a *Air) Join(addr types.MAC, channel uint8) (core.Radio, error) {
	if addr.IsZero() || addr.IsBroadcast() {
		return nil, errcode.Wrap(errcode.InvalidParams, "air", "address "+addr.String())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.nodes[addr]; taken {
		return nil, errcode.Wrap(errcode.BusInUse, "air", "address "+addr.String())
	}
	r := &airRadio{
		air:     a,
		addr:    addr,
		channel: channel,
		inbox:   make(chan core.Datagram, 16),
		peers:   map[types.MAC]bool{},
	}
	a.nodes[addr] = r
	return r, nil
}

func (a *Air) leave(r *airRadio) {
	a.mu.Lock()
	if a.nodes[r.addr] == r {
		delete(a.nodes, r.addr)
	}
	a.mu.Unlock()
}

func (a *Air) transmit(from *airRadio, dg core.Datagram) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.drop != nil && a.drop(dg) {
		a.lost.Add(1)
		return
	}
	for addr, n := range a.nodes {
		if n == from || n.channel != from.channel {
			continue
		}
		if !dg.Dst.IsBroadcast() && dg.Dst != addr {
			continue
		}
		select {
		case n.inbox <- dg:
		default:
			a.lost.Add(1)
		}
	}
}

type airRadio struct {
	air     *Air
	addr    types.MAC
	channel uint8
	inbox   chan core.Datagram

	mu    sync.Mutex
	peers map[types.MAC]bool
}

func (r *airRadio) Addr() types.MAC { return r.addr }

func (r *airRadio) AddPeer(peer types.MAC) error {
	r.mu.Lock()
	r.peers[peer] = true
	r.mu.Unlock()
	return nil
}

func (r *airRadio) Send(dst types.MAC, data []byte) error {
	if len(data) > MaxDatagram {
		return errcode.FrameTooLarge
	}
	if !dst.IsBroadcast() {
		r.mu.Lock()
		known := r.peers[dst]
		r.mu.Unlock()
		if !known {
			return errcode.Wrap(errcode.InvalidParams, "send", "peer not added")
		}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	r.air.transmit(r, core.Datagram{Src: r.addr, Dst: dst, Data: buf})
	return nil
}

func (r *airRadio) Receive(ctx context.Context) (core.Datagram, error) {
	select {
	case dg := <-r.inbox:
		return dg, nil
	case <-ctx.Done():
		return core.Datagram{}, ctx.Err()
	}
}

func (r *airRadio) Close() error {
	r.air.leave(r)
	return nil
}
