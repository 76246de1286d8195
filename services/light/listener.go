// services/light/listener.go
package light

import (
	"context"
	"sync"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/protocol"
	"spark-go/services/hal/core"
	"spark-go/types"
	"spark-go/x/timex"
	"spark-go/x/wakeup"
)

// Listener filters and decodes broadcast gestures and raises the trigger.
// Nothing it receives can stop it: every failure drops one datagram.
type Listener struct {
	radio   core.Radio
	trigger *wakeup.Word
	conn    *bus.Connection // optional telemetry

	mu    sync.Mutex
	peers map[types.MAC]bool
	stats types.RadioStats
}

func NewListener(radio core.Radio, trigger *wakeup.Word, conn *bus.Connection) *Listener {
	return &Listener{radio: radio, trigger: trigger, conn: conn, peers: map[types.MAC]bool{}}
}

// AllowPeer adds a remote to the source allow-list.
func (l *Listener) AllowPeer(mac types.MAC) {
	l.mu.Lock()
	l.peers[mac] = true
	l.mu.Unlock()
}

func (l *Listener) Stats() types.RadioStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Run receives until ctx ends.
func (l *Listener) Run(ctx context.Context) error {
	for {
		dg, err := l.radio.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			println("[light] receive failed:", err.Error())
			continue
		}
		l.Handle(dg)
	}
}

// Handle processes one datagram and reports whether it raised the trigger.
// Only broadcasts from an allowed source are decoded.
func (l *Listener) Handle(dg core.Datagram) bool {
	l.mu.Lock()
	allowed := dg.Dst.IsBroadcast() && l.peers[dg.Src]
	if !allowed {
		l.stats.Filtered++
	}
	l.mu.Unlock()
	if !allowed {
		return false
	}

	msg, err := protocol.DecodeMessage(dg.Data)
	if err != nil {
		l.mu.Lock()
		switch {
		case errcode.Of(err) == errcode.VersionMismatch:
			l.stats.BadVersion++
		case errcode.IsProtocol(err):
			l.stats.UnknownTag++
		default:
			l.stats.Malformed++
		}
		l.mu.Unlock()
		if errcode.IsTransport(err) {
			println("[light] dropped damaged datagram from", dg.Src.String(), ":", err.Error())
		} else {
			println("[light] ignored datagram from", dg.Src.String(), ":", err.Error())
		}
		l.publishStats()
		return false
	}

	l.mu.Lock()
	l.stats.Accepted++
	l.mu.Unlock()
	l.trigger.Set(wakeup.Bit(TriggerBit))

	seq := sequenceOf(msg.Payload)
	println("[light] gesture", seq.String(), "from", dg.Src.String())
	if l.conn != nil {
		l.conn.Publish(l.conn.NewMessage(bus.T("light", "gesture"),
			types.GestureValue{Sequence: seq, From: dg.Src, TSms: timex.NowMs()}, false))
	}
	l.publishStats()
	return true
}

// sequenceOf expands a payload back into the presses it describes.
func sequenceOf(p protocol.Payload) types.ButtonSequence {
	switch v := p.(type) {
	case protocol.ButtonSequenceEvent:
		return v.Sequence
	case protocol.ButtonEvent:
		n := uint32(1)
		if sp, ok := v.Event.(protocol.ShortPress); ok && sp.Count > 1 {
			n = min(sp.Count, types.MaxSequenceLen)
		}
		var seq types.ButtonSequence
		for i := uint32(0); i < n; i++ {
			seq.Push(v.Button)
		}
		return seq
	}
	return types.ButtonSequence{}
}

func (l *Listener) publishStats() {
	if l.conn == nil {
		return
	}
	l.conn.Publish(l.conn.NewMessage(bus.T("light", "radio"), l.Stats(), true))
}
