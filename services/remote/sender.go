// services/remote/sender.go
package remote

import (
	"context"
	"sync/atomic"

	"spark-go/bus"
	"spark-go/protocol"
	"spark-go/services/hal/core"
	"spark-go/types"
	"spark-go/x/timex"
)

// Sender broadcasts flushed gestures. Delivery is best effort: failures are
// logged and counted, never retried.
type Sender struct {
	Radio core.Radio
	Conn  *bus.Connection // optional telemetry

	sent     atomic.Uint32
	failures atomic.Uint32
}

// Send classifies, encodes and broadcasts one gesture.
func (s *Sender) Send(seq types.ButtonSequence) error {
	buf, err := protocol.EncodeMessage(protocol.NewMessage(protocol.Classify(seq)))
	if err != nil {
		return err
	}
	return s.Radio.Send(types.Broadcast, buf)
}

// Run sends every gesture received on in until ctx ends.
func (s *Sender) Run(ctx context.Context, in <-chan types.ButtonSequence) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case seq, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.Send(seq); err != nil {
				s.failures.Add(1)
				println("[remote] send", seq.String(), "failed:", err.Error())
				continue
			}
			s.sent.Add(1)
			println("[remote] sent", seq.String())
			if s.Conn != nil {
				s.Conn.Publish(s.Conn.NewMessage(bus.T("remote", "gesture"),
					types.GestureValue{Sequence: seq, From: s.Radio.Addr(), TSms: timex.NowMs()}, false))
			}
		}
	}
}

func (s *Sender) Sent() uint32     { return s.sent.Load() }
func (s *Sender) Failures() uint32 { return s.failures.Load() }
