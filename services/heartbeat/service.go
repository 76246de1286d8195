// Package heartbeat prints a periodic status line: uptime, gesture count and
// heap usage. The period comes from config/heartbeat.
package heartbeat

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"spark-go/bus"
	"spark-go/types"
)

// DefaultInterval applies until config/heartbeat says otherwise.
const DefaultInterval = 5 * time.Second

var (
	topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}
	topicGestures        = bus.Topic{bus.SingleWild, "gesture"}
)

type Service struct {
	gestures atomic.Uint32
	interval atomic.Int64
	started  time.Time
}

func (s *Service) Gestures() uint32        { return s.gestures.Load() }
func (s *Service) Interval() time.Duration { return time.Duration(s.interval.Load()) }

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub, gSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(gSub)

	tick := time.NewTicker(s.Interval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			s.report(t)
		case <-gSub.Channel():
			s.gestures.Add(1)
		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok || cfg.Interval <= 0 {
				continue
			}
			iv := time.Duration(cfg.Interval) * time.Second
			s.interval.Store(int64(iv))
			tick.Reset(iv)
			println("[heartbeat] interval set to", cfg.Interval, "seconds")
		}
	}
}

func (s *Service) report(t time.Time) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	println(
		"[heartbeat]", t.Format("15:04:05"),
		"up:", int64(t.Sub(s.started)/time.Second),
		"gestures:", s.gestures.Load(),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
	)
}

// Start subscribes before returning so no retained config or gesture is
// missed, then runs the loop in the background.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.started = time.Now()
	s.interval.Store(int64(DefaultInterval))
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	gSub := conn.Subscribe(topicGestures)
	go s.serviceLoop(ctx, conn, cfgSub, gSub)
	return nil
}
