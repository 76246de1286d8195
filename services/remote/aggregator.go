// services/remote/aggregator.go
package remote

import (
	"context"
	"time"

	"spark-go/types"
)

const (
	// QuietPeriod without a press closes a gesture.
	QuietPeriod = 700 * time.Millisecond
	// PollTick bounds how late a quiet-period flush can be.
	PollTick = 50 * time.Millisecond
)

// Aggregator groups presses into gestures. It holds no clock; callers pass
// the time so the flush rule can be driven deterministically.
type Aggregator struct {
	seq  types.ButtonSequence
	last time.Time
}

// Push records a press at now. A gesture whose quiet period had already
// ended at now is closed first and returned, so presses spaced by at least
// QuietPeriod never share a gesture however late the caller polls. A gesture
// filled by this press is returned as well.
func (a *Aggregator) Push(b types.Button, now time.Time) (types.ButtonSequence, bool) {
	stale, ok := a.Poll(now)
	a.seq.Push(b)
	a.last = now
	if ok {
		return stale, true
	}
	return a.Poll(now)
}

// Poll flushes the pending sequence when it is full or when QuietPeriod has
// passed since the last press. An empty sequence never flushes.
func (a *Aggregator) Poll(now time.Time) (types.ButtonSequence, bool) {
	if a.seq.Empty() {
		return types.ButtonSequence{}, false
	}
	if !a.seq.Full() && now.Sub(a.last) < QuietPeriod {
		return types.ButtonSequence{}, false
	}
	out := a.seq
	a.seq = types.ButtonSequence{}
	a.last = time.Time{}
	return out, true
}

// Pending returns the sequence collected so far.
func (a *Aggregator) Pending() types.ButtonSequence { return a.seq }

// RunAggregator is the aggregation task: it waits for presses with a bounded
// tick and applies the flush rule on every press and every tick.
func RunAggregator(ctx context.Context, in <-chan types.ButtonPressEvent, out chan<- types.ButtonSequence, tick time.Duration) error {
	if tick <= 0 {
		tick = PollTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()

	var a Aggregator
	for {
		var (
			seq types.ButtonSequence
			ok  bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, more := <-in:
			if !more {
				return nil
			}
			seq, ok = a.Push(ev.Button, ev.At)
		case <-t.C:
			seq, ok = a.Poll(time.Now())
		}
		if !ok {
			continue
		}
		select {
		case out <- seq:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
