// services/remote/monitor.go
package remote

import (
	"context"
	"sync"
	"time"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/types"
	"spark-go/x/timex"
	"spark-go/x/wakeup"
)

// ButtonInput binds a logical button to its claimed pin.
type ButtonInput struct {
	Button types.Button
	Pin    core.IRQPin
}

type watched struct {
	button types.Button
	pin    core.IRQPin
	n      *Notifier
	last   bool
}

// Monitor turns wakeup bits into press events. Bit i belongs to input i;
// bits raised in one batch are processed in input order.
type Monitor struct {
	word      *wakeup.Word
	activeLow bool
	conn      *bus.Connection // optional telemetry
	now       func() time.Time

	mu     sync.Mutex
	inputs []watched
}

// NewMonitor arms an any-edge notifier on every input.
func NewMonitor(inputs []ButtonInput, activeLow bool, conn *bus.Connection) (*Monitor, error) {
	if len(inputs) == 0 || len(inputs) > 32 {
		return nil, errcode.InvalidParams
	}
	m := &Monitor{
		word:      wakeup.New(),
		activeLow: activeLow,
		conn:      conn,
		now:       time.Now,
		inputs:    make([]watched, 0, len(inputs)),
	}
	for i, in := range inputs {
		n, err := NewNotifier(in.Pin, core.EdgeBoth, m.word, uint(i))
		if err != nil {
			m.Close()
			return nil, err
		}
		m.inputs = append(m.inputs, watched{button: in.Button, pin: in.Pin, n: n, last: in.Pin.Get()})
	}
	return m, nil
}

// Run blocks on the wakeup word and emits one event per transition into
// the active level. It returns only when ctx ends.
func (m *Monitor) Run(ctx context.Context, out chan<- types.ButtonPressEvent) error {
	for {
		bits, err := m.word.Wait(ctx)
		if err != nil {
			return err
		}
		if err := m.process(ctx, bits, out); err != nil {
			return err
		}
	}
}

func (m *Monitor) process(ctx context.Context, bits uint32, out chan<- types.ButtonPressEvent) error {
	// Re-arm before sampling so an edge after the sample raises a new wake.
	for i := range m.inputs {
		m.inputs[i].n.Rearm()
	}

	var events [32]types.ButtonPressEvent
	k := 0
	m.mu.Lock()
	for i := range m.inputs {
		if bits&wakeup.Bit(uint(i)) == 0 {
			continue
		}
		w := &m.inputs[i]
		level := w.pin.Get()
		if level == w.last {
			continue
		}
		w.last = level
		if level != m.activeLow {
			events[k] = types.ButtonPressEvent{Button: w.button, At: m.now()}
			k++
		}
	}
	m.mu.Unlock()

	for _, ev := range events[:k] {
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.publish(ev)
	}
	return nil
}

func (m *Monitor) publish(ev types.ButtonPressEvent) {
	if m.conn == nil {
		return
	}
	m.conn.Publish(m.conn.NewMessage(
		bus.T("remote", "button", ev.Button.Number(), "pressed"),
		types.PressValue{Button: ev.Button, TSms: timex.Ms(ev.At)},
		false,
	))
}

// Pressed reports the last observed state of each input, in input order.
func (m *Monitor) Pressed() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.inputs))
	for i, w := range m.inputs {
		out[i] = w.last != m.activeLow
	}
	return out
}

// Suppressed totals edges dropped while notifiers were pending.
func (m *Monitor) Suppressed() uint32 {
	var n uint32
	for _, w := range m.inputs {
		n += w.n.Suppressed()
	}
	return n
}

// Close removes every interrupt handler.
func (m *Monitor) Close() {
	for _, w := range m.inputs {
		_ = w.n.Close()
	}
}
