// services/remote/notifier.go
package remote

import (
	"sync/atomic"

	"spark-go/services/hal/core"
	"spark-go/x/wakeup"
)

// NotifierState is the per-pin interrupt arm state.
type NotifierState uint32

const (
	Armed NotifierState = iota
	Pending
)

func (s NotifierState) String() string {
	if s == Pending {
		return "pending"
	}
	return "armed"
}

// Notifier turns pin interrupts into wakeup bits. The first edge after arming
// sets the bit and moves to Pending; further edges are suppressed until the
// consumer calls Rearm. The handler never reads the pin.
type Notifier struct {
	pin  core.IRQPin
	word *wakeup.Word
	mask uint32

	state      atomic.Uint32
	suppressed atomic.Uint32
}

// NewNotifier installs the interrupt handler and arms the notifier.
func NewNotifier(pin core.IRQPin, edge core.Edge, w *wakeup.Word, bit uint) (*Notifier, error) {
	n := &Notifier{pin: pin, word: w, mask: wakeup.Bit(bit)}
	if err := pin.SetIRQ(edge, n.fire); err != nil {
		return nil, err
	}
	return n, nil
}

// fire runs in interrupt context.
func (n *Notifier) fire() {
	if n.state.CompareAndSwap(uint32(Armed), uint32(Pending)) {
		n.word.Set(n.mask)
		return
	}
	n.suppressed.Add(1)
}

func (n *Notifier) State() NotifierState { return NotifierState(n.state.Load()) }

// Rearm re-enables notification after the consumer has handled the bit.
func (n *Notifier) Rearm() { n.state.Store(uint32(Armed)) }

// Suppressed counts edges that arrived while Pending.
func (n *Notifier) Suppressed() uint32 { return n.suppressed.Load() }

func (n *Notifier) Close() error { return n.pin.ClearIRQ() }
