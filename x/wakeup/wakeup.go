// Package wakeup provides the one piece of state shared between interrupt
// context and tasks: a 32-bit notification word.
//
// Set is safe from an interrupt handler: it performs one atomic OR and a
// non-blocking channel send, never allocates and never blocks. Everything
// else is for task context only.
package wakeup

import (
	"context"
	"sync/atomic"
)

// Bit returns the mask for bit i (0..31).
func Bit(i uint) uint32 { return 1 << (i & 31) }

type Word struct {
	bits  atomic.Uint32
	ready chan struct{} // 0->non-zero edge, capacity 1
}

func New() *Word {
	return &Word{ready: make(chan struct{}, 1)}
}

// Set ORs mask into the word and wakes a waiter.
func (w *Word) Set(mask uint32) {
	if mask == 0 {
		return
	}
	w.bits.Or(mask)
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// Take returns the current bits and clears the word without blocking.
func (w *Word) Take() uint32 { return w.bits.Swap(0) }

// Ready fires after Set. A receive may be stale; always follow with Take.
func (w *Word) Ready() <-chan struct{} { return w.ready }

// Wait blocks until any bit is set, then returns and clears the word.
func (w *Word) Wait(ctx context.Context) (uint32, error) {
	for {
		if v := w.Take(); v != 0 {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-w.ready:
		}
	}
}
