// services/hal/core/ownership.go
package core

import (
	"sync"

	"spark-go/errcode"
)

// Owners tracks which component holds each resource. Providers embed it
// so every backend enforces the same claim rules.
type Owners struct {
	mu   sync.Mutex
	pins map[int]string
	bus  map[string]string
}

// ClaimPin records owner for pin n.
func (o *Owners) ClaimPin(owner string, n int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pins == nil {
		o.pins = map[int]string{}
	}
	if cur, taken := o.pins[n]; taken && cur != owner {
		return errcode.PinInUse
	}
	o.pins[n] = owner
	return nil
}

// ClaimBus records owner for the named bus (i2c0, uart1, air, ...).
func (o *Owners) ClaimBus(owner, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bus == nil {
		o.bus = map[string]string{}
	}
	if cur, taken := o.bus[id]; taken && cur != owner {
		return errcode.BusInUse
	}
	o.bus[id] = owner
	return nil
}

func (o *Owners) ReleasePin(owner string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pins[n] == owner {
		delete(o.pins, n)
	}
}

func (o *Owners) ReleaseBus(owner, id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bus[id] == owner {
		delete(o.bus, id)
	}
}
