// services/hal/provider/sim_pin.go
package provider

import (
	"sync"

	"spark-go/services/hal/core"
)

var _ core.IRQPin = (*SimPin)(nil)

// SimPin is an input pin whose external level is driven by test or sim code.
// Drive calls the IRQ handler synchronously, standing in for interrupt context.
type SimPin struct {
	n int

	mu      sync.Mutex
	level   bool
	edge    core.Edge
	handler func()
}

func NewSimPin(n int) *SimPin { return &SimPin{n: n} }

func (p *SimPin) Number() int { return p.n }

// ConfigureInput settles the floating level according to the pull.
func (p *SimPin) ConfigureInput(pull core.Pull) error {
	p.mu.Lock()
	p.level = pull == core.PullUp
	p.mu.Unlock()
	return nil
}

func (p *SimPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimPin) SetIRQ(edge core.Edge, handler func()) error {
	p.mu.Lock()
	p.edge, p.handler = edge, handler
	p.mu.Unlock()
	return nil
}

func (p *SimPin) ClearIRQ() error {
	p.mu.Lock()
	p.edge, p.handler = core.EdgeNone, nil
	p.mu.Unlock()
	return nil
}

// Drive sets the external level. A change that matches the configured edge
// fires the handler; setting the same level again is not an edge.
func (p *SimPin) Drive(level bool) {
	p.mu.Lock()
	prev := p.level
	p.level = level
	edge, h := p.edge, p.handler
	p.mu.Unlock()

	if prev == level || h == nil {
		return
	}
	switch {
	case edge == core.EdgeBoth,
		edge == core.EdgeRising && level,
		edge == core.EdgeFalling && !level:
		h()
	}
}

// Bounce drives n alternating levels ending at level, as a mechanical
// contact does when it settles.
func (p *SimPin) Bounce(level bool, n int) {
	for i := n; i > 0; i-- {
		p.Drive(level == (i%2 == 1))
	}
	p.Drive(level)
}
