// services/hal/provider/memstrip.go
package provider

import (
	"image/color"
	"sync"

	"spark-go/errcode"
	"spark-go/services/hal/core"
)

var _ core.PixelStrip = (*MemStrip)(nil)

// MemStrip records the last frame written, for tests and the simulator.
type MemStrip struct {
	mu     sync.Mutex
	pixels []color.RGBA
	writes int
}

func NewMemStrip(n int) *MemStrip { return &MemStrip{pixels: make([]color.RGBA, n)} }

func (s *MemStrip) Len() int { return len(s.pixels) }

func (s *MemStrip) WriteColors(buf []color.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(buf) > len(s.pixels) {
		return errcode.InvalidParams
	}
	copy(s.pixels, buf)
	s.writes++
	return nil
}

// Pixels returns a copy of the current frame.
func (s *MemStrip) Pixels() []color.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]color.RGBA, len(s.pixels))
	copy(out, s.pixels)
	return out
}

// Writes counts frames written so far.
func (s *MemStrip) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Lit reports whether any pixel is non-black.
func (s *MemStrip) Lit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pixels {
		if p.R|p.G|p.B != 0 {
			return true
		}
	}
	return false
}
