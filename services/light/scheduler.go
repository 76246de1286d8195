// services/light/scheduler.go
package light

import "time"

const (
	// AnimationDuration is how long one trigger keeps the light running.
	AnimationDuration = 3 * time.Second
	// FrameInterval paces hue steps.
	FrameInterval = 10 * time.Millisecond
)

// Action is what a tick asks the renderer to do.
type Action uint8

const (
	None  Action = iota // idle, nothing to draw
	Frame               // advance the hue and draw
	Blank               // deadline reached, clear the strips
)

// Scheduler is the Idle/Running state machine. Time is passed in.
type Scheduler struct {
	running  bool
	deadline time.Time
	hue      uint8
}

// Trigger starts or extends the animation to now+AnimationDuration. The hue
// carries on from where it was.
func (s *Scheduler) Trigger(now time.Time) {
	s.running = true
	s.deadline = now.Add(AnimationDuration)
}

// Tick advances one frame while now is before the deadline and returns Blank
// (moving to Idle) once it has passed.
func (s *Scheduler) Tick(now time.Time) Action {
	if !s.running {
		return None
	}
	if !now.Before(s.deadline) {
		s.running = false
		s.deadline = time.Time{}
		return Blank
	}
	s.hue++
	return Frame
}

func (s *Scheduler) Running() bool       { return s.running }
func (s *Scheduler) Deadline() time.Time { return s.deadline }
func (s *Scheduler) Hue() uint8          { return s.hue }
