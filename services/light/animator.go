// services/light/animator.go
package light

import (
	"context"
	"image/color"
	"time"

	"spark-go/bus"
	"spark-go/services/hal/core"
	"spark-go/types"
	"spark-go/x/timex"
	"spark-go/x/wakeup"
)

// TriggerBit is the wakeup bit the listener raises for every accepted gesture.
const TriggerBit = 0

// Animator drives the strips from three sources: the trigger word, the
// deadline and the frame clock. A trigger pending when the deadline fires
// extends the animation instead of blanking it.
type Animator struct {
	strips     []core.PixelStrip
	brightness uint8
	trigger    *wakeup.Word
	conn       *bus.Connection // optional telemetry
	now        func() time.Time

	sched Scheduler
	buf   []color.RGBA
}

func NewAnimator(strips []core.PixelStrip, brightness uint8, trigger *wakeup.Word, conn *bus.Connection) *Animator {
	if brightness == 0 {
		brightness = DefaultBrightness
	}
	n := 0
	for _, s := range strips {
		n = max(n, s.Len())
	}
	return &Animator{
		strips:     strips,
		brightness: brightness,
		trigger:    trigger,
		conn:       conn,
		now:        time.Now,
		buf:        make([]color.RGBA, n),
	}
}

// Run blanks the strips and animates on every trigger until ctx ends.
func (a *Animator) Run(ctx context.Context) error {
	a.fill(color.RGBA{})
	a.publish()

	frame := time.NewTimer(FrameInterval)
	deadline := time.NewTimer(AnimationDuration)
	defer frame.Stop()
	defer deadline.Stop()

	for {
		// Idle: block until a gesture arrives.
		if _, err := a.trigger.Wait(ctx); err != nil {
			return err
		}
		a.sched.Trigger(a.now())
		a.publish()
		timex.Reset(deadline, time.Until(a.sched.Deadline()))
		timex.Reset(frame, FrameInterval)

	running:
		for {
			select {
			case <-ctx.Done():
				a.fill(color.RGBA{})
				return ctx.Err()

			case <-a.trigger.Ready():
				if a.trigger.Take() != 0 {
					a.sched.Trigger(a.now())
					a.publish()
					timex.Reset(deadline, time.Until(a.sched.Deadline()))
				}

			case <-deadline.C:
				if a.expire() {
					break running
				}
				timex.Reset(deadline, time.Until(a.sched.Deadline()))

			case <-frame.C:
				now := a.now()
				if !now.Before(a.sched.Deadline()) {
					if a.expire() {
						break running
					}
					timex.Reset(deadline, time.Until(a.sched.Deadline()))
				} else if a.sched.Tick(now) == Frame {
					a.fill(FrameColor(a.sched.Hue(), a.brightness))
				}
				timex.Reset(frame, FrameInterval)
			}
		}
	}
}

// expire handles the deadline. A pending trigger wins and extends the
// animation; otherwise the strips are blanked and it reports true.
func (a *Animator) expire() bool {
	now := a.now()
	if a.trigger.Take() != 0 {
		a.sched.Trigger(now)
		a.publish()
		return false
	}
	if a.sched.Tick(now) != Blank {
		return false
	}
	a.fill(color.RGBA{})
	a.publish()
	return true
}

// fill writes c to every pixel of every strip. Write errors are logged only.
func (a *Animator) fill(c color.RGBA) {
	for i := range a.buf {
		a.buf[i] = c
	}
	for _, s := range a.strips {
		if err := s.WriteColors(a.buf[:s.Len()]); err != nil {
			println("[light] strip write failed:", err.Error())
		}
	}
}

func (a *Animator) publish() {
	if a.conn == nil {
		return
	}
	v := types.AnimationValue{State: types.AnimIdle}
	if a.sched.Running() {
		v = types.AnimationValue{State: types.AnimRunning, DeadlineMs: timex.Ms(a.sched.Deadline())}
	}
	a.conn.Publish(a.conn.NewMessage(bus.T("light", "animation"), v, true))
}
