package types

import "time"

// Button is a logical button identity, bound to one pin at configuration time.
type Button uint8

const (
	Button1 Button = iota
	Button2
	Button3
	Button4

	NumButtons = 4
)

func (b Button) Valid() bool { return b < NumButtons }

// Number is the 1-based label printed on the remote.
func (b Button) Number() int { return int(b) + 1 }

func (b Button) String() string {
	switch b {
	case Button1:
		return "button1"
	case Button2:
		return "button2"
	case Button3:
		return "button3"
	case Button4:
		return "button4"
	default:
		return "button?"
	}
}

// ButtonPressEvent is emitted once per accepted transition into the active level.
type ButtonPressEvent struct {
	Button Button
	At     time.Time
}

// MaxSequenceLen caps a gesture; reaching it flushes immediately.
const MaxSequenceLen = 5

// ButtonSequence is an ordered, bounded run of presses. It is a value type:
// copies are independent snapshots.
type ButtonSequence struct {
	buttons [MaxSequenceLen]Button
	n       uint8
}

// SequenceOf builds a sequence, truncating past MaxSequenceLen.
func SequenceOf(bs ...Button) ButtonSequence {
	var s ButtonSequence
	for _, b := range bs {
		if !s.Push(b) {
			break
		}
	}
	return s
}

// Push appends b; false when the sequence is already full.
func (s *ButtonSequence) Push(b Button) bool {
	if int(s.n) >= MaxSequenceLen {
		return false
	}
	s.buttons[s.n] = b
	s.n++
	return true
}

func (s ButtonSequence) Len() int        { return int(s.n) }
func (s ButtonSequence) Full() bool      { return int(s.n) >= MaxSequenceLen }
func (s ButtonSequence) Empty() bool     { return s.n == 0 }
func (s ButtonSequence) At(i int) Button { return s.buttons[i] }

// Buttons returns a copy of the pressed buttons in order.
func (s ButtonSequence) Buttons() []Button {
	out := make([]Button, s.n)
	copy(out, s.buttons[:s.n])
	return out
}

// Uniform reports whether every press is the same button.
func (s ButtonSequence) Uniform() (Button, bool) {
	if s.n == 0 {
		return 0, false
	}
	first := s.buttons[0]
	for i := 1; i < int(s.n); i++ {
		if s.buttons[i] != first {
			return 0, false
		}
	}
	return first, true
}

func (s ButtonSequence) String() string {
	out := "["
	for i := 0; i < int(s.n); i++ {
		if i > 0 {
			out += " "
		}
		out += s.buttons[i].String()
	}
	return out + "]"
}
