package types

import "testing"

func TestSequencePushCaps(t *testing.T) {
	var s ButtonSequence
	for i := 0; i < MaxSequenceLen; i++ {
		if !s.Push(Button(i % NumButtons)) {
			t.Fatalf("push %d refused", i)
		}
	}
	if !s.Full() || s.Len() != MaxSequenceLen {
		t.Fatalf("len = %d, full = %v", s.Len(), s.Full())
	}
	if s.Push(Button1) {
		t.Fatal("push past the cap accepted")
	}
	if got := SequenceOf(Button1, Button1, Button1, Button1, Button1, Button2); got.Len() != MaxSequenceLen {
		t.Fatalf("SequenceOf kept %d presses", got.Len())
	}
}

func TestSequenceIsAValue(t *testing.T) {
	a := SequenceOf(Button1)
	b := a
	b.Push(Button2)
	if a.Len() != 1 || b.Len() != 2 {
		t.Fatalf("copies share state: a=%s b=%s", a, b)
	}
	bs := b.Buttons()
	bs[0] = Button4
	if b.At(0) != Button1 {
		t.Fatal("Buttons() aliases the sequence")
	}
}

func TestSequenceUniform(t *testing.T) {
	tests := []struct {
		name string
		seq  ButtonSequence
		b    Button
		ok   bool
	}{
		{"empty", ButtonSequence{}, 0, false},
		{"single", SequenceOf(Button3), Button3, true},
		{"repeated", SequenceOf(Button2, Button2, Button2), Button2, true},
		{"mixed", SequenceOf(Button2, Button2, Button1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := tt.seq.Uniform()
			if b != tt.b || ok != tt.ok {
				t.Fatalf("Uniform() = %s, %v", b, ok)
			}
		})
	}
}

func TestSequenceString(t *testing.T) {
	if got := SequenceOf(Button1, Button4).String(); got != "[button1 button4]" {
		t.Fatalf("String() = %q", got)
	}
	if got := (ButtonSequence{}).String(); got != "[]" {
		t.Fatalf("empty String() = %q", got)
	}
}
