package types

// ---- Telemetry payloads published on the device bus ----

// PressValue is published on remote/button/<n>/pressed.
type PressValue struct {
	Button Button
	TSms   int64
}

// GestureValue is published on remote/gesture when a sequence is flushed,
// and on light/gesture when one is accepted.
type GestureValue struct {
	Sequence ButtonSequence
	From     MAC
	TSms     int64
}

// AnimationState is retained on light/animation.
type AnimationState string

const (
	AnimIdle    AnimationState = "idle"
	AnimRunning AnimationState = "running"
)

type AnimationValue struct {
	State      AnimationState
	DeadlineMs int64 // 0 when idle
}

// PairingValue is retained on <role>/pairing once the exchange completes.
type PairingValue struct {
	Own  MAC
	Peer MAC
}

// RadioStats counts receive-side outcomes; retained on light/radio.
type RadioStats struct {
	Accepted     uint32
	Filtered     uint32 // wrong destination or unknown source
	Malformed    uint32
	BadVersion   uint32
	UnknownTag   uint32
	SendFailures uint32
}
