package errcode

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK          Code = "ok"
	Busy        Code = "busy"
	Unsupported Code = "unsupported"
	Timeout     Code = "timeout"

	// Transport: the unit of work (frame or datagram) is dropped.
	Malformed        Code = "malformed"
	ChecksumMismatch Code = "checksum_mismatch"
	FrameTooLarge    Code = "frame_too_large"
	NoAck            Code = "no_ack"

	// Protocol: well-formed but not for us.
	VersionMismatch Code = "version_mismatch"
	UnknownTag      Code = "unknown_tag"

	// Peripheral configuration: fatal at startup.
	UnknownBus    Code = "unknown_bus"
	BusInUse      Code = "bus_in_use"
	UnknownPin    Code = "unknown_pin"
	PinInUse      Code = "pin_in_use"
	InvalidParams Code = "invalid_params"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap annotates a code with the operation that produced it.
func Wrap(c Code, op, msg string) error { return &E{C: c, Op: op, Msg: msg} }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// IsTransport reports a damaged or truncated unit of work.
func IsTransport(err error) bool {
	switch Of(err) {
	case Malformed, ChecksumMismatch, FrameTooLarge, NoAck, Timeout:
		return true
	}
	return false
}

// IsProtocol reports a well-formed message this build does not accept.
func IsProtocol(err error) bool {
	switch Of(err) {
	case VersionMismatch, UnknownTag:
		return true
	}
	return false
}

// IsPeripheral reports a configuration failure; callers treat these as fatal.
func IsPeripheral(err error) bool {
	switch Of(err) {
	case UnknownBus, BusInUse, UnknownPin, PinInUse, InvalidParams, Unsupported:
		return true
	}
	return false
}
