// Package protocol defines the bytes exchanged between the remote and the light:
// broadcast wire messages and checksum-framed pairing messages.
package protocol

// Version is compiled into both devices; receivers drop anything else.
const Version uint8 = 0

const (
	// MessageSize is the fixed datagram size handed to the radio.
	MessageSize = 32

	// Pairing bus frame: Length(1) | Body(1..27) | CRC32(4, little-endian).
	LengthFieldSize = 1
	ChecksumSize    = 4
	MaxFrameSize    = 32
	MaxBodySize     = MaxFrameSize - LengthFieldSize - ChecksumSize

	// Stream frames (radio bridge) share the layout without the pairing cap.
	MaxStreamBody = 255
)
