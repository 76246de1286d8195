package protocol

import (
	"encoding/binary"
	"hash/crc32"

	"spark-go/errcode"
)

// Checksum is the fixed 32-bit integrity code (CRC-32/IEEE) over body bytes only.
func Checksum(body []byte) uint32 { return crc32.ChecksumIEEE(body) }

// AppendFrame appends Length | Body | CRC32 to dst.
func AppendFrame(dst, body []byte) ([]byte, error) {
	if len(body) == 0 {
		return dst, errcode.Wrap(errcode.Malformed, "frame", "empty body")
	}
	if len(body) > MaxStreamBody {
		return dst, errcode.Wrap(errcode.FrameTooLarge, "frame", "")
	}
	dst = append(dst, byte(len(body)))
	dst = append(dst, body...)
	return binary.LittleEndian.AppendUint32(dst, Checksum(body)), nil
}

// EncodeFrame builds a pairing bus frame; it must fit MaxFrameSize.
func EncodeFrame(body []byte) ([]byte, error) {
	if len(body) > MaxBodySize {
		return nil, errcode.Wrap(errcode.FrameTooLarge, "frame", "exceeds pairing bus frame")
	}
	return AppendFrame(make([]byte, 0, MaxFrameSize), body)
}

// ParseFrame reads one frame from the start of buf. It returns n == 0 and a
// nil error when buf holds only part of a frame. The returned body aliases buf.
func ParseFrame(buf []byte) (body []byte, n int, err error) {
	if len(buf) < LengthFieldSize {
		return nil, 0, nil
	}
	bodyLen := int(buf[0])
	if bodyLen == 0 {
		return nil, LengthFieldSize, errcode.Wrap(errcode.Malformed, "frame", "zero length")
	}
	total := LengthFieldSize + bodyLen + ChecksumSize
	if len(buf) < total {
		return nil, 0, nil
	}
	body = buf[LengthFieldSize : LengthFieldSize+bodyLen]
	got := binary.LittleEndian.Uint32(buf[LengthFieldSize+bodyLen : total])
	if got != Checksum(body) {
		return nil, total, errcode.Wrap(errcode.ChecksumMismatch, "frame", "")
	}
	return body, total, nil
}

// DecodeFrame verifies a complete frame; trailing idle bytes are ignored.
func DecodeFrame(buf []byte) ([]byte, error) {
	body, n, err := ParseFrame(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errcode.Wrap(errcode.Malformed, "frame", "truncated")
	}
	return body, nil
}
