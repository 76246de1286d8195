package protocol

import (
	"encoding/binary"

	"spark-go/errcode"
	"spark-go/types"
)

// CommandKind tags a pairing command.
type CommandKind uint64

const KindHandshake CommandKind = 0

// HandshakeCommand is sent by the bus controller (remote):
// Version(1) | Kind(uvarint) | Peer(6).
type HandshakeCommand struct {
	Version uint8
	Kind    CommandKind
	Peer    types.MAC // sender's wireless address
}

// HandshakeResponse is returned by the bus target (light):
// Version(1) | Addr(6).
type HandshakeResponse struct {
	Version uint8
	Addr    types.MAC // responder's wireless address
}

func NewHandshake(own types.MAC) HandshakeCommand {
	return HandshakeCommand{Version: Version, Kind: KindHandshake, Peer: own}
}

func NewHandshakeResponse(own types.MAC) HandshakeResponse {
	return HandshakeResponse{Version: Version, Addr: own}
}

// EncodeCommand returns a complete checksum frame.
func EncodeCommand(c HandshakeCommand) ([]byte, error) {
	body := make([]byte, 0, 1+binary.MaxVarintLen64+len(c.Peer))
	body = append(body, c.Version)
	body = binary.AppendUvarint(body, uint64(c.Kind))
	body = append(body, c.Peer[:]...)
	return EncodeFrame(body)
}

// DecodeCommand verifies the frame checksum before looking at the body.
// A well-formed command from another version is returned with
// errcode.VersionMismatch so the caller can log it.
func DecodeCommand(frame []byte) (HandshakeCommand, error) {
	body, err := DecodeFrame(frame)
	if err != nil {
		return HandshakeCommand{}, err
	}
	var c HandshakeCommand
	c.Version = body[0]
	r := reader{b: body[1:]}
	c.Kind = CommandKind(r.uvarint())
	if r.err == nil && c.Kind != KindHandshake {
		return c, errcode.Wrap(errcode.UnknownTag, "handshake", "command kind")
	}
	copy(c.Peer[:], r.bytes(len(c.Peer)))
	if r.err != nil {
		return HandshakeCommand{}, r.err
	}
	if c.Version != Version {
		return c, errcode.Wrap(errcode.VersionMismatch, "handshake", "")
	}
	return c, nil
}

func EncodeResponse(r HandshakeResponse) ([]byte, error) {
	body := make([]byte, 0, 1+len(r.Addr))
	body = append(body, r.Version)
	body = append(body, r.Addr[:]...)
	return EncodeFrame(body)
}

func DecodeResponse(frame []byte) (HandshakeResponse, error) {
	body, err := DecodeFrame(frame)
	if err != nil {
		return HandshakeResponse{}, err
	}
	var resp HandshakeResponse
	resp.Version = body[0]
	r := reader{b: body[1:]}
	copy(resp.Addr[:], r.bytes(len(resp.Addr)))
	if r.err != nil {
		return HandshakeResponse{}, r.err
	}
	if resp.Version != Version {
		return resp, errcode.Wrap(errcode.VersionMismatch, "handshake", "")
	}
	return resp, nil
}
