// services/hal/provider/streamradio.go
package provider

import (
	"context"
	"sync"
	"sync/atomic"

	"spark-go/errcode"
	"spark-go/protocol"
	"spark-go/services/hal/core"
	"spark-go/types"
)

// SerialPort is the byte-stream surface shared by uartx and host serial ports.
type SerialPort interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

const (
	addrLen      = 6
	linkHdrLen   = 2 * addrLen
	maxStreamAcc = 4 * (protocol.MaxStreamBody + protocol.LengthFieldSize + protocol.ChecksumSize)
)

var _ core.Radio = (*StreamRadio)(nil)

// StreamRadio carries datagrams over a serial link to a radio co-processor
// (or a second host). Each datagram is one checksum frame whose body is
// Dst(6) | Src(6) | Data.
type StreamRadio struct {
	port SerialPort
	addr types.MAC

	wmu   sync.Mutex
	peers map[types.MAC]bool

	// receive side; owned by the single Receive caller
	acc     []byte
	scratch [64]byte

	dropped atomic.Uint32
}

func NewStreamRadio(port SerialPort, addr types.MAC) *StreamRadio {
	return &StreamRadio{port: port, addr: addr, peers: map[types.MAC]bool{}}
}

func (r *StreamRadio) Addr() types.MAC { return r.addr }

// Dropped counts frames discarded for damage or a foreign destination.
func (r *StreamRadio) Dropped() uint32 { return r.dropped.Load() }

func (r *StreamRadio) AddPeer(peer types.MAC) error {
	r.wmu.Lock()
	r.peers[peer] = true
	r.wmu.Unlock()
	return nil
}

func (r *StreamRadio) Send(dst types.MAC, data []byte) error {
	if len(data) > protocol.MaxStreamBody-linkHdrLen {
		return errcode.FrameTooLarge
	}
	r.wmu.Lock()
	defer r.wmu.Unlock()
	if !dst.IsBroadcast() && !r.peers[dst] {
		return errcode.Wrap(errcode.InvalidParams, "send", "peer not added")
	}
	body := make([]byte, 0, linkHdrLen+len(data))
	body = append(body, dst[:]...)
	body = append(body, r.addr[:]...)
	body = append(body, data...)
	frame, err := protocol.AppendFrame(nil, body)
	if err != nil {
		return err
	}
	for len(frame) > 0 {
		n, err := r.port.Write(frame)
		if err != nil {
			return err
		}
		frame = frame[n:]
	}
	return nil
}

// Receive returns the next intact frame addressed to us or to broadcast.
// Damaged input is skipped a byte at a time until a frame verifies.
func (r *StreamRadio) Receive(ctx context.Context) (core.Datagram, error) {
	for {
		for len(r.acc) > 0 {
			body, n, err := protocol.ParseFrame(r.acc)
			if n == 0 {
				break
			}
			if err != nil {
				r.dropped.Add(1)
				r.acc = r.acc[1:]
				continue
			}
			r.acc = r.acc[n:]
			if len(body) < linkHdrLen {
				r.dropped.Add(1)
				continue
			}
			var dg core.Datagram
			copy(dg.Dst[:], body[:addrLen])
			copy(dg.Src[:], body[addrLen:linkHdrLen])
			if !dg.Dst.IsBroadcast() && dg.Dst != r.addr {
				r.dropped.Add(1)
				continue
			}
			dg.Data = append([]byte(nil), body[linkHdrLen:]...)
			return dg, nil
		}

		n, err := r.port.RecvSomeContext(ctx, r.scratch[:])
		if err != nil {
			return core.Datagram{}, err
		}
		if len(r.acc)+n > maxStreamAcc {
			r.dropped.Add(1)
			r.acc = r.acc[:0]
		}
		r.acc = append(r.acc, r.scratch[:n]...)
	}
}
