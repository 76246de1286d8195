// services/hal/provider/serialpair.go
package provider

import (
	"context"

	"spark-go/x/shmring"
)

// ringPort is one end of an in-memory full-duplex serial line.
type ringPort struct {
	rx, tx *shmring.Ring
}

// NewSerialPair returns two connected SerialPorts; bytes written on one are
// read from the other. size must be a power of two.
func NewSerialPair(size int) (SerialPort, SerialPort) {
	ab, ba := shmring.New(size), shmring.New(size)
	return &ringPort{rx: ba, tx: ab}, &ringPort{rx: ab, tx: ba}
}

func (p *ringPort) Write(b []byte) (int, error) {
	return p.tx.WriteContext(context.Background(), b)
}

func (p *ringPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	return p.rx.ReadContext(ctx, buf)
}
