// services/hal/provider/i2clink.go
package provider

import (
	"context"
	"sync/atomic"

	"spark-go/errcode"
	"spark-go/services/hal/core"
	"spark-go/x/shmring"

	"tinygo.org/x/drivers"
)

// idleByte is what a controller clocks in when the target has nothing staged.
const idleByte = 0xFF

// I2CLink joins one controller and one addressed target through two
// single-producer rings, one per direction.
type I2CLink struct {
	addr     uint16
	toTarget *shmring.Ring
	toCtrl   *shmring.Ring

	corrupt atomic.Int32 // controller writes still to damage
}

func NewI2CLink(addr uint16) *I2CLink {
	return &I2CLink{
		addr:     addr,
		toTarget: shmring.New(256),
		toCtrl:   shmring.New(256),
	}
}

// CorruptWrites flips one bit in each of the next n controller writes.
func (l *I2CLink) CorruptWrites(n int) { l.corrupt.Store(int32(n)) }

func (l *I2CLink) Controller() drivers.I2C { return &linkController{l: l} }
func (l *I2CLink) Target() core.I2CTarget  { return &linkTarget{l: l} }

type linkController struct{ l *I2CLink }

var _ drivers.I2C = (*linkController)(nil)

// Tx writes w then reads len(r) bytes. Short staged replies are padded with
// idle bytes, as on a real bus.
func (c *linkController) Tx(addr uint16, w, r []byte) error {
	if addr != c.l.addr {
		return errcode.NoAck
	}
	if len(w) > 0 {
		buf := make([]byte, len(w))
		copy(buf, w)
		if c.l.corrupt.Add(-1) >= 0 {
			buf[len(buf)/2] ^= 0x10
		} else {
			c.l.corrupt.Store(0)
		}
		if n := c.l.toTarget.TryWriteFrom(buf); n < len(buf) {
			return errcode.Busy
		}
	}
	if len(r) > 0 {
		n := c.l.toCtrl.TryReadInto(r)
		for i := n; i < len(r); i++ {
			r[i] = idleByte
		}
	}
	return nil
}

type linkTarget struct{ l *I2CLink }

func (t *linkTarget) Read(ctx context.Context, buf []byte) (int, error) {
	return t.l.toTarget.ReadContext(ctx, buf)
}

func (t *linkTarget) Write(buf []byte) error {
	if n := t.l.toCtrl.TryWriteFrom(buf); n < len(buf) {
		return errcode.Busy
	}
	return nil
}
