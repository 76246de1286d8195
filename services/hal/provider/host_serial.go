//go:build !rp2040

// services/hal/provider/host_serial.go
package provider

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tarm/serial"
)

// hostSerialPort adapts a tarm/serial port to SerialPort. Reads use a short
// device timeout so context cancellation is observed.
type hostSerialPort struct {
	p *serial.Port
}

func openHostSerial(name string, baud uint32) (*hostSerialPort, error) {
	if baud == 0 {
		baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        int(baud),
		ReadTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	return &hostSerialPort{p: p}, nil
}

func (h *hostSerialPort) Write(b []byte) (int, error) { return h.p.Write(b) }

func (h *hostSerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := h.p.Read(buf)
		if n > 0 {
			return n, nil
		}
		// A timed-out read surfaces as io.EOF on POSIX ports.
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
	}
}

func (h *hostSerialPort) Close() error { return h.p.Close() }
