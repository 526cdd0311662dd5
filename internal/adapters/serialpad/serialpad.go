// Package serialpad reads the pad through a USB-serial bridge board that
// polls the DualShock on our behalf.
//
// Every poll is one exchange. The host sends a feedback frame
//
//	0xA5 'F' small large xor
//
// and the bridge answers with a sample frame
//
//	0xA5 kind lx ly rx ry l2 r2 btnLo btnHi xor
//
// where kind is 'S' for a DualShock 2 sample, 'U' when another pad class is
// plugged in and 'E' when the bridge itself failed to read the pad. Button
// bytes are active low as on the pad wire; xor covers everything after the
// sync byte.
package serialpad

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

const (
	syncByte = 0xA5

	kindFeedback   = 'F'
	kindSample     = 'S'
	kindUnexpected = 'U'
	kindError      = 'E'

	feedbackLen = 5
	sampleLen   = 11
)

var errTimeout = errors.New("serialpad: read timeout")

type Pad struct {
	rw     io.ReadWriter
	closer io.Closer
	r      *bufio.Reader
	out    [feedbackLen]byte
	in     [sampleLen]byte
}

// Open opens the bridge's serial port. timeout bounds every read.
func Open(name string, baud int, timeout time.Duration) (*Pad, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	p := New(port)
	p.closer = port
	return p, nil
}

// New runs the protocol over any byte stream. A Read returning (0, nil) is a
// timeout.
func New(rw io.ReadWriter) *Pad {
	return &Pad{rw: rw, r: bufio.NewReaderSize(timeoutReader{rw}, 64)}
}

func (p *Pad) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func (p *Pad) Poll(ctx context.Context, fb domain.Feedback) (domain.ControllerSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.ControllerSample{}, err
	}

	p.out[0], p.out[1] = syncByte, kindFeedback
	p.out[2] = 0
	if fb.Small {
		p.out[2] = 1
	}
	p.out[3] = fb.Large
	p.out[4] = checksum(p.out[1:4])
	if _, err := p.rw.Write(p.out[:]); err != nil {
		return domain.ControllerSample{}, fmt.Errorf("write feedback: %v: %w", err, ports.ErrReadFailed)
	}

	frame, err := p.readFrame()
	if err != nil {
		return domain.ControllerSample{}, err
	}

	switch frame[1] {
	case kindSample:
	case kindUnexpected:
		return domain.ControllerSample{}, fmt.Errorf("bridge: %w", ports.ErrUnexpectedDevice)
	case kindError:
		return domain.ControllerSample{}, fmt.Errorf("bridge: pad not answering: %w", ports.ErrReadFailed)
	default:
		return domain.ControllerSample{}, fmt.Errorf("bridge: unknown frame kind %q: %w", frame[1], ports.ErrReadFailed)
	}

	return domain.ControllerSample{
		LeftX:      frame[2],
		LeftY:      frame[3],
		RightX:     frame[4],
		RightY:     frame[5],
		L2Pressure: frame[6],
		R2Pressure: frame[7],
		Buttons:    domain.ButtonMaskFromWire(frame[8], frame[9]),
	}, nil
}

// readFrame skips to the next sync byte and reads one sample frame.
func (p *Pad) readFrame() ([]byte, error) {
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return nil, readErr(err)
		}
		if b == syncByte {
			break
		}
	}

	p.in[0] = syncByte
	if _, err := io.ReadFull(p.r, p.in[1:]); err != nil {
		return nil, readErr(err)
	}
	if want := checksum(p.in[1 : sampleLen-1]); p.in[sampleLen-1] != want {
		p.r.Reset(timeoutReader{p.rw})
		return nil, fmt.Errorf("bad checksum %#02x, want %#02x: %w", p.in[sampleLen-1], want, ports.ErrReadFailed)
	}
	return p.in[:], nil
}

// EncodeSample builds the frame a bridge sends for s. Simulators and tests use
// it to stand in for the bridge.
func EncodeSample(s domain.ControllerSample) []byte {
	lo, hi := s.Buttons.Wire()
	f := []byte{syncByte, kindSample, s.LeftX, s.LeftY, s.RightX, s.RightY, s.L2Pressure, s.R2Pressure, lo, hi, 0}
	f[sampleLen-1] = checksum(f[1 : sampleLen-1])
	return f
}

func checksum(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}
	return x
}

func readErr(err error) error {
	return fmt.Errorf("read frame: %v: %w", err, ports.ErrReadFailed)
}

type timeoutReader struct{ r io.Reader }

func (t timeoutReader) Read(b []byte) (int, error) {
	n, err := t.r.Read(b)
	if n == 0 && err == nil {
		return 0, errTimeout
	}
	return n, err
}

var _ ports.InputDevice = (*Pad)(nil)
