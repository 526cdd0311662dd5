// Package ps2 talks to a DualShock 2 pad over a tinygo SPI bus.
package ps2

import (
	"context"
	"fmt"
	"math/bits"

	"tinygo.org/x/drivers"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Mode ids reported in the second byte of every response.
const (
	ModeDigital  = 0x41
	ModeAnalog   = 0x73
	ModePressure = 0x79
	ModeConfig   = 0xF3
)

const (
	cmdStart = 0x01
	cmdPoll  = 0x42
	cmdConf  = 0x43
	cmdMode  = 0x44
	cmdMotor = 0x4D
	cmdPress = 0x4F

	ack = 0x5A

	// header, two button bytes, four sticks and twelve pressures
	pollFrameLen = 3 + 2 + 4 + 12
)

// Offsets into a pressure-mode poll response.
const (
	offButtons = 3
	offRX      = 5
	offRY      = 6
	offLX      = 7
	offLY      = 8
	offL2      = 3 + 2 + 4 + 10
	offR2      = 3 + 2 + 4 + 11
)

var configSequence = [][]byte{
	{cmdStart, cmdConf, 0x00, 0x01, 0x00},                          // enter config
	{cmdStart, cmdMode, 0x00, 0x01, 0x03, 0x00, 0x00, 0x00, 0x00},  // analog, locked
	{cmdStart, cmdMotor, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}, // map both motors
	{cmdStart, cmdPress, 0x00, 0xFF, 0xFF, 0x03, 0x00, 0x00, 0x00}, // report pressures
	{cmdStart, cmdConf, 0x00, 0x00, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A},  // leave config
}

// Select asserts (true) or releases the pad's attention line.
type Select func(active bool)

type Options struct {
	// MSBFirst is set when the bus shifts most significant bit first; the pad
	// speaks LSB first, so every byte is mirrored.
	MSBFirst bool
}

// DualShock is a ports.InputDevice for one pad.
type DualShock struct {
	bus    drivers.SPI
	sel    Select
	opts   Options
	ready  bool
	tx, rx []byte
}

func New(bus drivers.SPI, sel Select, opts Options) *DualShock {
	return &DualShock{
		bus:  bus,
		sel:  sel,
		opts: opts,
		tx:   make([]byte, pollFrameLen),
		rx:   make([]byte, pollFrameLen),
	}
}

// Configure puts the pad in locked analog mode with pressure reporting and
// both rumble motors mapped. Poll calls it on demand.
func (d *DualShock) Configure() error {
	for _, frame := range configSequence {
		if _, err := d.transact(frame); err != nil {
			return err
		}
	}
	d.ready = true
	return nil
}

func (d *DualShock) Poll(ctx context.Context, fb domain.Feedback) (domain.ControllerSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.ControllerSample{}, err
	}
	if !d.ready {
		if err := d.Configure(); err != nil {
			return domain.ControllerSample{}, err
		}
	}

	req := d.tx[:pollFrameLen]
	clear(req)
	req[0], req[1] = cmdStart, cmdPoll
	if fb.Small {
		req[3] = 0x01
	}
	req[4] = fb.Large

	resp, err := d.transact(req)
	if err != nil {
		return domain.ControllerSample{}, err
	}

	if resp[1] != ModePressure {
		// a re-plugged pad comes back digital: configure again next cycle
		d.ready = false
		return domain.ControllerSample{}, fmt.Errorf("mode %#02x: %w", resp[1], ports.ErrUnexpectedDevice)
	}

	return domain.ControllerSample{
		LeftX:      resp[offLX],
		LeftY:      resp[offLY],
		RightX:     resp[offRX],
		RightY:     resp[offRY],
		L2Pressure: resp[offL2],
		R2Pressure: resp[offR2],
		Buttons:    domain.ButtonMaskFromWire(resp[offButtons], resp[offButtons+1]),
	}, nil
}

// transact clocks one frame. The response aliases d.rx.
func (d *DualShock) transact(frame []byte) ([]byte, error) {
	w := d.tx[:len(frame)]
	copy(w, frame)
	r := d.rx[:len(frame)]
	if d.opts.MSBFirst {
		mirror(w)
	}

	if d.sel != nil {
		d.sel(true)
	}
	err := d.bus.Tx(w, r)
	if d.sel != nil {
		d.sel(false)
	}
	if err != nil {
		d.ready = false
		return nil, fmt.Errorf("spi: %v: %w", err, ports.ErrReadFailed)
	}

	if d.opts.MSBFirst {
		mirror(r)
	}
	if r[2] != ack {
		d.ready = false
		return nil, fmt.Errorf("no ack (mode %#02x): %w", r[1], ports.ErrReadFailed)
	}
	return r, nil
}

func mirror(b []byte) {
	for i, v := range b {
		b[i] = bits.Reverse8(v)
	}
}

var _ ports.InputDevice = (*DualShock)(nil)
