// Package motorlink drives a TB6612-style motor board, the aiming servo and
// the state LED through a microcontroller on a serial line.
//
// The board takes one text command per line:
//
//	M <side> <dir> <duty>   side 0 left, 1 right; dir 0 stop, 1 fwd, 2 back, 3 brake
//	S <0|1>                 standby line
//	P <duty>                servo duty in 1/10000 of the period
//	L <led> <0|1>           LED output
//
// and greets with "init" then "start" after reset.
package motorlink

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// LED ids on the board.
const (
	LEDState = 0
	LEDLink  = 1
)

type Link struct {
	mu     sync.Mutex
	dst    io.Writer
	w      *bufio.Writer
	closer io.Closer
	// last line accepted per output
	cache map[string]string
}

// Open connects to the board and waits for its start greeting.
func Open(name string, baud int) (*Link, error) {
	bus, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := waitStart(bufio.NewReader(bus)); err != nil {
		bus.Close()
		return nil, err
	}
	l := New(bus)
	l.closer = bus
	return l, nil
}

func New(w io.Writer) *Link {
	return &Link{dst: w, w: bufio.NewWriter(w), cache: map[string]string{}}
}

func waitStart(r *bufio.Reader) error {
	for _, want := range []string{"init", "start"} {
		ln, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", want, err)
		}
		if ln = strings.TrimSpace(ln); ln != want {
			return fmt.Errorf("expected %q but got %q", want, ln)
		}
	}
	return nil
}

func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Link) Apply(side domain.Side, cmd domain.MotorCommand) error {
	duty := cmd.Duty
	if duty > domain.MaxCommand {
		duty = domain.MaxCommand
	}
	return l.send(fmt.Sprintf("M%d", side), fmt.Sprintf("M %d %d %d\n", side, cmd.Direction, duty))
}

func (l *Link) SetStandby(enabled bool) error {
	return l.send("S", fmt.Sprintf("S %d\n", b2i(enabled)))
}

// Servo returns the servo output of the board.
func (l *Link) Servo() ports.ServoDriver { return servoOut{l} }

// LED returns one LED output of the board.
func (l *Link) LED(id int) ports.Indicator { return ledOut{l: l, id: id} }

// send writes line unless it is what the output already holds. A failed
// write drops the buffered bytes and forgets the cached value so the next
// command is sent again.
func (l *Link) send(key, line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.cache[key]; ok && old == line {
		return nil
	}
	_, err := l.w.WriteString(line)
	if err == nil {
		err = l.w.Flush()
	}
	if err != nil {
		delete(l.cache, key)
		l.w.Reset(l.dst)
		return err
	}
	l.cache[key] = line
	return nil
}

type servoOut struct{ l *Link }

func (s servoOut) SetDuty(fraction float64) error {
	if fraction < 0 || fraction > 1 || math.IsNaN(fraction) {
		return fmt.Errorf("servo duty %g out of range", fraction)
	}
	return s.l.send("P", fmt.Sprintf("P %d\n", int(math.Round(fraction*10000))))
}

type ledOut struct {
	l  *Link
	id int
}

func (o ledOut) Set(on bool) error {
	return o.l.send(fmt.Sprintf("L%d", o.id), fmt.Sprintf("L %d %d\n", o.id, b2i(on)))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.MotorDriver = (*Link)(nil)
