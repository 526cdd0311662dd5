package battletrack

import (
	"context"
	"errors"
	"math/bits"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/BattleTrack/internal/adapters/sim"
	"github.com/ghalamif/BattleTrack/internal/app/sched"
	"github.com/ghalamif/BattleTrack/internal/domain"
)

func TestCallbackMotorForwardsWrites(t *testing.T) {
	var got []MotorCommand
	var standby []bool
	m := NewCallbackMotor("", func(side Side, cmd MotorCommand) error {
		got = append(got, cmd)
		return nil
	}, func(enabled bool) error {
		standby = append(standby, enabled)
		return nil
	})

	cmd := MotorCommand{Direction: 1, Duty: 40}
	if err := m.Apply(SideLeft, cmd); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := m.SetStandby(true); err != nil {
		t.Fatalf("SetStandby returned error: %v", err)
	}
	if len(got) != 1 || got[0] != cmd {
		t.Fatalf("unexpected writes %v", got)
	}
	if len(standby) != 1 || !standby[0] {
		t.Fatalf("unexpected standby writes %v", standby)
	}
}

func TestCallbackAdaptersRejectNilHandlers(t *testing.T) {
	if err := NewCallbackMotor("m", nil, nil).Apply(SideRight, MotorCommand{}); err == nil {
		t.Fatalf("expected error for nil motor handler")
	}
	if err := NewCallbackMotor("m", nil, nil).SetStandby(true); err != nil {
		t.Fatalf("nil standby handler should accept writes, got %v", err)
	}
	if err := NewCallbackServo(nil).SetDuty(0.07); err == nil {
		t.Fatalf("expected error for nil servo handler")
	}
	if err := NewCallbackIndicator(nil).Set(true); err == nil {
		t.Fatalf("expected error for nil indicator handler")
	}

	boom := errors.New("boom")
	if err := NewCallbackIndicator(func(bool) error { return boom }).Set(true); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestChannelMotorDropsWhenFullAndCloses(t *testing.T) {
	m, events, closeFn := NewChannelMotor(1)

	if err := m.SetStandby(true); err != nil {
		t.Fatalf("SetStandby returned error: %v", err)
	}
	// buffer is full, the write is dropped instead of blocking
	if err := m.Apply(SideLeft, MotorCommand{Duty: 10}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	ev := <-events
	if !ev.Standby || !ev.Enabled {
		t.Fatalf("expected standby event, got %+v", ev)
	}

	closeFn()
	closeFn()
	if _, ok := <-events; ok {
		t.Fatalf("expected closed channel")
	}
	if err := m.Apply(SideLeft, MotorCommand{}); !errors.Is(err, ErrChannelDriverClosed) {
		t.Fatalf("expected ErrChannelDriverClosed, got %v", err)
	}
}

// padBus is a DualShock 2 in pressure mode on an SPI bus. It answers every
// configuration frame and reports sample on each poll.
type padBus struct {
	mu       sync.Mutex
	msbFirst bool
	sample   ControllerSample
	polls    int
}

func (b *padBus) set(s ControllerSample) {
	b.mu.Lock()
	b.sample = s
	b.mu.Unlock()
}

func (b *padBus) pollCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polls
}

func (b *padBus) Tx(w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	req := append([]byte(nil), w...)
	if b.msbFirst {
		reverse(req)
	}
	resp := make([]byte, len(r))
	resp[0], resp[1], resp[2] = 0xFF, 0x79, 0x5A
	if req[1] == 0x42 {
		b.polls++
		resp[3], resp[4] = b.sample.Buttons.Wire()
		resp[5], resp[6] = b.sample.RightX, b.sample.RightY
		resp[7], resp[8] = b.sample.LeftX, b.sample.LeftY
		resp[19], resp[20] = b.sample.L2Pressure, b.sample.R2Pressure
	}
	if b.msbFirst {
		reverse(resp)
	}
	copy(r, resp)
	return nil
}

func (b *padBus) Transfer(byte) (byte, error) { return 0xFF, nil }

func reverse(p []byte) {
	for i, v := range p {
		p[i] = bits.Reverse8(v)
	}
}

func TestDualShockInputDecodesPad(t *testing.T) {
	want := NeutralSample()
	want.LeftY = 12
	want.L2Pressure = 180
	want.Buttons = domain.ButtonSelect

	for _, msb := range []bool{false, true} {
		bus := &padBus{msbFirst: msb, sample: want}
		var selects int
		in := NewDualShockInput(bus, func(active bool) {
			if active {
				selects++
			}
		}, msb)

		got, err := in.Poll(context.Background(), Feedback{})
		if err != nil {
			t.Fatalf("msb=%v: Poll returned error: %v", msb, err)
		}
		if got != want {
			t.Fatalf("msb=%v: expected %+v, got %+v", msb, want, got)
		}
		if selects < 2 {
			t.Fatalf("msb=%v: expected the attention line per frame, got %d", msb, selects)
		}
	}
}

func TestRuntimeDrivesFromDualShock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "off"

	bus := &padBus{sample: NeutralSample()}
	motors := &sim.Motors{}
	clock := sched.NewManualClock()

	rt, err := NewRuntime(cfg,
		WithInputDevice(NewDualShockInput(bus, nil, false)),
		WithMotorDriver(motors),
		WithServoDriver(&sim.Servo{}),
		WithIndicator(&sim.LED{}),
		WithLinkLED(&sim.LED{}),
		WithTicker(clock.Ticker),
		WithRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("NewRuntime returned error: %v", err)
	}
	if err := rt.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer rt.Shutdown(context.Background())

	poll := func(s ControllerSample) {
		t.Helper()
		before := bus.pollCount()
		bus.set(s)
		if !clock.Fire(cfg.PollInterval(), time.Second) {
			t.Fatalf("poll ticker never fired")
		}
		waitFor(t, "pad read", func() bool { return bus.pollCount() > before })
	}
	start := NeutralSample()
	start.Buttons = domain.ButtonStart
	forward := NeutralSample()
	forward.LeftY = 0

	poll(start)
	poll(forward)
	poll(forward)
	waitFor(t, "tracks forward", func() bool {
		left, right, standby := motors.State()
		return rt.State() == StateArmed && standby &&
			left.Direction == domain.DirForward && right.Direction == domain.DirForward
	})
}
