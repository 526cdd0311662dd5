package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/BattleTrack"
)

// Drives the robot from a pad state pushed by the caller and fans motor
// writes out to a channel, the way a network relay or a dashboard would.
func main() {
	flow, err := battletrack.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pad := battletrack.NewPushInput(250 * time.Millisecond)
	motors, events, closeEvents := battletrack.NewChannelMotor(32)
	defer closeEvents()

	go dashboard(events)
	go relay(ctx, pad)

	rt, err := flow.
		Controller(battletrack.ControllerInput(pad)).
		Actuators(battletrack.ActuatorMotors(motors))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	if err := rt.Run(ctx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

// relay stands in for a pad read elsewhere: it arms the robot, then creeps
// forward.
func relay(ctx context.Context, pad *battletrack.PushInput) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s := battletrack.NeutralSample()
		switch {
		case i == 10:
			start, _ := battletrack.ParseButton("start")
			s.Buttons = start
		case i > 20:
			s.LeftY = 60
		}
		pad.Push(s)
	}
}

func dashboard(events <-chan battletrack.MotorEvent) {
	for ev := range events {
		if ev.Standby {
			fmt.Printf("[dashboard] standby enabled=%v\n", ev.Enabled)
			continue
		}
		fmt.Printf("[dashboard] %s track %s\n", ev.Side, ev.Command)
	}
}
