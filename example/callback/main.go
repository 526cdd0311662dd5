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

func main() {
	flow, err := battletrack.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	motor := func(side battletrack.Side, cmd battletrack.MotorCommand) error {
		fmt.Printf("%s motor=%s cmd=%s\n", time.Now().Format(time.RFC3339Nano), side, cmd)
		return nil
	}
	servo := func(fraction float64) error {
		fmt.Printf("%s servo duty=%.4f\n", time.Now().Format(time.RFC3339Nano), fraction)
		return nil
	}
	led := func(on bool) error {
		fmt.Printf("%s state led=%v\n", time.Now().Format(time.RFC3339Nano), on)
		return nil
	}

	if err := flow.Run(ctx, battletrack.ActuatorCallbacks(motor, servo, led)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
