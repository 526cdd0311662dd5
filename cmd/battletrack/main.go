package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli"

	"github.com/ghalamif/BattleTrack"
	"github.com/ghalamif/BattleTrack/internal/adapters/sim"
	"github.com/ghalamif/BattleTrack/internal/app/sched"
)

func main() {
	app := cli.NewApp()
	app.Name = "battletrack"
	app.Usage = "control core of a dual-track combat robot"
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "start the runtime using the provided config",
			Flags: []cli.Flag{configFlag()},
			Action: func(c *cli.Context) error {
				return runCommand(c.String("config"))
			},
		},
		{
			Name:  "validate",
			Usage: "load and validate a config file without starting the runtime",
			Flags: []cli.Flag{configFlag()},
			Action: func(c *cli.Context) error {
				return validateCommand(c.String("config"))
			},
		},
		{
			Name:  "simulate",
			Usage: "play a scenario against recording actuators and print the metrics",
			Flags: []cli.Flag{
				configFlag(),
				cli.StringFlag{
					Name:  "scenario, s",
					Usage: "scenario YAML file",
				},
				cli.Float64Flag{
					Name:  "speed",
					Value: 1,
					Usage: "clock speed-up factor",
				},
			},
			Action: func(c *cli.Context) error {
				return simulateCommand(c.String("config"), c.String("scenario"), c.Float64("speed"))
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("battletrack: %v", err)
	}
}

func configFlag() cli.Flag {
	return cli.StringFlag{
		Name:  "config, c",
		Usage: "path to configuration file (defaults plus BATTLETRACK_* overrides when empty)",
	}
}

func runCommand(cfgPath string) error {
	flow, err := battletrack.Conf(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(cfgPath string) error {
	cfg, err := battletrack.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good: %d Hz, input=%s, actuator=%s\n",
		displayPath(cfgPath), cfg.Loop.PollHz, cfg.Hardware.Input, cfg.Hardware.Actuator)
	return nil
}

func simulateCommand(cfgPath, scenarioPath string, speed float64) error {
	cfg, err := battletrack.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scenarioPath == "" {
		scenarioPath = cfg.Hardware.Scenario
	}
	if scenarioPath == "" {
		return fmt.Errorf("a scenario is required (--scenario or hardware.scenario)")
	}
	if speed <= 0 {
		return fmt.Errorf("speed must be > 0, got %v", speed)
	}

	sc, err := sim.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	if sc.Loop {
		return fmt.Errorf("scenario %s loops forever and cannot be simulated to completion", sc.Name)
	}

	input := sim.NewInput(sc)
	motors := &sim.Motors{}
	servo := &sim.Servo{}
	led := &sim.LED{}
	reg := prometheus.NewRegistry()

	rt, err := battletrack.NewRuntime(cfg,
		battletrack.WithInputDevice(input),
		battletrack.WithMotorDriver(motors),
		battletrack.WithServoDriver(servo),
		battletrack.WithIndicator(led),
		battletrack.WithLinkLED(&sim.LED{}),
		battletrack.WithRegisterer(reg),
		battletrack.WithTicker(func(d time.Duration) battletrack.Ticker {
			return sched.RealTicker(time.Duration(float64(d) / speed))
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Start(); err != nil {
		return err
	}
	select {
	case <-input.Done():
	case <-ctx.Done():
	}
	// one more period so the last decision reaches the actuators
	time.Sleep(time.Duration(float64(cfg.PollInterval()) / speed))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	final := rt.State()
	left, right, standby := motors.State()
	if err := rt.Shutdown(shutdownCtx); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d polls, final state %s\n", sc.Name, input.Polls(), final)
	fmt.Printf("tracks left=%s right=%s standby=%v, servo writes=%d, state LED on=%v\n",
		left, right, standby, len(servo.Duties()), led.On())
	fmt.Println()
	if err := printTransitions(rt.Journal()); err != nil {
		return err
	}
	fmt.Println()
	return printMetrics(reg)
}

func printTransitions(j battletrack.Journal) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	err := j.Iterate(0, func(id battletrack.JournalEntryID, e battletrack.Event) error {
		fmt.Fprintf(w, "%d\t%s\t%s -> %s\t%s\n", id, e.At.Format("15:04:05.000"), e.From, e.To, e.Reason)
		return nil
	})
	if err != nil {
		return err
	}
	if dropped := j.Stats().Dropped; dropped > 0 {
		fmt.Fprintf(w, "...\t%d older transitions dropped\t\t\n", dropped)
	}
	return w.Flush()
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s\t%s\n", mf.GetName(), metricValue(mf.GetType(), m))
		}
	}
	return w.Flush()
}

func metricValue(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		if h.GetSampleCount() == 0 {
			return "count=0"
		}
		return fmt.Sprintf("count=%d mean=%s", h.GetSampleCount(),
			time.Duration(h.GetSampleSum()/float64(h.GetSampleCount())*float64(time.Second)))
	default:
		return "-"
	}
}

func displayPath(p string) string {
	if p == "" {
		return "(defaults)"
	}
	return p
}
