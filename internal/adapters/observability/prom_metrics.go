package observability

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ghalamif/BattleTrack/internal/ports"
)

type PromObs struct {
	log     *logrus.Entry
	session string

	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewLogger builds the process logger. Level "off" discards everything;
// format is "text" or "json".
func NewLogger(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stdout
	}

	if level == "off" || level == "none" {
		logger.SetOutput(io.Discard)
	} else {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		logger.SetLevel(lvl)
		logger.SetOutput(out)
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}
	return logger
}

// NewPromObs registers the bot's metrics on reg (the default registerer when
// nil) and logs through logger, tagging every entry with a fresh session id.
func NewPromObs(reg prometheus.Registerer, logger *logrus.Logger) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = NewLogger("info", "text", nil)
	}

	counter := func(name, help string) prometheus.Counter {
		return register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help}))
	}
	gauge := func(name, help string) prometheus.Gauge {
		return register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}))
	}

	latency := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricDecisionLatency,
		Help:    "Time the decision engine spends on one controller sample.",
		Buckets: prometheus.ExponentialBuckets(0.000005, 2, 12),
	}))

	session := uuid.NewString()
	return &PromObs{
		log:     logger.WithField("session", session),
		session: session,
		counters: map[string]prometheus.Counter{
			ports.MetricPolls:             counter(ports.MetricPolls, "Successful controller polls."),
			ports.MetricInputReadFailures: counter(ports.MetricInputReadFailures, "Controller polls that failed on the transport."),
			ports.MetricUnexpectedDevice:  counter(ports.MetricUnexpectedDevice, "Controller polls answered by a pad of the wrong class."),
			ports.MetricCommandsSent:      counter(ports.MetricCommandsSent, "Commands sent from the decision engine to actuation tasks."),
			ports.MetricStatusDropped:     counter(ports.MetricStatusDropped, "Status reports dropped on a full status channel."),
			ports.MetricActuatorFaults:    counter(ports.MetricActuatorFaults, "Actuator apply failures."),
			ports.MetricTransitions:       counter(ports.MetricTransitions, "Operating mode transitions."),
			ports.MetricJournalErrors:     counter(ports.MetricJournalErrors, "Transition events that could not be journaled."),
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricState:          gauge(ports.MetricState, "Current operating mode (0 idle, 1 armed, 2 combat, 3 emergency)."),
			ports.MetricServoAngle:     gauge(ports.MetricServoAngle, "Last applied servo angle in degrees."),
			ports.MetricMotorActive:    gauge(ports.MetricMotorActive, "1 while either track motor is driven."),
			ports.MetricCommandBacklog: gauge(ports.MetricCommandBacklog, "Commands queued for the actuation unit."),
		},
		histos: map[string]prometheus.Observer{
			ports.MetricDecisionLatency: latency,
		},
	}
}

// register adds c to reg, reusing the collector already registered under the
// same name so several runtimes can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (p *PromObs) SessionID() string { return p.session }

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.entry(fields).Info(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.entry(fields).WithError(err).Error(msg)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.entry(fields).WithError(err).WithField("critical", true).Error(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) entry(fields []ports.Field) *logrus.Entry {
	if len(fields) == 0 {
		return p.log
	}
	f := make(logrus.Fields, len(fields))
	for _, field := range fields {
		f[field.Key] = field.Value
	}
	return p.log.WithFields(f)
}

// Nop discards logs and metrics.
type Nop struct{}

func (Nop) LogInfo(string, ...ports.Field)            {}
func (Nop) LogError(string, error, ...ports.Field)    {}
func (Nop) LogCritical(string, error, ...ports.Field) {}
func (Nop) IncCounter(string, float64)                {}
func (Nop) ObserveLatency(string, float64)            {}
func (Nop) SetGauge(string, float64)                  {}

var (
	_ ports.Observability = (*PromObs)(nil)
	_ ports.Observability = Nop{}
)
