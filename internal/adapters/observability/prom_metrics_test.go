package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ghalamif/BattleTrack/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg, NewLogger("off", "text", nil))

	obs.IncCounter(ports.MetricPolls, 5)
	if got := testutil.ToFloat64(obs.counters[ports.MetricPolls]); got != 5 {
		t.Fatalf("expected polls counter 5, got %f", got)
	}

	obs.IncCounter(ports.MetricStatusDropped, 2)
	if got := testutil.ToFloat64(obs.counters[ports.MetricStatusDropped]); got != 2 {
		t.Fatalf("expected status drop counter 2, got %f", got)
	}

	obs.SetGauge(ports.MetricServoAngle, 90)
	if got := testutil.ToFloat64(obs.gauges[ports.MetricServoAngle]); got != 90 {
		t.Fatalf("expected servo gauge 90, got %f", got)
	}

	obs.ObserveLatency(ports.MetricDecisionLatency, 0.0001)
	hCollector := obs.histos[ports.MetricDecisionLatency].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	// unknown names are ignored
	obs.IncCounter("not_a_metric", 1)
	obs.SetGauge("not_a_metric", 1)
}

func TestPromObsSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewPromObs(reg, NewLogger("off", "text", nil))
	second := NewPromObs(reg, NewLogger("off", "text", nil))

	first.IncCounter(ports.MetricTransitions, 1)
	second.IncCounter(ports.MetricTransitions, 1)

	if got := testutil.ToFloat64(second.counters[ports.MetricTransitions]); got != 2 {
		t.Fatalf("expected both runtimes to share the counter, got %f", got)
	}
	if first.SessionID() == second.SessionID() {
		t.Fatalf("expected distinct session ids")
	}
}

func TestPromObsLogsWithSession(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPromObs(prometheus.NewRegistry(), NewLogger("info", "json", &buf))

	obs.LogError("servo_apply_failed", errors.New("pwm"), ports.Field{Key: "angle", Value: 90})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["session"] != obs.SessionID() {
		t.Fatalf("expected session %s, got %v", obs.SessionID(), entry["session"])
	}
	if entry["msg"] != "servo_apply_failed" || entry["error"] != "pwm" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["angle"] != float64(90) {
		t.Fatalf("expected angle field, got %v", entry["angle"])
	}
}
