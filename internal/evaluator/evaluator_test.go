package evaluator

import (
	"testing"
	"time"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(config.Default(), zerolog.Nop())
}

func silo(id string, temp, hum, capacity float64, connected bool) types.Silo {
	return types.Silo{
		ID:          id,
		Name:        "Silo " + id,
		Temperature: types.Float(temp),
		Humidity:    types.Float(hum),
		Capacity:    types.Float(capacity),
		Connected:   types.Bool(connected),
	}
}

func kinds(ns []types.Notification) []types.Kind {
	out := make([]types.Kind, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Kind)
	}
	return out
}

func TestEvaluate_EmptyPreviousSnapshot(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	got := e.Evaluate(nil, []types.Silo{silo("1", 35, 75, 95, false)}, ledger, t0)

	assert.Empty(t, got)
	assert.Zero(t, ledger.Len())
}

func TestEvaluate_TemperatureCriticalScenario(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	prev := []types.Silo{silo("1", 26, 60, 50, true)}
	cur := []types.Silo{silo("1", 30.6, 60, 50, true)}

	got := e.Evaluate(prev, cur, ledger, t0)

	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, types.KindTemperatureCritical, n.Kind)
	assert.Equal(t, "1", n.SiloID)
	assert.Equal(t, types.CategoryCritical, n.Category)
	assert.Equal(t, "Critical Temperature!", n.Title)
	assert.Equal(t, "Silo 1: 30.6°C - Immediate action required", n.Message)
	assert.Equal(t, t0, n.At)

	last, ok := ledger.Last("1", types.KindTemperatureCritical)
	require.True(t, ok)
	assert.Equal(t, t0, last)
}

func TestEvaluate_FirstCrossingEmitsOnce(t *testing.T) {
	e := newTestEvaluator()
	got := e.Evaluate(
		[]types.Silo{silo("1", 26.0, 60, 50, true)},
		[]types.Silo{silo("1", 30.5, 60, 50, true)},
		NewLedger(), t0,
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureCritical}, kinds(got))
}

func TestEvaluate_CooldownWindow(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	got := e.Evaluate(
		[]types.Silo{silo("X", 26, 60, 50, true)},
		[]types.Silo{silo("X", 30.5, 60, 50, true)},
		ledger, t0,
	)
	require.Len(t, got, 1)

	// still critical, moved by >= 0.5, inside the window
	got = e.Evaluate(
		[]types.Silo{silo("X", 30.5, 60, 50, true)},
		[]types.Silo{silo("X", 31.5, 60, 50, true)},
		ledger, t0.Add(2*time.Minute),
	)
	assert.Empty(t, got)
	last, _ := ledger.Last("X", types.KindTemperatureCritical)
	assert.Equal(t, t0, last, "suppression must not touch the ledger")

	// window boundary is exclusive
	got = e.Evaluate(
		[]types.Silo{silo("X", 31.5, 60, 50, true)},
		[]types.Silo{silo("X", 32.5, 60, 50, true)},
		ledger, t0.Add(5*time.Minute),
	)
	assert.Empty(t, got)

	got = e.Evaluate(
		[]types.Silo{silo("X", 32.5, 60, 50, true)},
		[]types.Silo{silo("X", 33.5, 60, 50, true)},
		ledger, t0.Add(6*time.Minute),
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureCritical}, kinds(got))
	last, _ = ledger.Last("X", types.KindTemperatureCritical)
	assert.Equal(t, t0.Add(6*time.Minute), last)
}

func TestEvaluate_BelowThresholds(t *testing.T) {
	e := newTestEvaluator()
	got := e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 40, true)},
		[]types.Silo{silo("1", 20, 50, 42, true)},
		NewLedger(), t0,
	)
	assert.Empty(t, got)
}

func TestEvaluate_DeltaGate(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name string
		prev types.Silo
		cur  types.Silo
		want []types.Kind
	}{
		{
			name: "critical value without enough change",
			prev: silo("1", 31.0, 60, 50, true),
			cur:  silo("1", 31.25, 60, 50, true),
			want: []types.Kind{},
		},
		{
			name: "warning temperature",
			prev: silo("1", 26.5, 60, 50, true),
			cur:  silo("1", 27.5, 60, 50, true),
			want: []types.Kind{types.KindTemperatureWarning},
		},
		{
			name: "humidity needs a full point",
			prev: silo("1", 20, 70.5, 50, true),
			cur:  silo("1", 20, 71, 50, true),
			want: []types.Kind{},
		},
		{
			name: "humidity critical",
			prev: silo("1", 20, 69, 50, true),
			cur:  silo("1", 20, 70, 50, true),
			want: []types.Kind{types.KindHumidityCritical},
		},
		{
			name: "humidity warning",
			prev: silo("1", 20, 64, 50, true),
			cur:  silo("1", 20, 66, 50, true),
			want: []types.Kind{types.KindHumidityWarning},
		},
		{
			name: "capacity warning falling from critical",
			prev: silo("1", 20, 50, 91, true),
			cur:  silo("1", 20, 50, 89.5, true),
			want: []types.Kind{types.KindCapacityWarning},
		},
		{
			name: "capacity critical",
			prev: silo("1", 20, 50, 89.5, true),
			cur:  silo("1", 20, 50, 90, true),
			want: []types.Kind{types.KindCapacityCritical},
		},
		{
			name: "drop below warning band",
			prev: silo("1", 28, 50, 50, true),
			cur:  silo("1", 26, 50, 50, true),
			want: []types.Kind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate([]types.Silo{tt.prev}, []types.Silo{tt.cur}, NewLedger(), t0)
			assert.Equal(t, tt.want, kinds(got))
		})
	}
}

func TestEvaluate_OrderWithinAndAcrossSilos(t *testing.T) {
	e := newTestEvaluator()

	prev := []types.Silo{
		silo("a", 26, 64, 74, true),
		silo("b", 29, 69, 89, true),
	}
	cur := []types.Silo{
		silo("b", 31, 71, 91, false),
		silo("a", 28, 66, 76, true),
	}

	got := e.Evaluate(prev, cur, NewLedger(), t0)

	require.Len(t, got, 7)
	assert.Equal(t, []types.Kind{
		types.KindTemperatureCritical,
		types.KindHumidityCritical,
		types.KindCapacityCritical,
		types.KindDisconnected,
		types.KindTemperatureWarning,
		types.KindHumidityWarning,
		types.KindCapacityWarning,
	}, kinds(got))
	for i, n := range got {
		want := "b"
		if i >= 4 {
			want = "a"
		}
		assert.Equal(t, want, n.SiloID)
	}
}

func TestEvaluate_Disconnection(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	got := e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 50, true)},
		[]types.Silo{silo("1", 20, 50, 50, false)},
		ledger, t0,
	)
	require.Len(t, got, 1)
	assert.Equal(t, types.KindDisconnected, got[0].Kind)
	assert.Equal(t, types.CategoryError, got[0].Category)
	assert.Equal(t, "Connection Lost", got[0].Title)
	assert.Equal(t, "Silo 1 is disconnected - Check equipment", got[0].Message)
	assert.Nil(t, got[0].Value)

	// remains disconnected: no new falling edge
	got = e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 50, false)},
		[]types.Silo{silo("1", 20, 50, 50, false)},
		ledger, t0.Add(30*time.Second),
	)
	assert.Empty(t, got)

	// reconnection is never notified
	got = e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 50, false)},
		[]types.Silo{silo("1", 20, 50, 50, true)},
		ledger, t0.Add(time.Minute),
	)
	assert.Empty(t, got)

	// flapping back down inside the window is suppressed
	got = e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 50, true)},
		[]types.Silo{silo("1", 20, 50, 50, false)},
		ledger, t0.Add(90*time.Second),
	)
	assert.Empty(t, got)
}

func TestEvaluate_UnsetConnectedFlagCountsAsConnected(t *testing.T) {
	e := newTestEvaluator()

	prev := silo("1", 20, 50, 50, true)
	prev.Connected = nil

	got := e.Evaluate([]types.Silo{prev}, []types.Silo{silo("1", 20, 50, 50, false)}, NewLedger(), t0)
	assert.Equal(t, []types.Kind{types.KindDisconnected}, kinds(got))

	cur := silo("1", 20, 50, 50, true)
	cur.Connected = nil
	got = e.Evaluate([]types.Silo{silo("1", 20, 50, 50, false)}, []types.Silo{cur}, NewLedger(), t0)
	assert.Empty(t, got)
}

func TestEvaluate_IdenticalCallIsSuppressed(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	prev := []types.Silo{silo("1", 26, 64, 74, true)}
	cur := []types.Silo{silo("1", 30.5, 66, 76, false)}

	first := e.Evaluate(prev, cur, ledger, t0)
	require.Len(t, first, 4)

	second := e.Evaluate(prev, cur, ledger, t0)
	assert.Empty(t, second)
}

func TestEvaluate_SkipsSilosWithoutBaseline(t *testing.T) {
	e := newTestEvaluator()

	got := e.Evaluate(
		[]types.Silo{silo("1", 20, 50, 50, true)},
		[]types.Silo{silo("1", 20, 50, 50, true), silo("2", 35, 75, 95, false)},
		NewLedger(), t0,
	)
	assert.Empty(t, got)
}

func TestEvaluate_MalformedMetricSkipsOnlyThatMetric(t *testing.T) {
	e := newTestEvaluator()

	prev := silo("1", 26, 60, 80, true)
	prev.Humidity = nil
	cur := silo("1", 31, 72, 80, true)
	cur.Capacity = nil

	got := e.Evaluate([]types.Silo{prev}, []types.Silo{cur}, NewLedger(), t0)
	assert.Equal(t, []types.Kind{types.KindTemperatureCritical}, kinds(got))
}

func TestEvaluate_CooldownIsPerKind(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	got := e.Evaluate(
		[]types.Silo{silo("1", 26, 60, 50, true)},
		[]types.Silo{silo("1", 27.5, 60, 50, true)},
		ledger, t0,
	)
	require.Equal(t, []types.Kind{types.KindTemperatureWarning}, kinds(got))

	got = e.Evaluate(
		[]types.Silo{silo("1", 27.5, 60, 50, true)},
		[]types.Silo{silo("1", 30.5, 60, 50, true)},
		ledger, t0.Add(time.Minute),
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureCritical}, kinds(got))

	// another silo has its own ledger entries
	got = e.Evaluate(
		[]types.Silo{silo("2", 26, 60, 50, true)},
		[]types.Silo{silo("2", 27.5, 60, 50, true)},
		ledger, t0.Add(time.Minute),
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureWarning}, kinds(got))
	assert.Equal(t, 3, ledger.Len())
}

func TestEvaluate_StaticWarningDoesNotRearm(t *testing.T) {
	e := newTestEvaluator()
	ledger := NewLedger()

	got := e.Evaluate(
		[]types.Silo{silo("1", 26, 60, 50, true)},
		[]types.Silo{silo("1", 28, 60, 50, true)},
		ledger, t0,
	)
	require.Len(t, got, 1)

	got = e.Evaluate(
		[]types.Silo{silo("1", 28, 60, 50, true)},
		[]types.Silo{silo("1", 28, 60, 50, true)},
		ledger, t0.Add(10*time.Minute),
	)
	assert.Empty(t, got)
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds.Temperature = config.MetricThreshold{Critical: 40, Warning: 35, MinDelta: 2}
	cfg.Alerts.Cooldown = time.Minute
	e := NewEvaluator(cfg, zerolog.Nop())
	ledger := NewLedger()

	got := e.Evaluate(
		[]types.Silo{silo("1", 26, 60, 50, true)},
		[]types.Silo{silo("1", 31, 60, 50, true)},
		ledger, t0,
	)
	assert.Empty(t, got)

	got = e.Evaluate(
		[]types.Silo{silo("1", 33, 60, 50, true)},
		[]types.Silo{silo("1", 36, 60, 50, true)},
		ledger, t0,
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureWarning}, kinds(got))

	got = e.Evaluate(
		[]types.Silo{silo("1", 33, 60, 50, true)},
		[]types.Silo{silo("1", 36, 60, 50, true)},
		ledger, t0.Add(61*time.Second),
	)
	assert.Equal(t, []types.Kind{types.KindTemperatureWarning}, kinds(got))
}

func TestEvaluate_NilLedger(t *testing.T) {
	e := newTestEvaluator()
	got := e.Evaluate(
		[]types.Silo{silo("1", 26, 60, 50, true)},
		[]types.Silo{silo("1", 30.5, 60, 50, true)},
		nil, t0,
	)
	assert.Len(t, got, 1)
}

func TestNotificationMessages(t *testing.T) {
	s := types.Silo{ID: "7", Name: "Silo 7 - Corn"}

	tests := []struct {
		kind    types.Kind
		value   float64
		unit    string
		title   string
		message string
	}{
		{types.KindTemperatureWarning, 28, "°C", "High Temperature", "Silo 7 - Corn: 28°C - Monitor closely"},
		{types.KindHumidityCritical, 71, "%", "Critical Humidity!", "Silo 7 - Corn: 71% - Risk of spoilage"},
		{types.KindHumidityWarning, 66, "%", "High Humidity", "Silo 7 - Corn: 66% - Check ventilation"},
		{types.KindCapacityCritical, 92.5, "%", "Critical Capacity!", "Silo 7 - Corn: 92.5% - Empty urgently"},
		{types.KindCapacityWarning, 80.1, "%", "High Capacity", "Silo 7 - Corn: 80.1% - Plan unloading"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			n := buildNotification(s, tt.kind, types.Float(tt.value), tt.unit, t0)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.message, n.Message)
			assert.Equal(t, tt.kind.Category(), n.Category)
		})
	}
}
