package evaluator

import (
	"fmt"
	"math"
	"time"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/metrics"
	"github.com/automabit/silowatch/internal/types"
	"github.com/rs/zerolog"
)

// Evaluator compares two successive silo snapshots and decides which
// threshold crossings deserve a notification
type Evaluator struct {
	thresholds config.Thresholds
	cooldown   time.Duration
	logger     zerolog.Logger
}

// notificationText holds the title and advice shown for an alert kind
type notificationText struct {
	title  string
	advice string
}

var notificationTexts = map[types.Kind]notificationText{
	types.KindTemperatureCritical: {"Critical Temperature!", "Immediate action required"},
	types.KindTemperatureWarning:  {"High Temperature", "Monitor closely"},
	types.KindHumidityCritical:    {"Critical Humidity!", "Risk of spoilage"},
	types.KindHumidityWarning:     {"High Humidity", "Check ventilation"},
	types.KindCapacityCritical:    {"Critical Capacity!", "Empty urgently"},
	types.KindCapacityWarning:     {"High Capacity", "Plan unloading"},
	types.KindDisconnected:        {"Connection Lost", "Check equipment"},
}

// NewEvaluator creates a new evaluator from the configured thresholds and
// cooldown
func NewEvaluator(cfg *config.Config, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		thresholds: cfg.Thresholds,
		cooldown:   cfg.Alerts.Cooldown,
		logger:     logger.With().Str("component", "evaluator").Logger(),
	}
}

// Thresholds returns the bands this evaluator applies
func (e *Evaluator) Thresholds() config.Thresholds {
	return e.thresholds
}

// Cooldown returns the suppression window per (silo, kind)
func (e *Evaluator) Cooldown() time.Duration {
	return e.cooldown
}

// Evaluate diffs current against previous and returns the notifications to
// emit, in silo order and, within a silo, temperature, humidity, capacity,
// connectivity. The ledger is updated in place for every emitted
// notification. An empty previous snapshot produces nothing.
func (e *Evaluator) Evaluate(previous, current []types.Silo, ledger *Ledger, now time.Time) []types.Notification {
	start := time.Now()
	defer func() {
		metrics.EvaluationsTotal.Inc()
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	if len(previous) == 0 {
		return nil
	}
	if ledger == nil {
		ledger = NewLedger()
	}

	baseline := make(map[string]types.Silo, len(previous))
	for _, silo := range previous {
		if _, dup := baseline[silo.ID]; !dup {
			baseline[silo.ID] = silo
		}
	}

	var notifications []types.Notification
	for _, silo := range current {
		prev, ok := baseline[silo.ID]
		if !ok {
			e.logger.Debug().
				Str("silo_id", silo.ID).
				Msg("No baseline for silo, skipping")
			continue
		}

		for _, m := range types.Metrics {
			kind, ok := candidateKind(m, e.thresholds.For(m), prev.Value(m), silo.Value(m))
			if !ok {
				continue
			}
			if n, ok := e.gate(ledger, silo, kind, silo.Value(m), m.Unit(), now); ok {
				notifications = append(notifications, n)
			}
		}

		if silo.Disconnected() && !prev.Disconnected() {
			if n, ok := e.gate(ledger, silo, types.KindDisconnected, nil, "", now); ok {
				notifications = append(notifications, n)
			}
		}
	}

	return notifications
}

// gate applies the cooldown for (silo, kind) and builds the notification if
// it passes
func (e *Evaluator) gate(ledger *Ledger, silo types.Silo, kind types.Kind, value *float64, unit string, now time.Time) (types.Notification, bool) {
	if !ledger.Allow(silo.ID, kind, now, e.cooldown) {
		metrics.NotificationsSuppressed.WithLabelValues(string(kind)).Inc()
		e.logger.Debug().
			Str("silo_id", silo.ID).
			Str("kind", string(kind)).
			Msg("Notification suppressed by cooldown")
		return types.Notification{}, false
	}

	n := buildNotification(silo, kind, value, unit, now)
	metrics.NotificationsEmitted.WithLabelValues(string(kind)).Inc()
	e.logger.Info().
		Str("silo_id", silo.ID).
		Str("kind", string(kind)).
		Str("category", string(n.Category)).
		Msg("Notification emitted")
	return n, true
}

// candidateKind returns the alert kind a metric qualifies for. Both readings
// must be present and the change must be at least MinDelta; critical wins
// over warning.
func candidateKind(m types.Metric, t config.MetricThreshold, prev, cur *float64) (types.Kind, bool) {
	if prev == nil || cur == nil {
		return "", false
	}
	if math.Abs(*cur-*prev) < t.MinDelta {
		return "", false
	}
	sev, ok := band(*cur, t)
	if !ok {
		return "", false
	}
	return types.KindFor(m, sev), true
}

// band returns the severity band v falls into
func band(v float64, t config.MetricThreshold) (types.Severity, bool) {
	switch {
	case v >= t.Critical:
		return types.SeverityCritical, true
	case v >= t.Warning:
		return types.SeverityWarning, true
	}
	return "", false
}

func buildNotification(silo types.Silo, kind types.Kind, value *float64, unit string, now time.Time) types.Notification {
	text := notificationTexts[kind]

	var message string
	if value != nil {
		message = fmt.Sprintf("%s: %s%s - %s", silo.Name, types.FormatValue(*value), unit, text.advice)
	} else {
		message = fmt.Sprintf("%s is disconnected - %s", silo.Name, text.advice)
	}

	return types.Notification{
		SiloID:   silo.ID,
		SiloName: silo.Name,
		Kind:     kind,
		Category: kind.Category(),
		Title:    text.title,
		Message:  message,
		Value:    value,
		Unit:     unit,
		At:       now,
	}
}
