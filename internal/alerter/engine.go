package alerter

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/automabit/silowatch/internal/evaluator"
	"github.com/automabit/silowatch/internal/metrics"
	"github.com/automabit/silowatch/internal/types"
	"github.com/rs/zerolog"
)

// Sink receives user-facing notifications. Implementations handle display,
// deduplication and expiry on their own.
type Sink interface {
	Notify(category types.Category, title, message string)
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source used for cooldown bookkeeping
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLedger injects an existing cooldown ledger
func WithLedger(l *evaluator.Ledger) Option {
	return func(e *Engine) {
		e.ledger = l
	}
}

// Engine owns the previous snapshot and the cooldown ledger, feeds each new
// snapshot through the evaluator and routes the results to the sink
type Engine struct {
	evaluator *evaluator.Evaluator
	sink      Sink
	logger    zerolog.Logger
	ledger    *evaluator.Ledger
	now       func() time.Time
	previous  []types.Silo
	started   bool
	mu        sync.Mutex
}

// NewEngine creates a new alert engine
func NewEngine(eval *evaluator.Evaluator, sink Sink, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		evaluator: eval,
		sink:      sink,
		logger:    logger.With().Str("component", "alerter").Logger(),
		ledger:    evaluator.NewLedger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessSnapshot evaluates a full replacement snapshot against the previous
// one, dispatches the resulting notifications in order and retains the
// snapshot as the next baseline. Calls are serialized.
func (e *Engine) ProcessSnapshot(current []types.Silo) []types.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	notifications := e.evaluator.Evaluate(e.previous, current, e.ledger, now)

	for _, n := range notifications {
		e.sink.Notify(n.Category, n.Title, n.Message)
	}

	if !e.started && len(current) > 0 {
		e.started = true
		e.sink.Notify(types.CategorySuccess, "System Started",
			fmt.Sprintf("Monitoring %d silo(s) in real time", len(current)))
		e.logger.Info().
			Int("silo_count", len(current)).
			Msg("Monitoring started")
	}

	e.previous = slices.Clone(current)
	metrics.SilosMonitored.Set(float64(len(current)))

	e.logger.Debug().
		Int("silo_count", len(current)).
		Int("notifications", len(notifications)).
		Msg("Snapshot processed")

	return notifications
}

// SetEvaluator swaps the evaluator, e.g. after a config reload. The ledger
// and baseline are kept so cooldowns survive the reload.
func (e *Engine) SetEvaluator(eval *evaluator.Evaluator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evaluator = eval
	e.logger.Info().
		Dur("cooldown", eval.Cooldown()).
		Msg("Evaluator replaced")
}

// Silos returns the latest snapshot with derived statuses
func (e *Engine) Silos() []types.SiloStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return evaluator.Statuses(e.previous, e.evaluator.Thresholds())
}

// GetActiveAlerts returns the conditions currently present in the latest
// snapshot
func (e *Engine) GetActiveAlerts() []types.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return evaluator.ActiveAlerts(e.previous, e.evaluator.Thresholds())
}

// Ledger returns the cooldown ledger owned by this engine
func (e *Engine) Ledger() *evaluator.Ledger {
	return e.ledger
}
