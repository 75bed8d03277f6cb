package simulator

import (
	"context"
	"time"

	"github.com/automabit/silowatch/internal/types"
	"github.com/rs/zerolog"
)

// Handler consumes one full snapshot
type Handler func(snapshot []types.Silo)

// Runner pulls a snapshot from a Source on a fixed interval and hands it to
// a Handler
type Runner struct {
	source   Source
	interval time.Duration
	handler  Handler
	logger   zerolog.Logger
}

// NewRunner creates a new periodic runner
func NewRunner(source Source, interval time.Duration, handler Handler, logger zerolog.Logger) *Runner {
	return &Runner{
		source:   source,
		interval: interval,
		handler:  handler,
		logger:   logger.With().Str("component", "runner").Logger(),
	}
}

// Run delivers the initial snapshot immediately and then one per interval
// until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting sensor update loop")

	r.deliver()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Sensor update loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.deliver()
		}
	}
}

func (r *Runner) deliver() {
	snapshot := r.source.Next()
	r.logger.Debug().
		Int("silo_count", len(snapshot)).
		Msg("Snapshot delivered")
	r.handler(snapshot)
}
