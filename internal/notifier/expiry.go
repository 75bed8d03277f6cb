package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ExpireFunc is called when a toast's display time runs out.
type ExpireFunc func(id string)

// ExpiryManager runs one cancellable timer per displayed toast.
type ExpiryManager struct {
	log      zerolog.Logger
	onExpire ExpireFunc
	mu       sync.Mutex
	timers   map[string]context.CancelFunc // toast id -> cancel func
}

// NewExpiryManager creates a new expiry manager.
func NewExpiryManager(log zerolog.Logger, onExpire ExpireFunc) *ExpiryManager {
	return &ExpiryManager{
		log:      log.With().Str("component", "toast-expiry").Logger(),
		onExpire: onExpire,
		timers:   make(map[string]context.CancelFunc),
	}
}

// Schedule starts the expiry timer for a toast. A pending timer for the same
// id is replaced.
func (m *ExpiryManager) Schedule(id string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.timers[id]; ok {
		cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.timers[id] = cancel

	go func() {
		timer := time.NewTimer(ttl)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		m.mu.Lock()
		// lost the race against Cancel or a reschedule
		if ctx.Err() != nil {
			m.mu.Unlock()
			return
		}
		delete(m.timers, id)
		m.mu.Unlock()

		m.log.Debug().Str("toast_id", id).Msg("toast expired")
		if m.onExpire != nil {
			m.onExpire(id)
		}
	}()
}

// Cancel stops the pending timer for a toast, e.g. on manual dismissal.
func (m *ExpiryManager) Cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.timers[id]; ok {
		cancel()
		delete(m.timers, id)
	}
}

// Pending returns the number of running timers.
func (m *ExpiryManager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop cancels all pending timers.
func (m *ExpiryManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cancel := range m.timers {
		cancel()
		delete(m.timers, id)
	}
}
