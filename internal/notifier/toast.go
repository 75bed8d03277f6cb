package notifier

import (
	"sync"
	"time"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/metrics"
	"github.com/automabit/silowatch/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Toast is a notification currently on display
type Toast struct {
	ID        string         `json:"id"`
	Category  types.Category `json:"category"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToastOption configures a ToastQueue
type ToastOption func(*ToastQueue)

// WithToastClock overrides the time source used for deduplication
func WithToastClock(now func() time.Time) ToastOption {
	return func(q *ToastQueue) {
		q.now = now
	}
}

// ToastQueue holds the toasts on display. Identical title+message pairs
// arriving within the dedup window of a displayed toast are dropped, and
// every toast expires after the configured TTL unless dismissed first.
type ToastQueue struct {
	logger      zerolog.Logger
	dedupWindow time.Duration
	ttl         time.Duration
	now         func() time.Time
	expiry      *ExpiryManager
	toasts      []Toast
	mu          sync.Mutex
}

// NewToastQueue creates a new toast queue
func NewToastQueue(cfg config.NotifierConfig, logger zerolog.Logger, opts ...ToastOption) *ToastQueue {
	q := &ToastQueue{
		logger:      logger.With().Str("component", "toasts").Logger(),
		dedupWindow: cfg.DedupWindow,
		ttl:         cfg.ToastTTL,
		now:         time.Now,
	}
	q.expiry = NewExpiryManager(logger, q.remove)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Notify displays a toast unless an identical one was shown within the dedup
// window
func (q *ToastQueue) Notify(category types.Category, title, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for _, t := range q.toasts {
		if t.Title == title && t.Message == message && now.Sub(t.CreatedAt) < q.dedupWindow {
			metrics.ToastsDeduplicated.Inc()
			q.logger.Debug().
				Str("title", title).
				Msg("Duplicate toast dropped")
			return
		}
	}

	toast := Toast{
		ID:        uuid.NewString(),
		Category:  category,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}
	q.toasts = append(q.toasts, toast)
	q.expiry.Schedule(toast.ID, q.ttl)

	metrics.ToastsShown.WithLabelValues(string(category)).Inc()
	metrics.ToastsActive.Set(float64(len(q.toasts)))

	q.logger.Info().
		Str("toast_id", toast.ID).
		Str("category", string(category)).
		Str("title", title).
		Str("message", message).
		Msg("Toast shown")
}

// Dismiss removes a toast before it expires. It reports whether the toast was
// still displayed.
func (q *ToastQueue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expiry.Cancel(id)
	return q.removeLocked(id)
}

// Clear removes every displayed toast
func (q *ToastQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expiry.Stop()
	q.toasts = nil
	metrics.ToastsActive.Set(0)
}

// Active returns the displayed toasts, oldest first
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Stop cancels pending expiry timers
func (q *ToastQueue) Stop() {
	q.expiry.Stop()
}

func (q *ToastQueue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(id)
}

func (q *ToastQueue) removeLocked(id string) bool {
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			metrics.ToastsActive.Set(float64(len(q.toasts)))
			return true
		}
	}
	return false
}
