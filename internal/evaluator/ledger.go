package evaluator

import (
	"sync"
	"time"

	"github.com/automabit/silowatch/internal/types"
)

type ledgerKey struct {
	siloID string
	kind   types.Kind
}

// Ledger records when each (silo, kind) pair was last notified. Entries are
// never removed; the map is bounded by silos × kinds. The zero value is ready
// to use.
type Ledger struct {
	mu   sync.Mutex
	last map[ledgerKey]time.Time
}

// NewLedger creates an empty cooldown ledger
func NewLedger() *Ledger {
	return &Ledger{last: make(map[ledgerKey]time.Time)}
}

// Allow reports whether a notification for (siloID, kind) may be emitted at
// now. If so, now is recorded as the last emission. Check and record happen
// under one lock so concurrent callers cannot both pass the gate.
func (l *Ledger) Allow(siloID string, kind types.Kind, now time.Time, cooldown time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil {
		l.last = make(map[ledgerKey]time.Time)
	}

	key := ledgerKey{siloID: siloID, kind: kind}
	if last, ok := l.last[key]; ok && now.Sub(last) <= cooldown {
		return false
	}
	l.last[key] = now
	return true
}

// Last returns the time of the last emission for (siloID, kind).
func (l *Ledger) Last(siloID string, kind types.Kind) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.last[ledgerKey{siloID: siloID, kind: kind}]
	return t, ok
}

// Len returns the number of recorded pairs
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
