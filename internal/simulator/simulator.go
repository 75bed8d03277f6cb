package simulator

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/types"
)

// Source produces successive full snapshots of every monitored silo
type Source interface {
	Next() []types.Silo
}

// Starting points used when a reading is missing
const (
	baseTemperature = 25
	baseHumidity    = 60
	baseCapacity    = 50
	baseWeight      = 30
)

// Simulator is a random-walk Source. Each step every silo either drops its
// connection (keeping its last values) or drifts a little around its previous
// readings.
type Simulator struct {
	rng                   *rand.Rand
	disconnectProbability float64
	silos                 []types.Silo
	started               bool
	mu                    sync.Mutex
}

// New creates a simulator seeded with the configured silos. A zero seed uses
// the current time.
func New(cfg config.SimulatorConfig) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := 0.0
	if cfg.DisconnectProbability != nil {
		p = *cfg.DisconnectProbability
	}

	silos := make([]types.Silo, 0, len(cfg.Silos))
	for _, s := range cfg.Silos {
		silos = append(silos, types.Silo{
			ID:          s.ID,
			Name:        s.Name,
			Product:     s.Product,
			Location:    s.Location,
			Temperature: types.Float(s.Temperature),
			Humidity:    types.Float(s.Humidity),
			Capacity:    types.Float(s.Capacity),
			Weight:      types.Float(s.Weight),
		})
	}

	return &Simulator{
		rng:                   rand.New(rand.NewSource(seed)),
		disconnectProbability: p,
		silos:                 silos,
	}
}

// Next returns the initial silos on the first call and a freshly stepped
// snapshot afterwards. The returned slice is never mutated later.
func (s *Simulator) Next() []types.Silo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.step()
	}
	s.started = true

	out := make([]types.Silo, len(s.silos))
	copy(out, s.silos)
	return out
}

// step replaces every silo with its next reading. New pointers are allocated
// so snapshots handed out earlier stay untouched.
func (s *Simulator) step() {
	next := make([]types.Silo, 0, len(s.silos))
	for _, silo := range s.silos {
		if s.rng.Float64() < s.disconnectProbability {
			silo.Connected = types.Bool(false)
			next = append(next, silo)
			continue
		}

		temp := clamp(valueOr(silo.Temperature, baseTemperature)+s.drift(2), 15, 40)
		hum := clamp(valueOr(silo.Humidity, baseHumidity)+s.drift(4), 30, 80)
		capacity := clamp(valueOr(silo.Capacity, baseCapacity)+s.drift(3), 10, 100)
		weight := clamp(valueOr(silo.Weight, baseWeight)+s.drift(2), 15, 50)

		silo.Temperature = types.Float(round1(temp))
		silo.Humidity = types.Float(math.Floor(hum))
		silo.Capacity = types.Float(round1(capacity))
		silo.Weight = types.Float(round1(weight))
		silo.Connected = types.Bool(true)
		next = append(next, silo)
	}
	s.silos = next
}

// drift returns a uniform change in [-span/2, span/2)
func (s *Simulator) drift(span float64) float64 {
	return (s.rng.Float64() - 0.5) * span
}

// Create adds a silo with fresh random readings and returns it. The id is
// one more than the highest numeric id in use.
func (s *Simulator) Create(name, product, location string) types.Silo {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, silo := range s.silos {
		if n, err := strconv.Atoi(silo.ID); err == nil && n > maxID {
			maxID = n
		}
	}

	silo := types.Silo{
		ID:          strconv.Itoa(maxID + 1),
		Name:        name,
		Product:     product,
		Location:    location,
		Capacity:    types.Float(float64(20 + s.rng.Intn(30))),
		Temperature: types.Float(float64(18 + s.rng.Intn(10))),
		Humidity:    types.Float(float64(45 + s.rng.Intn(20))),
		Weight:      types.Float(float64(25 + s.rng.Intn(20))),
	}
	s.silos = append(s.silos, silo)
	return silo
}

// Remove drops a silo from the feed. It reports whether the id was known.
func (s *Simulator) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, silo := range s.silos {
		if silo.ID == id {
			s.silos = append(s.silos[:i:i], s.silos[i+1:]...)
			return true
		}
	}
	return false
}

func valueOr(v *float64, fallback float64) float64 {
	// a zero reading restarts from the baseline as well
	if v == nil || *v == 0 {
		return fallback
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
