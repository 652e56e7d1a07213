package notify

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// templates are the canned notifications the simulator draws from. They
// stand in for a real event source while the dashboard runs against demo data.
var templates = []Draft{
	{
		Category: CategoryPaymentDue,
		Title:    "Payment reminder",
		Message:  "Invoice INV-2024-031 is due in 3 days",
		Priority: PriorityMedium,
		Link:     "/invoices",
	},
	{
		Category: CategoryBudgetWarning,
		Title:    "Budget threshold reached",
		Message:  "Marketing budget has reached 80% of its monthly limit",
		Priority: PriorityMedium,
		Link:     "/budgets",
	},
	{
		Category: CategoryPaymentReceived,
		Title:    "Payment received",
		Message:  "A client payment of $1,250.00 was recorded",
		Priority: PriorityLow,
		Link:     "/accounting",
	},
}

// Simulator periodically injects canned notifications into every active
// store. Each tick draws a uniform number and injects only when it falls
// under the configured probability. The randomness source is injectable so
// tests can drive ticks deterministically.
type Simulator struct {
	manager     *Manager
	interval    time.Duration
	probability float64
	randFloat   func() float64
	randIndex   func(n int) int
}

// NewSimulator creates a simulator over the given manager.
func NewSimulator(manager *Manager, interval time.Duration, probability float64) *Simulator {
	return &Simulator{
		manager:     manager,
		interval:    interval,
		probability: probability,
		randFloat:   rand.Float64,
		randIndex:   rand.Intn,
	}
}

// SetRand replaces the randomness source. Intended for tests.
func (sim *Simulator) SetRand(randFloat func() float64, randIndex func(n int) int) {
	sim.randFloat = randFloat
	sim.randIndex = randIndex
}

// Run ticks until ctx is cancelled.
func (sim *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(sim.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sim.Tick()
		}
	}
}

// Tick performs a single draw for every active store.
func (sim *Simulator) Tick() {
	sim.manager.Each(func(userID string, s *Store) {
		if sim.randFloat() >= sim.probability {
			return
		}
		draft := templates[sim.randIndex(len(templates))]
		n, _ := s.Add(draft)
		log.Printf("notify: injected %s notification %s for user %s", n.Category, n.ID, userID)
	})
}
