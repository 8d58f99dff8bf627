package scheduler

import (
	"context"
	"time"

	"github.com/kaguya07/Auction-Trading/utils"
)

// DefaultInterval is the sweep cadence when none is configured.
const DefaultInterval = 60 * time.Second

// LifecycleAdvancer advances listing lifecycle state up to the given instant
type LifecycleAdvancer interface {
	Advance(ctx context.Context, now time.Time) error
}

// Sweeper periodically drives the listing lifecycle forward. A single
// goroutine drains the ticker, so sweep runs never overlap; a slow run simply
// absorbs the next tick.
type Sweeper struct {
	advancer LifecycleAdvancer
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper over the given advancer
func NewSweeper(advancer LifecycleAdvancer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		advancer: advancer,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine
func (s *Sweeper) Start() {
	go s.run()
}

// Stop cancels the loop and waits for an in-flight run to finish
func (s *Sweeper) Stop() {
	s.cancel()
	<-s.done
	utils.Info("Sweeper stopped", nil)
}

// run is the main sweep loop
func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one lifecycle pass; failures are logged and never stop the loop
func (s *Sweeper) sweep() {
	if err := s.advancer.Advance(s.ctx, time.Now().UTC()); err != nil {
		utils.Error("Sweep run failed", map[string]any{"error": err.Error()})
	}
}
