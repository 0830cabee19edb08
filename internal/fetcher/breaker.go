package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the breaker refuses an attempt. The
// guarded operation is not invoked.
var ErrBreakerOpen = errors.New("breaker open")

type BreakerState string

const (
	StateClosed   BreakerState = "CLOSED"
	StateOpen     BreakerState = "OPEN"
	StateHalfOpen BreakerState = "HALF_OPEN"
)

type BreakerConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before permitting one
	// half-open trial.
	Cooldown time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Cooldown: 60 * time.Second}
}

// Breaker guards one class of risky outbound operation. It never swallows
// errors; it only decides whether an attempt is made at all.
type Breaker struct {
	mu          sync.Mutex
	cfg         BreakerConfig
	state       BreakerState
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 60 * time.Second
	}
	return &Breaker{cfg: cfg, state: StateClosed, now: time.Now}
}

// Do executes op unless the breaker is open. When open and the cooldown has
// elapsed, it permits exactly one half-open trial; a failure during the
// trial re-opens immediately with a fresh cooldown clock.
func (b *Breaker) Do(ctx context.Context, op func() error) error {
	if ctx == nil {
		return fmt.Errorf("Do: nil context")
	}
	if b == nil {
		return fmt.Errorf("Do: nil Breaker")
	}
	if op == nil {
		return fmt.Errorf("Do: nil operation")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.state == StateOpen {
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed < b.cfg.Cooldown {
			remaining := b.cfg.Cooldown - elapsed
			b.mu.Unlock()
			return fmt.Errorf("%w: retry in %s", ErrBreakerOpen, remaining.Round(time.Second))
		}
		b.state = StateHalfOpen
	}
	b.mu.Unlock()

	err := op()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state = StateClosed
		b.failures = 0
		return nil
	}

	b.failures++
	b.lastFailure = b.now()
	if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.state = StateOpen
	}
	return err
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the breaker and clears its failure history.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.lastFailure = time.Time{}
}
