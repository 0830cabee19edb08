package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// QuotaFunc reports the remote source's self-declared remaining quota and
// the time at which it resets. Implementations may fail; the Governor
// treats a failed probe as "unknown" and proceeds on the local ceiling
// alone.
type QuotaFunc func(ctx context.Context) (remaining int, reset time.Time, err error)

type GovernorConfig struct {
	// MaxPerMinute is the local sliding-window ceiling on outbound calls.
	MaxPerMinute int
	// SafetyThreshold suspends the caller when the remote quota drops below
	// it.
	SafetyThreshold int
	// QuotaCacheTTL bounds how often the remote quota is probed, so the
	// probe itself does not burn quota.
	QuotaCacheTTL time.Duration
	// ResetBuffer is added to the remote reset time before resuming.
	ResetBuffer time.Duration
}

func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		MaxPerMinute:    25,
		SafetyThreshold: 100,
		QuotaCacheTTL:   10 * time.Second,
		ResetBuffer:     1 * time.Second,
	}
}

// Governor bounds the outbound call rate against both a local per-minute
// ceiling and the remote source's remaining quota. Admit blocks until it is
// safe to issue exactly one call.
type Governor struct {
	mu    sync.Mutex
	cfg   GovernorConfig
	quota QuotaFunc
	calls []time.Time

	cachedRemaining int
	cachedReset     time.Time
	cachedAt        time.Time
	haveCache       bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	// Logf, when set, receives human-readable suspension notices.
	Logf func(format string, args ...any)
}

func NewGovernor(cfg GovernorConfig, quota QuotaFunc) *Governor {
	if cfg.MaxPerMinute <= 0 {
		cfg.MaxPerMinute = 25
	}
	if cfg.SafetyThreshold <= 0 {
		cfg.SafetyThreshold = 100
	}
	if cfg.QuotaCacheTTL <= 0 {
		cfg.QuotaCacheTTL = 10 * time.Second
	}
	if cfg.ResetBuffer <= 0 {
		cfg.ResetBuffer = 1 * time.Second
	}
	return &Governor{
		cfg:   cfg,
		quota: quota,
		now:   time.Now,
		sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Governor) logf(format string, args ...any) {
	if g.Logf != nil {
		g.Logf(format, args...)
	}
}

// Admit blocks until one outbound call may be issued, then records it.
func (g *Governor) Admit(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("Admit: nil context")
	}
	if g == nil {
		return fmt.Errorf("Admit: nil Governor")
	}
	if g.now == nil || g.sleep == nil {
		return fmt.Errorf("Admit: Governor not initialized (use NewGovernor)")
	}

	if err := g.respectRemoteQuota(ctx); err != nil {
		return err
	}
	return g.respectLocalCeiling(ctx)
}

// respectRemoteQuota probes the remote quota (TTL-cached) and suspends past
// the reset time when the remaining budget is below the safety threshold. A
// failed probe never blocks: the local ceiling is the only guard then.
func (g *Governor) respectRemoteQuota(ctx context.Context) error {
	if g.quota == nil {
		return nil
	}

	g.mu.Lock()
	now := g.now()
	stale := !g.haveCache || now.Sub(g.cachedAt) > g.cfg.QuotaCacheTTL
	g.mu.Unlock()

	if stale {
		remaining, reset, err := g.quota(ctx)
		if err != nil {
			g.logf("quota probe failed, proceeding on local ceiling: %v", err)
			return nil
		}
		g.mu.Lock()
		g.cachedRemaining = remaining
		g.cachedReset = reset
		g.cachedAt = g.now()
		g.haveCache = true
		g.mu.Unlock()
	}

	g.mu.Lock()
	remaining := g.cachedRemaining
	reset := g.cachedReset
	now = g.now()
	g.mu.Unlock()

	if remaining >= g.cfg.SafetyThreshold {
		return nil
	}

	wait := reset.Sub(now) + g.cfg.ResetBuffer
	if wait > 0 {
		g.logf("remote quota low (%d remaining), suspending %s until reset", remaining, wait.Round(time.Second))
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}

	// Invalidate so the next Admit re-probes the refreshed budget.
	g.mu.Lock()
	g.haveCache = false
	g.mu.Unlock()
	return nil
}

// respectLocalCeiling enforces the sliding 60-second window, then records
// the admitted call.
func (g *Governor) respectLocalCeiling(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := g.now()
		g.pruneLocked(now)

		if len(g.calls) < g.cfg.MaxPerMinute {
			g.calls = append(g.calls, now)
			g.mu.Unlock()
			return nil
		}
		oldest := g.calls[0]
		g.mu.Unlock()

		wait := time.Minute - now.Sub(oldest)
		if wait <= 0 {
			continue
		}
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (g *Governor) pruneLocked(now time.Time) {
	cutoff := now.Add(-time.Minute)
	kept := g.calls[:0]
	for _, t := range g.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.calls = kept
}

// WindowCount reports how many calls sit in the current sliding window.
func (g *Governor) WindowCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return len(g.calls)
}

// RemainingQuota returns the last observed remote quota snapshot, or -1
// when no probe has succeeded yet.
func (g *Governor) RemainingQuota() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.haveCache {
		return -1
	}
	return g.cachedRemaining
}
