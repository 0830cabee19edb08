package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t       time.Time
	slept   time.Duration
	nSleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if d > 0 {
		c.t = c.t.Add(d)
		c.slept += d
		c.nSleeps++
	}
	return ctx.Err()
}

func testGovernor(cfg GovernorConfig, quota QuotaFunc) (*Governor, *fakeClock) {
	g := NewGovernor(cfg, quota)
	clock := newFakeClock()
	g.now = clock.now
	g.sleep = clock.sleep
	return g, clock
}

func TestGovernorSlidingWindowCeiling(t *testing.T) {
	g, clock := testGovernor(GovernorConfig{MaxPerMinute: 3}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Admit(ctx); err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
	}
	if got := g.WindowCount(); got != 3 {
		t.Fatalf("window count = %d, want 3", got)
	}

	// The fourth call must wait until the oldest entry ages out.
	if err := g.Admit(ctx); err != nil {
		t.Fatalf("Admit over ceiling: %v", err)
	}
	if clock.slept < time.Minute {
		t.Fatalf("expected a ~60s suspension, slept %s", clock.slept)
	}
	if got := g.WindowCount(); got != 1 {
		t.Fatalf("window count after ageout = %d, want 1", got)
	}
}

func TestGovernorWindowAgesOutWithoutWaiting(t *testing.T) {
	g, clock := testGovernor(GovernorConfig{MaxPerMinute: 2}, nil)
	ctx := context.Background()

	if err := g.Admit(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.Admit(ctx); err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(61 * time.Second)
	slept := clock.slept
	if err := g.Admit(ctx); err != nil {
		t.Fatal(err)
	}
	if clock.slept != slept {
		t.Fatalf("no suspension expected after window aged out, slept %s", clock.slept-slept)
	}
}

func TestGovernorQuotaSuspendsUntilReset(t *testing.T) {
	probes := 0
	var clock *fakeClock
	quota := func(ctx context.Context) (int, time.Time, error) {
		probes++
		if probes == 1 {
			return 50, clock.t.Add(30 * time.Second), nil
		}
		return 5000, clock.t.Add(time.Hour), nil
	}

	g, c := testGovernor(GovernorConfig{MaxPerMinute: 25, SafetyThreshold: 100, ResetBuffer: time.Second}, quota)
	clock = c
	ctx := context.Background()

	if err := g.Admit(ctx); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if c.slept < 31*time.Second {
		t.Fatalf("expected suspension past reset plus buffer, slept %s", c.slept)
	}

	// The cache was invalidated by the suspension, so the next admit probes
	// again and sees the refreshed budget.
	if err := g.Admit(ctx); err != nil {
		t.Fatalf("Admit after reset: %v", err)
	}
	if probes != 2 {
		t.Fatalf("expected 2 probes, got %d", probes)
	}
	if got := g.RemainingQuota(); got != 5000 {
		t.Fatalf("remaining quota snapshot = %d, want 5000", got)
	}
}

func TestGovernorQuotaProbeCached(t *testing.T) {
	probes := 0
	quota := func(ctx context.Context) (int, time.Time, error) {
		probes++
		return 5000, time.Time{}, nil
	}

	g, clock := testGovernor(GovernorConfig{QuotaCacheTTL: 10 * time.Second}, quota)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := g.Admit(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if probes != 1 {
		t.Fatalf("probes within TTL = %d, want 1", probes)
	}

	clock.t = clock.t.Add(11 * time.Second)
	if err := g.Admit(ctx); err != nil {
		t.Fatal(err)
	}
	if probes != 2 {
		t.Fatalf("probes after TTL expiry = %d, want 2", probes)
	}
}

func TestGovernorProbeFailureProceedsOptimistically(t *testing.T) {
	quota := func(ctx context.Context) (int, time.Time, error) {
		return 0, time.Time{}, errors.New("probe failed")
	}

	g, clock := testGovernor(DefaultGovernorConfig(), quota)
	if err := g.Admit(context.Background()); err != nil {
		t.Fatalf("Admit must not fail on a failed probe: %v", err)
	}
	if clock.slept != 0 {
		t.Fatalf("failed probe must not suspend, slept %s", clock.slept)
	}
	if got := g.RemainingQuota(); got != -1 {
		t.Fatalf("no quota snapshot expected, got %d", got)
	}
}

func TestGovernorAdmitNilContext(t *testing.T) {
	g, _ := testGovernor(DefaultGovernorConfig(), nil)
	//nolint:staticcheck
	if err := g.Admit(nil); err == nil {
		t.Fatal("expected error for nil context")
	}
}
