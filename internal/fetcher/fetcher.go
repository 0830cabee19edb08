package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"techradar/internal/extract"
)

// ErrNotFound marks a repository or file that does not exist at the remote
// source. Benign for optional manifests; sources must wrap their own
// not-found signal with this sentinel.
var ErrNotFound = errors.New("not found")

// Source is the repository data source behind the fetcher. FetchSignals
// returns everything the extractors need for one repository in as few
// remote calls as the source can manage.
type Source interface {
	FetchSignals(ctx context.Context, owner, name string) (*extract.Signals, error)
	Quota(ctx context.Context) (remaining int, reset time.Time, err error)
}

type RetryConfig struct {
	// Attempts bounds fetch attempts per repository, first try included.
	Attempts int
	// BaseDelay is the first backoff; each further attempt doubles it.
	BaseDelay time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: 2 * time.Second}
}

// Fetcher composes the source with the Governor, Breaker, retry policy,
// and a run-scoped cache. One Fetcher serves one scan run.
type Fetcher struct {
	source   Source
	governor *Governor
	breaker  *Breaker
	cache    *Cache
	group    Group
	retry    RetryConfig
	sleep    func(ctx context.Context, d time.Duration) error
	calls    atomic.Int64
}

func NewFetcher(source Source, governor *Governor, breaker *Breaker, retry RetryConfig) *Fetcher {
	if retry.Attempts <= 0 {
		retry.Attempts = 3
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = 2 * time.Second
	}
	return &Fetcher{
		source:   source,
		governor: governor,
		breaker:  breaker,
		cache:    NewCache(),
		retry:    retry,
		sleep:    sleepContext,
	}
}

func (f *Fetcher) Governor() *Governor { return f.governor }
func (f *Fetcher) Breaker() *Breaker   { return f.breaker }
func (f *Fetcher) Cache() *Cache       { return f.cache }

// Calls reports how many source fetches were actually issued.
func (f *Fetcher) Calls() int64 { return f.calls.Load() }

// Fetch returns the repository's signals, retrying transient failures with
// exponential backoff. An open breaker aborts immediately: backing off on a
// refusal that made no remote call would only stall the run.
func (f *Fetcher) Fetch(ctx context.Context, owner, name string) (*extract.Signals, error) {
	if ctx == nil {
		return nil, fmt.Errorf("Fetch: nil context")
	}
	if f == nil {
		return nil, fmt.Errorf("Fetch: nil Fetcher")
	}
	if f.source == nil {
		return nil, fmt.Errorf("Fetch: nil source (use NewFetcher)")
	}
	if owner == "" || name == "" {
		return nil, fmt.Errorf("Fetch: repo owner/name is required")
	}

	flightKey := strings.ToLower(owner + "/" + name)
	if val, ok := f.cache.Get(flightKey); ok {
		return val.(*extract.Signals), nil
	}

	val, err, _ := f.group.Do(flightKey, func() (interface{}, error) {
		return f.doFetch(ctx, owner, name)
	})
	if err != nil {
		return nil, err
	}

	f.cache.Set(flightKey, val)
	return val.(*extract.Signals), nil
}

func (f *Fetcher) doFetch(ctx context.Context, owner, name string) (*extract.Signals, error) {
	var lastErr error
	for attempt := 0; attempt < f.retry.Attempts; attempt++ {
		if attempt > 0 {
			delay := f.retry.BaseDelay << uint(attempt-1)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		if f.governor != nil {
			if err := f.governor.Admit(ctx); err != nil {
				return nil, err
			}
		}

		var signals *extract.Signals
		err := f.guarded(ctx, func() error {
			f.calls.Add(1)
			s, err := f.source.FetchSignals(ctx, owner, name)
			if err != nil {
				return err
			}
			signals = s
			return nil
		})
		if err == nil {
			return signals, nil
		}
		if errors.Is(err, ErrBreakerOpen) || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch %s/%s: %w", owner, name, lastErr)
}

func (f *Fetcher) guarded(ctx context.Context, op func() error) error {
	if f.breaker == nil {
		return op()
	}
	return f.breaker.Do(ctx, op)
}
