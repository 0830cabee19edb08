package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techradar/internal/checkpoint"
	"techradar/internal/config"
	"techradar/internal/extract"
	"techradar/internal/fetcher"
	"techradar/internal/radar"
)

// ScanResult is everything the scan pass produced for the analysis pass.
type ScanResult struct {
	Records     []radar.RepositoryRecord
	Stats       checkpoint.Stats
	Interrupted bool
}

// Scan walks the filtered population in order, one repository at a time.
// Repositories already recorded in the checkpoint are skipped; per-repo
// fetch failures are counted and do not stop the run. Cancellation stops
// the walk after the current repository, with the checkpoint flushed.
func (e *Engine) Scan(ctx context.Context, cfg *config.Config, repos []RepositoryRef) (*ScanResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("Scan: nil context")
	}
	if e == nil || e.Fetcher == nil {
		return nil, fmt.Errorf("Scan: nil fetcher (use NewEngine)")
	}
	if e.Checkpoint == nil {
		return nil, fmt.Errorf("Scan: nil checkpoint store (use NewEngine)")
	}

	e.Checkpoint.Start()

	result := &ScanResult{}
	now := e.now
	if now == nil {
		now = time.Now
	}

	for i, ref := range repos {
		select {
		case <-ctx.Done():
			result.Interrupted = true
		default:
		}
		if result.Interrupted {
			break
		}

		full := ref.FullName()
		if e.Checkpoint.IsScanned(full) {
			result.Stats.ReposSkipped++
			continue
		}

		e.logf("[%d/%d] scanning %s", i+1, len(repos), full)

		signals, err := e.Fetcher.Fetch(ctx, ref.Owner, ref.Name)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Interrupted = true
				break
			}
			result.Stats.Errors++
			e.logf("scan %s: %v", full, err)
			if errors.Is(err, fetcher.ErrNotFound) {
				// A vanished repo will not reappear; mark it so a resumed run
				// does not retry it.
				e.Checkpoint.MarkScanned(full)
			}
			continue
		}

		observations := extract.Run(signals)
		record := radar.RepositoryRecord{
			ID:           ref.Repo.GetID(),
			Name:         ref.Name,
			FullName:     full,
			URL:          ref.Repo.GetHTMLURL(),
			Stars:        ref.Repo.GetStargazersCount(),
			Archived:     ref.Repo.GetArchived(),
			Fork:         ref.Repo.GetFork(),
			Private:      ref.Repo.GetPrivate(),
			Technologies: observations,
			Temporal: radar.ComputeTemporal(
				ref.Repo.GetCreatedAt().Time,
				ref.Repo.GetPushedAt().Time,
				now(),
				radar.DefaultActivityWindowDays,
			),
		}
		record.Domain, record.DomainConfidence = e.classifyDomain(ctx, signals, observations)

		result.Records = append(result.Records, record)
		result.Stats.ReposScanned++
		result.Stats.APICalls = e.Fetcher.Calls()
		result.Stats.QuotaRemaining = e.Fetcher.Governor().RemainingQuota()
		e.Checkpoint.SetStats(result.Stats)
		e.Checkpoint.MarkScanned(full)
	}

	result.Stats.APICalls = e.Fetcher.Calls()
	result.Stats.QuotaRemaining = e.Fetcher.Governor().RemainingQuota()
	e.Checkpoint.SetStats(result.Stats)
	if result.Interrupted {
		e.Checkpoint.Flush()
		return result, ctx.Err()
	}
	e.Checkpoint.Finalize()
	return result, nil
}

const domainPathLimit = 15

// classifyDomain asks the oracle for the repository's engineering domain.
// Oracle failure or absence degrades to the unknown domain.
func (e *Engine) classifyDomain(ctx context.Context, signals *extract.Signals, observations radar.ObservationSet) (radar.DomainTag, float64) {
	if e.Oracle == nil {
		return radar.DomainUnknown, 0
	}

	paths := signals.Paths
	if len(paths) > domainPathLimit {
		paths = paths[:domainPathLimit]
	}
	opinion, err := e.Oracle.ClassifyDomain(ctx, radar.DomainQuestion{
		RepoName:     signals.RepoName,
		Description:  signals.Description,
		Technologies: observations,
		TopPaths:     paths,
	})
	if err != nil {
		e.logf("domain classification %s: %v", signals.RepoName, err)
		return radar.DomainUnknown, 0
	}
	return opinion.Domain, opinion.Confidence
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}
