package radar

import "time"

// ScanSummary is the run accounting attached to the final document.
type ScanSummary struct {
	ReposScanned   int   `json:"repos_scanned"`
	ReposSkipped   int   `json:"repos_skipped"`
	APICalls       int64 `json:"api_calls"`
	Errors         int   `json:"errors"`
	QuotaRemaining int   `json:"quota_remaining"`
}

// Document is the complete radar produced by one run: every surviving
// decision plus the curation report and aggregate temporal statistics.
type Document struct {
	GeneratedAt time.Time      `json:"generated_at"`
	RunID       string         `json:"run_id,omitempty"`
	TotalRepos  int            `json:"total_repos"`
	Decisions   []Decision     `json:"decisions"`
	Curation    CurationReport `json:"curation"`
	Aggregate   AggregateStats `json:"aggregate"`
	Summary     ScanSummary    `json:"summary"`
}

// NeedsReview reports how many surviving decisions are escalated for a
// human pass.
func (d *Document) NeedsReview() int {
	n := 0
	for _, dec := range d.Decisions {
		if dec.NeedsReview {
			n++
		}
	}
	return n
}
