package engine

import (
	"context"
	"sort"
	"time"

	"techradar/internal/config"
	"techradar/internal/radar"
)

// Analyze runs the classification and curation passes over the scanned
// records and assembles the radar document. The pass is deterministic for
// a fixed record set and oracle.
func (e *Engine) Analyze(ctx context.Context, cfg *config.Config, result *ScanResult) *radar.Document {
	now := e.now
	if now == nil {
		now = time.Now
	}

	index := radar.BuildUsageIndex(result.Records)
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	decider := radar.NewDecisionEngine(decisionConfig(cfg), e.Oracle)
	decisions := make([]radar.Decision, 0, len(names))
	for _, name := range names {
		profile := radar.Analyze(name, result.Records, "")
		decisions = append(decisions, decider.Classify(ctx, name, index[name], len(result.Records), profile))
	}

	curator := radar.NewCurator(curationConfig(cfg), e.Oracle)
	kept, report := curator.Curate(ctx, decisions)

	doc := &radar.Document{
		GeneratedAt: now(),
		TotalRepos:  len(result.Records),
		Decisions:   kept,
		Curation:    report,
		Aggregate:   radar.AggregateTemporal(result.Records),
		Summary: radar.ScanSummary{
			ReposScanned:   result.Stats.ReposScanned,
			ReposSkipped:   result.Stats.ReposSkipped,
			APICalls:       result.Stats.APICalls,
			Errors:         result.Stats.Errors,
			QuotaRemaining: result.Stats.QuotaRemaining,
		},
	}
	if e.Checkpoint != nil {
		doc.RunID = e.Checkpoint.RunID()
	}
	return doc
}

func decisionConfig(cfg *config.Config) radar.DecisionConfig {
	dc := radar.DefaultDecisionConfig()
	if cfg.Decision.MinSampleSize > 0 {
		dc.MinSampleSize = cfg.Decision.MinSampleSize
	}
	if cfg.Decision.ReviewConfidenceFloor > 0 {
		dc.ReviewConfidenceFloor = cfg.Decision.ReviewConfidenceFloor
	}
	return dc
}

func curationConfig(cfg *config.Config) radar.CurationConfig {
	cc := radar.DefaultCurationConfig()
	cc.AlwaysIncludeNames = append(cc.AlwaysIncludeNames, cfg.Curation.AlwaysInclude...)
	if cfg.Curation.MinRepos > 0 {
		cc.AlwaysIncludeMinRepos = cfg.Curation.MinRepos
	}
	for domain, min := range cfg.Curation.MinReposByDomain {
		if cc.MinReposByDomain == nil {
			cc.MinReposByDomain = make(map[radar.DomainTag]int)
		}
		cc.MinReposByDomain[radar.DomainTag(domain)] = min
	}
	if cfg.Curation.DetectDuplicates != nil {
		cc.DetectDuplicates = *cfg.Curation.DetectDuplicates
	}
	if cfg.Curation.DetectHierarchies != nil {
		cc.DetectHierarchies = *cfg.Curation.DetectHierarchies
	}
	if cfg.Curation.FlagDeprecated != nil {
		cc.FlagDeprecated = *cfg.Curation.FlagDeprecated
	}
	return cc
}
