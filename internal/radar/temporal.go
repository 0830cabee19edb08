package radar

// Analyze computes the TemporalProfile of one technology from the records
// that reference it. It is a pure function of the records: trend, scores,
// and the per-domain breakdown all derive from TemporalMetadata flags.
//
// domainFilter restricts the analysis to records carrying one domain tag;
// pass "" for the global view. The global view additionally attaches a
// per-domain breakdown computed by the same rules.
func Analyze(tech string, records []RepositoryRecord, domainFilter DomainTag) TemporalProfile {
	var matched []RepositoryRecord
	for _, rec := range records {
		if rec.Technologies.Has(tech) {
			matched = append(matched, rec)
		}
	}
	if domainFilter != "" {
		var kept []RepositoryRecord
		for _, rec := range matched {
			if rec.Domain == domainFilter {
				kept = append(kept, rec)
			}
		}
		matched = kept
	}
	if len(matched) == 0 {
		return TemporalProfile{Trend: TrendNone}
	}

	profile := profileOf(matched)

	if domainFilter == "" {
		byDomain := make(map[DomainTag]TemporalProfile)
		groups := make(map[DomainTag][]RepositoryRecord)
		for _, rec := range matched {
			if rec.Domain == "" || rec.Domain == DomainUnknown {
				continue
			}
			groups[rec.Domain] = append(groups[rec.Domain], rec)
		}
		for domain, group := range groups {
			byDomain[domain] = profileOf(group)
		}
		if len(byDomain) > 0 {
			profile.ByDomain = byDomain
		}
	}

	return profile
}

func profileOf(records []RepositoryRecord) TemporalProfile {
	total := len(records)

	var recent, newer, legacy, active int
	var ageSum float64
	var names []string
	for _, rec := range records {
		tm := rec.Temporal
		if tm.Recent {
			recent++
		}
		if tm.New {
			newer++
		}
		if tm.Legacy {
			legacy++
		}
		if tm.Active {
			active++
		}
		ageSum += tm.AgeMonths
		if len(names) < 10 {
			names = append(names, rec.Name)
		}
	}

	return TemporalProfile{
		TotalRepos:    total,
		RecentRepos:   recent,
		NewRepos:      newer,
		LegacyRepos:   legacy,
		ActiveRepos:   active,
		StaleRepos:    total - active,
		AvgAgeMonths:  ageSum / float64(total),
		Trend:         classifyTrend(recent, newer, legacy, active, total),
		RecencyScore:  recencyScore(recent, newer, total),
		ActivityScore: float64(active) / float64(total),
		Repos:         names,
	}
}

// classifyTrend is evaluated in precedence order; the first match wins.
func classifyTrend(recent, newer, legacy, active, total int) Trend {
	if total == 0 {
		return TrendNone
	}

	recentRatio := float64(recent) / float64(total)
	newRatio := float64(newer) / float64(total)
	legacyRatio := float64(legacy) / float64(total)
	activityRatio := float64(active) / float64(total)

	if recentRatio > 0.5 || (newRatio > 0.6 && activityRatio > 0.7) {
		return TrendGrowing
	}
	if legacyRatio > 0.7 && activityRatio < 0.3 {
		return TrendAbandoned
	}
	if recentRatio == 0 && newRatio < 0.3 && activityRatio < 0.5 {
		return TrendDeclining
	}
	return TrendStable
}

// recencyScore weights recently created repositories double. Recent is a
// subset of new, so the score can exceed 1.0 when most repos are recent.
func recencyScore(recent, newer, total int) float64 {
	if total == 0 {
		return 0
	}
	return (float64(recent)*1.0 + float64(newer)*0.5) / float64(total)
}

// AggregateTemporal summarizes temporal flags across all scanned records,
// for the run summary.
type AggregateStats struct {
	TotalRepositories  int `json:"total_repositories"`
	RecentRepositories int `json:"recent_repositories"`
	NewRepositories    int `json:"new_repositories"`
	LegacyRepositories int `json:"legacy_repositories"`
	ActiveRepositories int `json:"active_repositories"`
	StaleRepositories  int `json:"stale_repositories"`
}

func AggregateTemporal(records []RepositoryRecord) AggregateStats {
	var agg AggregateStats
	agg.TotalRepositories = len(records)
	for _, rec := range records {
		if rec.Temporal.Recent {
			agg.RecentRepositories++
		}
		if rec.Temporal.New {
			agg.NewRepositories++
		}
		if rec.Temporal.Legacy {
			agg.LegacyRepositories++
		}
		if rec.Temporal.Active {
			agg.ActiveRepositories++
		}
	}
	agg.StaleRepositories = agg.TotalRepositories - agg.ActiveRepositories
	return agg
}
