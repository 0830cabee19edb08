package radar

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CurationConfig holds the tunables of the Curation Engine.
type CurationConfig struct {
	// AlwaysIncludeNames are kept without consulting the oracle.
	AlwaysIncludeNames []string

	// AlwaysIncludeMinRepos auto-keeps any technology used by at least
	// this many repositories.
	AlwaysIncludeMinRepos int

	// MinReposByDomain lowers the auto-keep threshold for technologies
	// concentrated in a specific domain.
	MinReposByDomain map[DomainTag]int

	// UtilityNames lists OS-utility and dev-convenience name fragments
	// auto-removed when the technology has exactly one using repository.
	UtilityNames []string

	// StrategicIncludeLevels is the set of oracle strategic-value verdicts
	// that keep a technology.
	StrategicIncludeLevels []ConfidenceLabel

	// Phase toggles.
	DetectDuplicates  bool
	DetectHierarchies bool
	FlagDeprecated    bool

	// DeprecatedTable maps known-deprecated names (case-sensitive, with
	// common-case variants listed explicitly) to their replacement.
	DeprecatedTable map[string]DeprecationFlag
}

// DefaultCurationConfig returns the stock curation rules.
func DefaultCurationConfig() CurationConfig {
	return CurationConfig{
		AlwaysIncludeMinRepos: 5,
		UtilityNames: []string{
			"apt-get", "brew", "curl", "wget", "tar", "zip", "unzip",
			"grep", "sed", "awk",
			"rimraf", "nodemon", "npm-run-all", "cross-env", "dotenv", "envsubst",
		},
		StrategicIncludeLevels: []ConfidenceLabel{ConfidenceHigh, ConfidenceMedium},
		DetectDuplicates:       true,
		DetectHierarchies:      true,
		FlagDeprecated:         true,
		DeprecatedTable: map[string]DeprecationFlag{
			"TSLint": {Name: "TSLint", Replacement: "ESLint", Note: "TSLint is deprecated. Migrate to ESLint."},
			"tslint": {Name: "tslint", Replacement: "ESLint", Note: "TSLint is deprecated. Migrate to ESLint."},
		},
	}
}

// CurationReport counts what each phase did.
type CurationReport struct {
	Evaluated    int `json:"evaluated"`
	Kept         int `json:"kept"`
	Removed      int `json:"removed"`
	Merged       int `json:"merged"`
	Consolidated int `json:"consolidated"`
	OracleCalls  int `json:"oracle_calls"`

	MergeGroups    []MergeGroup      `json:"merge_groups,omitempty"`
	Consolidations []Consolidation   `json:"consolidations,omitempty"`
	Deprecated     []DeprecationFlag `json:"deprecated,omitempty"`
}

// Curator post-processes the full classified set: strategic filtering,
// duplicate merging, hierarchy consolidation, and deprecation flagging, in
// that order. Each phase reads the original input set; removals from phases
// 1-3 are unioned before final assembly.
type Curator struct {
	cfg    CurationConfig
	oracle Oracle
}

func NewCurator(cfg CurationConfig, oracle Oracle) *Curator {
	if cfg.AlwaysIncludeMinRepos <= 0 {
		cfg.AlwaysIncludeMinRepos = 5
	}
	if len(cfg.StrategicIncludeLevels) == 0 {
		cfg.StrategicIncludeLevels = []ConfidenceLabel{ConfidenceHigh, ConfidenceMedium}
	}
	return &Curator{cfg: cfg, oracle: oracle}
}

// Curate returns the surviving decisions and a report. Survivors keep input
// order. Oracle failures always degrade to keeping the technology.
func (c *Curator) Curate(ctx context.Context, decisions []Decision) ([]Decision, CurationReport) {
	report := CurationReport{Evaluated: len(decisions)}

	byName := make(map[string]*Decision, len(decisions))
	order := make([]string, 0, len(decisions))
	for i := range decisions {
		d := decisions[i]
		byName[d.Name] = &d
		order = append(order, d.Name)
	}

	toRemove := make(map[string]bool)

	// Phase 1: strategic filter.
	for _, name := range order {
		if !c.shouldKeep(ctx, byName[name], &report) {
			toRemove[name] = true
		}
	}

	// Phase 2: duplicate detection.
	if c.cfg.DetectDuplicates {
		for _, group := range c.detectDuplicates(ctx, order, &report) {
			report.MergeGroups = append(report.MergeGroups, group)
			c.applyMerge(byName, group)
			for _, candidate := range group.Candidates {
				toRemove[candidate] = true
				report.Merged++
			}
		}
	}

	// Phase 3: hierarchy consolidation.
	if c.cfg.DetectHierarchies {
		for _, cons := range c.detectHierarchies(ctx, order, &report) {
			report.Consolidations = append(report.Consolidations, cons)
			c.applyConsolidation(byName, cons)
			for _, child := range cons.Children {
				toRemove[child] = true
				report.Consolidated++
			}
		}
	}

	// Phase 4: deprecation check. Annotation only, no removal.
	if c.cfg.FlagDeprecated {
		for _, name := range order {
			if flag, ok := c.cfg.DeprecatedTable[name]; ok {
				d := byName[name]
				d.Deprecated = true
				d.Replacement = flag.Replacement
				d.DeprecationNote = flag.Note
				report.Deprecated = append(report.Deprecated, flag)
			}
		}
	}

	// Final assembly.
	var survivors []Decision
	for _, name := range order {
		if toRemove[name] {
			continue
		}
		survivors = append(survivors, *byName[name])
	}
	report.Kept = len(survivors)
	report.Removed = len(decisions) - len(survivors)
	return survivors, report
}

func (c *Curator) shouldKeep(ctx context.Context, d *Decision, report *CurationReport) bool {
	for _, name := range c.cfg.AlwaysIncludeNames {
		if name == d.Name {
			return true
		}
	}
	if d.RepoCount >= c.cfg.AlwaysIncludeMinRepos {
		return true
	}
	// Domain-aware minimum: a technology dominant in one domain can
	// qualify below the global default.
	for domain, profile := range d.Temporal.ByDomain {
		if min, ok := c.cfg.MinReposByDomain[domain]; ok && profile.TotalRepos >= min {
			return true
		}
	}
	if d.RepoCount == 1 && c.isUtilityName(d.Name) {
		return false
	}

	if c.oracle == nil {
		return true
	}
	report.OracleCalls++
	opinion, err := c.oracle.JudgeStrategicValue(ctx, StrategicQuestion{
		Name:         d.Name,
		RepoCount:    d.RepoCount,
		UsagePercent: d.UsagePercent,
		Quadrant:     d.Quadrant,
		Ring:         d.Ring,
	})
	if err != nil {
		// Keep by default, with lowest confidence.
		d.OracleLabel = string(ConfidenceLow)
		return true
	}
	for _, level := range c.cfg.StrategicIncludeLevels {
		if opinion.Value == level {
			return true
		}
	}
	return false
}

func (c *Curator) isUtilityName(name string) bool {
	lower := strings.ToLower(name)
	for _, util := range c.cfg.UtilityNames {
		if strings.Contains(lower, util) {
			return true
		}
	}
	return false
}

// detectDuplicates forms candidate groups by case-insensitive exact match or
// substring containment between names with length difference of at most
// five, then asks the oracle for an equivalence verdict per group.
func (c *Curator) detectDuplicates(ctx context.Context, names []string, report *CurationReport) []MergeGroup {
	var groups []MergeGroup
	processed := make(map[string]bool)

	for _, name := range names {
		if processed[name] {
			continue
		}
		similar := []string{name}
		lower := strings.ToLower(name)
		for _, other := range names {
			if other == name || processed[other] {
				continue
			}
			otherLower := strings.ToLower(other)
			switch {
			case lower == otherLower:
				similar = append(similar, other)
			case (strings.Contains(otherLower, lower) || strings.Contains(lower, otherLower)) && absInt(len(name)-len(other)) <= 5:
				similar = append(similar, other)
			}
		}
		if len(similar) < 2 {
			continue
		}
		for _, s := range similar {
			processed[s] = true
		}

		if c.oracle == nil {
			continue
		}
		report.OracleCalls++
		opinion, err := c.oracle.JudgeDuplicates(ctx, similar)
		if err != nil || !opinion.AreDuplicates {
			continue
		}
		// The oracle's verdict is untrusted: the canonical must be one of
		// the submitted names (a merge onto an unknown name would delete
		// every variant with no survivor), candidates are confined to the
		// submitted set, and the canonical never lists itself.
		allowed := make(map[string]bool, len(similar))
		for _, s := range similar {
			allowed[s] = true
		}
		group := MergeGroup{Canonical: opinion.Canonical, Reason: opinion.Reason}
		if group.Canonical == "" {
			group.Canonical = similar[0]
		} else if !allowed[group.Canonical] {
			continue
		}
		taken := map[string]bool{group.Canonical: true}
		for _, candidate := range opinion.Candidates {
			if allowed[candidate] && !taken[candidate] {
				taken[candidate] = true
				group.Candidates = append(group.Candidates, candidate)
			}
		}
		if len(group.Candidates) == 0 {
			for _, s := range similar {
				if s != group.Canonical {
					group.Candidates = append(group.Candidates, s)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// applyMerge rewrites the canonical survivor: it absorbs the candidates'
// repository counts and recomputes usage percentage against the same total.
func (c *Curator) applyMerge(byName map[string]*Decision, group MergeGroup) {
	canonical, ok := byName[group.Canonical]
	if !ok {
		return
	}
	total := canonical.RepoCount
	for _, candidate := range group.Candidates {
		if d, ok := byName[candidate]; ok {
			total += d.RepoCount
		}
	}
	canonical.RepoCount = total
	if canonical.TotalRepos > 0 {
		canonical.UsagePercent = float64(total) / float64(canonical.TotalRepos) * 100
	}
	canonical.MergedFrom = append(canonical.MergedFrom, group.Candidates...)
}

// detectHierarchies finds names that are a strict prefix of another name
// followed by a separating space, then asks the oracle whether the children
// are true sub-features.
func (c *Curator) detectHierarchies(ctx context.Context, names []string, report *CurationReport) []Consolidation {
	candidates := make(map[string][]string)
	for _, name := range names {
		for _, other := range names {
			if other != name && strings.HasPrefix(other, name+" ") {
				candidates[name] = append(candidates[name], other)
			}
		}
	}

	parents := make([]string, 0, len(candidates))
	for parent := range candidates {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	var consolidations []Consolidation
	for _, parent := range parents {
		children := candidates[parent]
		if c.oracle == nil {
			continue
		}
		report.OracleCalls++
		opinion, err := c.oracle.JudgeHierarchy(ctx, parent, children)
		if err != nil || !opinion.Consolidate {
			continue
		}
		consolidations = append(consolidations, Consolidation{
			Parent:   parent,
			Children: children,
			Reason:   opinion.Reason,
		})
	}
	return consolidations
}

// applyConsolidation annotates the parent with each child and its original
// repository count.
func (c *Curator) applyConsolidation(byName map[string]*Decision, cons Consolidation) {
	parent, ok := byName[cons.Parent]
	if !ok {
		return
	}
	for _, child := range cons.Children {
		if d, ok := byName[child]; ok {
			parent.SubFeatures = append(parent.SubFeatures, fmt.Sprintf("%s (%d repos)", child, d.RepoCount))
		}
	}
	parent.ConsolidatedFrom = append(parent.ConsolidatedFrom, cons.Children...)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
