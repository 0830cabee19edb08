package radar

import (
	"sort"
	"time"
)

// Category names an observation bucket in a TechnologyObservationSet.
type Category string

const (
	CategoryLanguages  Category = "languages"
	CategoryFrameworks Category = "frameworks"
	CategoryTools      Category = "tools"
	CategoryPlatforms  Category = "platforms"
)

// Categories returns every observation bucket in a stable order.
func Categories() []Category {
	return []Category{CategoryLanguages, CategoryFrameworks, CategoryTools, CategoryPlatforms}
}

// ObservationSet maps a category to the set of technology names observed in
// one repository. Names are case-sensitive; no normalization happens at this
// layer (the Curation Engine merges case variants later).
type ObservationSet map[Category]map[string]bool

func NewObservationSet() ObservationSet {
	return make(ObservationSet)
}

func (o ObservationSet) Add(cat Category, name string) {
	if name == "" {
		return
	}
	if o[cat] == nil {
		o[cat] = make(map[string]bool)
	}
	o[cat][name] = true
}

// Has reports whether the technology appears in any category.
func (o ObservationSet) Has(name string) bool {
	for _, names := range o {
		if names[name] {
			return true
		}
	}
	return false
}

// Len counts technologies across all categories.
func (o ObservationSet) Len() int {
	n := 0
	for _, names := range o {
		n += len(names)
	}
	return n
}

// Names returns all technology names across categories, sorted, without
// de-duplicating across categories (the same name in two categories is one
// technology; callers that need identity use Has).
func (o ObservationSet) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, names := range o {
		for name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// DomainTag is a coarse engineering-area classification of a repository.
type DomainTag string

const (
	DomainMobile         DomainTag = "mobile"
	DomainBackend        DomainTag = "backend"
	DomainFrontend       DomainTag = "frontend"
	DomainInfrastructure DomainTag = "infrastructure"
	DomainData           DomainTag = "data"
	DomainML             DomainTag = "ml"
	DomainLibrary        DomainTag = "library"
	DomainTooling        DomainTag = "tooling"
	DomainUnknown        DomainTag = "unknown"
)

// KnownDomains lists every domain tag the oracle may assign (unknown is the
// fallback, not a choice).
var KnownDomains = []DomainTag{
	DomainMobile, DomainBackend, DomainFrontend, DomainInfrastructure,
	DomainData, DomainML, DomainLibrary, DomainTooling,
}

func IsKnownDomain(d DomainTag) bool {
	for _, k := range KnownDomains {
		if k == d {
			return true
		}
	}
	return false
}

// TemporalMetadata is derived once from a repository's timestamps.
type TemporalMetadata struct {
	CreatedAt     time.Time `json:"created_at"`
	PushedAt      time.Time `json:"pushed_at"`
	AgeMonths     float64   `json:"age_months"`
	DaysSincePush int       `json:"days_since_push"`
	Active        bool      `json:"is_active"`
	Recent        bool      `json:"is_recent"` // age <= 6 months
	New           bool      `json:"is_new"`    // age <= 12 months
	Legacy        bool      `json:"is_legacy"` // age > 24 months
}

// DefaultActivityWindowDays is the recency window for the Active flag.
const DefaultActivityWindowDays = 90

// ComputeTemporal derives TemporalMetadata from repository timestamps.
// A zero pushedAt falls back to createdAt. Pure function of its inputs.
func ComputeTemporal(createdAt, pushedAt, now time.Time, activityWindowDays int) TemporalMetadata {
	if pushedAt.IsZero() {
		pushedAt = createdAt
	}
	if activityWindowDays <= 0 {
		activityWindowDays = DefaultActivityWindowDays
	}

	ageDays := now.Sub(createdAt).Hours() / 24
	ageMonths := ageDays / 30.0
	daysSincePush := int(now.Sub(pushedAt).Hours() / 24)

	return TemporalMetadata{
		CreatedAt:     createdAt,
		PushedAt:      pushedAt,
		AgeMonths:     ageMonths,
		DaysSincePush: daysSincePush,
		Active:        daysSincePush < activityWindowDays,
		Recent:        ageMonths <= 6,
		New:           ageMonths <= 12,
		Legacy:        ageMonths > 24,
	}
}

// RepositoryRecord is the per-repository output of one scan pass. Created
// once and immutable thereafter within the run.
type RepositoryRecord struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	FullName         string           `json:"full_name"`
	URL              string           `json:"url,omitempty"`
	Stars            int              `json:"stars"`
	Archived         bool             `json:"archived,omitempty"`
	Fork             bool             `json:"fork,omitempty"`
	Private          bool             `json:"private,omitempty"`
	Technologies     ObservationSet   `json:"technologies"`
	Temporal         TemporalMetadata `json:"temporal_metadata"`
	Domain           DomainTag        `json:"domain"`
	DomainConfidence float64          `json:"domain_confidence"`
}

// UsageIndex maps a technology name to the count of distinct repositories
// using it.
type UsageIndex map[string]int

// BuildUsageIndex union-aggregates observation sets across records. A
// technology appears in the index iff at least one record references it.
func BuildUsageIndex(records []RepositoryRecord) UsageIndex {
	idx := make(UsageIndex)
	for _, rec := range records {
		for _, name := range rec.Technologies.Names() {
			idx[name]++
		}
	}
	return idx
}

// Ring is a radar maturity label.
type Ring string

const (
	RingAdopt  Ring = "Adopt"
	RingTrial  Ring = "Trial"
	RingAssess Ring = "Assess"
	RingHold   Ring = "Hold"
)

// Quadrant is a radar category.
type Quadrant string

const (
	QuadrantTechniques Quadrant = "Techniques"
	QuadrantTools      Quadrant = "Tools"
	QuadrantPlatforms  Quadrant = "Platforms"
	QuadrantLanguages  Quadrant = "Languages & Frameworks"
)

// Trend is the adoption trajectory label for a technology.
type Trend string

const (
	TrendGrowing   Trend = "GROWING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
	TrendAbandoned Trend = "ABANDONED"
	TrendNone      Trend = "NONE"
)

// TemporalProfile summarizes the repositories using one technology.
// Recomputed on demand; never persisted independently.
type TemporalProfile struct {
	TotalRepos    int     `json:"total_repos"`
	RecentRepos   int     `json:"recent_repos"`
	NewRepos      int     `json:"new_repos"`
	LegacyRepos   int     `json:"legacy_repos"`
	ActiveRepos   int     `json:"active_repos"`
	StaleRepos    int     `json:"stale_repos"`
	AvgAgeMonths  float64 `json:"avg_age_months"`
	Trend         Trend   `json:"trend"`
	RecencyScore  float64 `json:"recency_score"`
	ActivityScore float64 `json:"activity_score"`
	// Repos holds up to ten repository names for reference.
	Repos []string `json:"repos_list,omitempty"`
	// ByDomain is populated only for unfiltered analyses; domains with no
	// repositories are omitted.
	ByDomain map[DomainTag]TemporalProfile `json:"by_domain,omitempty"`
}

// DomainRing is a per-domain ring suggestion attached to a Decision when a
// domain breakdown exists.
type DomainRing struct {
	Ring          Ring    `json:"ring"`
	Confidence    float64 `json:"confidence"`
	TotalRepos    int     `json:"total_repos"`
	RecentRepos   int     `json:"recent_repos"`
	ActivityScore float64 `json:"activity_score"`
	Trend         Trend   `json:"trend"`
}

// Decision is the classification outcome for one technology. Created once
// per run; only the Curation Engine's merge/consolidate/deprecate steps may
// rewrite count and provenance fields afterwards.
type Decision struct {
	Name            string          `json:"name"`
	Quadrant        Quadrant        `json:"quadrant"`
	Ring            Ring            `json:"ring"`
	Confidence      float64         `json:"confidence"`
	Description     string          `json:"description"`
	DecisionFactors []string        `json:"decision_factors"`
	NeedsReview     bool            `json:"needs_review"`
	ReviewReason    string          `json:"review_reason,omitempty"`
	RepoCount       int             `json:"repos_count"`
	TotalRepos      int             `json:"total_repos"`
	UsagePercent    float64         `json:"usage_percentage"`
	OracleLabel     string          `json:"oracle_confidence,omitempty"`
	Temporal        TemporalProfile `json:"temporal"`

	DomainRings map[DomainTag]DomainRing `json:"domain_rings,omitempty"`

	// Curation provenance.
	MergedFrom       []string `json:"merged_from,omitempty"`
	SubFeatures      []string `json:"sub_features,omitempty"`
	ConsolidatedFrom []string `json:"consolidated_from,omitempty"`
	Deprecated       bool     `json:"deprecated,omitempty"`
	Replacement      string   `json:"replacement,omitempty"`
	DeprecationNote  string   `json:"deprecation_note,omitempty"`
}

// MergeGroup records technologies judged to be the same under different
// names. Non-canonical members are removed during curation.
type MergeGroup struct {
	Canonical  string   `json:"canonical_name"`
	Candidates []string `json:"merge_candidates"`
	Reason     string   `json:"reason,omitempty"`
}

// Consolidation records a parent technology absorbing sub-feature children.
type Consolidation struct {
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
	Reason   string   `json:"reason,omitempty"`
}

// DeprecationFlag marks a known-deprecated technology and its replacement.
type DeprecationFlag struct {
	Name        string `json:"name"`
	Replacement string `json:"replacement"`
	Note        string `json:"note"`
}
