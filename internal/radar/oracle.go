package radar

import "context"

// ConfidenceLabel is the oracle's self-reported qualitative confidence.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// Numeric maps a confidence label to a score. Unrecognized labels map to
// 0.5.
func (c ConfidenceLabel) Numeric() float64 {
	switch c {
	case ConfidenceHigh:
		return 0.9
	case ConfidenceMedium:
		return 0.6
	case ConfidenceLow:
		return 0.3
	default:
		return 0.5
	}
}

// TechQuestion asks the oracle to classify one technology, contextualized
// with the ring the Decision Engine already chose.
type TechQuestion struct {
	Name          string
	UsagePercent  float64
	Profile       TemporalProfile
	SuggestedRing Ring
}

// TechOpinion is the oracle's answer to a TechQuestion.
type TechOpinion struct {
	Quadrant    Quadrant
	Description string
	Confidence  ConfidenceLabel
}

// DomainQuestion asks the oracle to classify a repository's engineering
// domain from its observed signals.
type DomainQuestion struct {
	RepoName     string
	Description  string
	Technologies ObservationSet
	TopPaths     []string
}

// DomainOpinion is the oracle's answer to a DomainQuestion.
type DomainOpinion struct {
	Domain     DomainTag
	Confidence float64
	Reasoning  string
}

// StrategicQuestion asks whether a technology belongs on a strategic radar
// at all.
type StrategicQuestion struct {
	Name         string
	RepoCount    int
	UsagePercent float64
	Quadrant     Quadrant
	Ring         Ring
}

// StrategicOpinion is the oracle's strategic-value verdict.
type StrategicOpinion struct {
	Value      ConfidenceLabel // high / medium / low strategic value
	Reason     string
	Confidence ConfidenceLabel
}

// DuplicateOpinion is the oracle's verdict on a group of similar names.
type DuplicateOpinion struct {
	AreDuplicates bool
	Canonical     string
	Candidates    []string
	Reason        string
}

// HierarchyOpinion is the oracle's verdict on a candidate parent/child set.
type HierarchyOpinion struct {
	Consolidate bool
	Reason      string
}

// Oracle is the narrow interface to the external judgment collaborator. It
// returns possibly low-quality opinions; implementations contain all JSON
// repair and retry logic, and the Decision and Curation engines treat every
// returned error as recoverable.
type Oracle interface {
	ClassifyTechnology(ctx context.Context, q TechQuestion) (TechOpinion, error)
	ClassifyDomain(ctx context.Context, q DomainQuestion) (DomainOpinion, error)
	JudgeStrategicValue(ctx context.Context, q StrategicQuestion) (StrategicOpinion, error)
	JudgeDuplicates(ctx context.Context, names []string) (DuplicateOpinion, error)
	JudgeHierarchy(ctx context.Context, parent string, children []string) (HierarchyOpinion, error)
}
