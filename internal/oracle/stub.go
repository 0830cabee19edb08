package oracle

import (
	"context"
	"fmt"

	"techradar/internal/radar"
)

// Stub is a deterministic, offline oracle used for dry runs and when no API
// key is configured. Quadrants come from keyword inference, strategic value
// is always medium, and curation verdicts are conservative (nothing merges
// or consolidates).
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (Stub) ClassifyTechnology(_ context.Context, q radar.TechQuestion) (radar.TechOpinion, error) {
	return radar.TechOpinion{
		Quadrant:    radar.InferQuadrant(q.Name),
		Description: fmt.Sprintf("%s is used in %d repositories (%.1f%% of the portfolio).", q.Name, q.Profile.TotalRepos, q.UsagePercent),
		Confidence:  radar.ConfidenceLow,
	}, nil
}

func (Stub) ClassifyDomain(_ context.Context, _ radar.DomainQuestion) (radar.DomainOpinion, error) {
	return radar.DomainOpinion{Domain: radar.DomainUnknown, Confidence: 0}, nil
}

func (Stub) JudgeStrategicValue(_ context.Context, _ radar.StrategicQuestion) (radar.StrategicOpinion, error) {
	return radar.StrategicOpinion{
		Value:      radar.ConfidenceMedium,
		Reason:     "offline default",
		Confidence: radar.ConfidenceLow,
	}, nil
}

func (Stub) JudgeDuplicates(_ context.Context, _ []string) (radar.DuplicateOpinion, error) {
	return radar.DuplicateOpinion{AreDuplicates: false}, nil
}

func (Stub) JudgeHierarchy(_ context.Context, _ string, _ []string) (radar.HierarchyOpinion, error) {
	return radar.HierarchyOpinion{Consolidate: false}, nil
}
