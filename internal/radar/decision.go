package radar

import (
	"context"
	"fmt"
)

// DominanceRule grants a ring to a technology concentrated in one large,
// active domain, so centralized infrastructure is not penalized for low
// repository-count diversity. The thresholds are empirically tuned; they are
// carried as configuration rather than derived.
type DominanceRule struct {
	MinRepos    int
	MinActivity float64
	Ring        Ring
	Confidence  float64
}

// DecisionConfig holds the tunable constants of the Decision Engine.
type DecisionConfig struct {
	// DominanceRules are checked in order against every per-domain
	// breakdown entry; the first satisfied rule decides the ring.
	DominanceRules []DominanceRule

	// MinSampleSize is the repository count below which the sample-size
	// clarity signal does not hold.
	MinSampleSize int

	// ReviewConfidenceFloor escalates any decision whose overall
	// confidence falls below it.
	ReviewConfidenceFloor float64
}

// DefaultDecisionConfig returns the tuned defaults.
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{
		DominanceRules: []DominanceRule{
			{MinRepos: 70, MinActivity: 0.4, Ring: RingAdopt, Confidence: 0.9},
			{MinRepos: 50, MinActivity: 0.5, Ring: RingAdopt, Confidence: 0.9},
			{MinRepos: 30, MinActivity: 0.65, Ring: RingTrial, Confidence: 0.8},
		},
		MinSampleSize:         5,
		ReviewConfidenceFloor: 0.75,
	}
}

// DecisionEngine turns usage counts and temporal profiles into ring/quadrant
// classifications. The oracle contributes quadrant, description, and a
// confidence label; everything else is deterministic.
type DecisionEngine struct {
	cfg    DecisionConfig
	oracle Oracle
}

// NewDecisionEngine builds an engine. oracle may be nil, in which case the
// deterministic fallback path is always taken.
func NewDecisionEngine(cfg DecisionConfig, oracle Oracle) *DecisionEngine {
	if len(cfg.DominanceRules) == 0 {
		cfg.DominanceRules = DefaultDecisionConfig().DominanceRules
	}
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = 5
	}
	if cfg.ReviewConfidenceFloor <= 0 {
		cfg.ReviewConfidenceFloor = 0.75
	}
	return &DecisionEngine{cfg: cfg, oracle: oracle}
}

// Classify produces the Decision for one technology. It never fails: oracle
// errors are absorbed by the keyword-table fallback.
func (e *DecisionEngine) Classify(ctx context.Context, name string, usageCount, totalRepos int, profile TemporalProfile) Decision {
	usageRatio := 0.0
	if totalRepos > 0 {
		usageRatio = float64(usageCount) / float64(totalRepos)
	}
	usagePercent := usageRatio * 100

	ring, ringConfidence := e.decideRing(usageRatio, profile.RecencyScore, profile.ActivityScore, profile.Trend, profile.ByDomain)

	opinion, oracleErr := e.consultOracle(ctx, name, usagePercent, profile, ring)
	oracleConfidence := opinion.Confidence.Numeric()
	if oracleErr != nil {
		oracleConfidence = ConfidenceLow.Numeric()
	}

	confidence := e.overallConfidence(usageRatio, profile, ringConfidence, oracleConfidence)

	needsReview, reviewReason := e.reviewNeed(confidence, profile, usageRatio)

	d := Decision{
		Name:            name,
		Quadrant:        opinion.Quadrant,
		Ring:            ring,
		Confidence:      confidence,
		Description:     opinion.Description,
		DecisionFactors: decisionFactors(usagePercent, profile),
		NeedsReview:     needsReview,
		ReviewReason:    reviewReason,
		RepoCount:       usageCount,
		TotalRepos:      totalRepos,
		UsagePercent:    usagePercent,
		OracleLabel:     string(opinion.Confidence),
		Temporal:        profile,
	}

	if len(profile.ByDomain) > 0 {
		d.DomainRings = e.domainRings(profile.ByDomain)
	}

	return d
}

// decideRing checks branches in order; the first match wins and yields the
// ring plus its base confidence.
func (e *DecisionEngine) decideRing(usage, recency, activity float64, trend Trend, byDomain map[DomainTag]TemporalProfile) (Ring, float64) {
	// Domain-dominance override.
	for _, domainProfile := range byDomain {
		for _, rule := range e.cfg.DominanceRules {
			if domainProfile.TotalRepos >= rule.MinRepos && domainProfile.ActivityScore >= rule.MinActivity {
				return rule.Ring, rule.Confidence
			}
		}
	}

	if (usage >= 0.4 && activity >= 0.5) || (usage >= 0.35 && activity >= 0.6) {
		return RingAdopt, 0.9
	}
	if (recency >= 0.2 && activity >= 0.6 && trend == TrendGrowing) || (usage >= 0.25 && activity >= 0.75) {
		return RingTrial, 0.8
	}
	if (usage < 0.1 && activity < 0.3) || trend == TrendAbandoned {
		return RingHold, 0.85
	}
	return RingAssess, 0.6
}

// consultOracle asks for quadrant, description, and a confidence label.
// On failure it substitutes the deterministic fallback; this path never
// raises.
func (e *DecisionEngine) consultOracle(ctx context.Context, name string, usagePercent float64, profile TemporalProfile, ring Ring) (TechOpinion, error) {
	if e.oracle != nil {
		opinion, err := e.oracle.ClassifyTechnology(ctx, TechQuestion{
			Name:          name,
			UsagePercent:  usagePercent,
			Profile:       profile,
			SuggestedRing: ring,
		})
		if err == nil {
			if opinion.Quadrant == "" {
				opinion.Quadrant = InferQuadrant(name)
			}
			if opinion.Description == "" {
				opinion.Description = fallbackDescription(name, usagePercent)
			}
			return opinion, nil
		}
		return TechOpinion{
			Quadrant:    InferQuadrant(name),
			Description: fallbackDescription(name, usagePercent),
			Confidence:  ConfidenceLow,
		}, err
	}
	return TechOpinion{
		Quadrant:    InferQuadrant(name),
		Description: fallbackDescription(name, usagePercent),
		Confidence:  ConfidenceLow,
	}, nil
}

func fallbackDescription(name string, usagePercent float64) string {
	return fmt.Sprintf("%s is used in %.1f%% of repositories. Further evaluation recommended.", name, usagePercent)
}

// overallConfidence blends signal clarity, the ring decision's base
// confidence, and the oracle's numeric confidence (weights 0.4/0.4/0.2),
// clamped to [0,1].
func (e *DecisionEngine) overallConfidence(usage float64, profile TemporalProfile, ringConfidence, oracleConfidence float64) float64 {
	strong, total := 0, 0

	total++
	if usage > 0.7 || usage < 0.1 {
		strong++
	}
	total++
	if profile.ActivityScore > 0.8 || profile.ActivityScore < 0.2 {
		strong++
	}
	total++
	if profile.Trend == TrendGrowing || profile.Trend == TrendAbandoned {
		strong++
	}
	total++
	if profile.TotalRepos >= e.cfg.MinSampleSize {
		strong++
	}

	signalClarity := float64(strong) / float64(total)
	confidence := signalClarity*0.4 + ringConfidence*0.4 + oracleConfidence*0.2

	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func (e *DecisionEngine) reviewNeed(confidence float64, profile TemporalProfile, usage float64) (bool, string) {
	if confidence < e.cfg.ReviewConfidenceFloor {
		return true, "Low confidence classification"
	}
	if profile.Trend == TrendDeclining && usage > 0.3 {
		return true, "High usage but declining trend"
	}
	if profile.Trend == TrendGrowing && usage < 0.1 {
		return true, "Low usage but growing trend"
	}
	if profile.TotalRepos < 3 {
		return true, "Limited data (fewer than 3 repos)"
	}
	return false, ""
}

// decisionFactors builds the human-readable audit list. It is independent of
// the numeric path.
func decisionFactors(usagePercent float64, profile TemporalProfile) []string {
	var factors []string

	switch {
	case usagePercent >= 50:
		factors = append(factors, fmt.Sprintf("High usage (%.1f%%)", usagePercent))
	case usagePercent >= 20:
		factors = append(factors, fmt.Sprintf("Medium usage (%.1f%%)", usagePercent))
	default:
		factors = append(factors, fmt.Sprintf("Low usage (%.1f%%)", usagePercent))
	}

	if profile.RecentRepos > 0 {
		factors = append(factors, fmt.Sprintf("%d new repos in last 6 months", profile.RecentRepos))
	} else {
		factors = append(factors, "No new adoption in last 6 months")
	}

	activePct := 0.0
	if profile.TotalRepos > 0 {
		activePct = float64(profile.ActiveRepos) / float64(profile.TotalRepos) * 100
	}
	switch {
	case activePct >= 70:
		factors = append(factors, fmt.Sprintf("%.0f%% of repos actively maintained", activePct))
	case activePct >= 40:
		factors = append(factors, fmt.Sprintf("%.0f%% of repos actively maintained", activePct))
	default:
		factors = append(factors, fmt.Sprintf("Only %.0f%% of repos actively maintained", activePct))
	}

	factors = append(factors, fmt.Sprintf("Trend: %s", profile.Trend))
	return factors
}

// domainRings runs the ring ladder per domain. The domain usage proxy is
// repository count normalized so ten or more repos saturate at 1.0.
func (e *DecisionEngine) domainRings(byDomain map[DomainTag]TemporalProfile) map[DomainTag]DomainRing {
	out := make(map[DomainTag]DomainRing, len(byDomain))
	for domain, p := range byDomain {
		usageProxy := float64(p.TotalRepos) / 10.0
		if usageProxy > 1 {
			usageProxy = 1
		}
		// Per-domain profiles have no nested breakdown, so only the
		// global ladder applies here.
		ring, confidence := e.decideRing(usageProxy, p.RecencyScore, p.ActivityScore, p.Trend, nil)
		out[domain] = DomainRing{
			Ring:          ring,
			Confidence:    confidence,
			TotalRepos:    p.TotalRepos,
			RecentRepos:   p.RecentRepos,
			ActivityScore: p.ActivityScore,
			Trend:         p.Trend,
		}
	}
	return out
}
