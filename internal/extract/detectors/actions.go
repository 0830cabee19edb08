package detectors

import (
	"techradar/internal/extract"
	"techradar/internal/radar"
)

type GitHubActionsDetector struct{}

func (d *GitHubActionsDetector) ID() string { return "github-actions" }

func (d *GitHubActionsDetector) Manifests() []string {
	return []string{".github/workflows/"}
}

func (d *GitHubActionsDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	if s.HasPath(".github/workflows/") {
		out.Add(radar.CategoryTools, "GitHub Actions")
	}
}

func init() {
	extract.Register(&GitHubActionsDetector{})
}
