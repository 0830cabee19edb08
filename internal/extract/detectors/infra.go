package detectors

import (
	"strings"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

func init() {
	extract.Register(&InfraDetector{})
}

// InfraDetector recognizes infrastructure-as-code signals from the root
// tree alone: Terraform .tf files and Kubernetes manifest directories.
type InfraDetector struct{}

func (d *InfraDetector) ID() string { return "infra" }

func (d *InfraDetector) Manifests() []string {
	return nil // path signals only, no file contents needed
}

func (d *InfraDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	for _, p := range s.Paths {
		if strings.HasSuffix(p, ".tf") || p == "terraform/" {
			out.Add(radar.CategoryPlatforms, "Terraform")
			break
		}
	}
	for _, p := range s.Paths {
		if p == "k8s/" || p == "kubernetes/" {
			out.Add(radar.CategoryPlatforms, "Kubernetes")
			break
		}
	}
}
