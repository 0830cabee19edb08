package detectors

import (
	"techradar/internal/extract"
	"techradar/internal/radar"
)

type DockerDetector struct{}

func (d *DockerDetector) ID() string { return "docker" }

func (d *DockerDetector) Manifests() []string {
	return []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"}
}

func (d *DockerDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	if s.HasPath("Dockerfile") {
		out.Add(radar.CategoryPlatforms, "Docker")
	}
	if s.HasPath("docker-compose.yml") || s.HasPath("docker-compose.yaml") {
		out.Add(radar.CategoryPlatforms, "Docker")
		out.Add(radar.CategoryTools, "Docker Compose")
	}
}

func init() {
	extract.Register(&DockerDetector{})
}
