package detectors

import (
	"strings"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

// JavaDetector recognizes Maven and Gradle builds. Spring Boot is the only
// framework worth special-casing from the manifest text.
type JavaDetector struct{}

func (d *JavaDetector) ID() string { return "java" }

func (d *JavaDetector) Manifests() []string {
	return []string{"pom.xml", "build.gradle", "build.gradle.kts"}
}

func (d *JavaDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	if s.HasPath("pom.xml") {
		out.Add(radar.CategoryLanguages, "Java")
		out.Add(radar.CategoryTools, "Maven")
		if content, ok := s.File("pom.xml"); ok && strings.Contains(string(content), "spring-boot") {
			out.Add(radar.CategoryFrameworks, "Spring Boot")
		}
	}
	for _, gradle := range []string{"build.gradle", "build.gradle.kts"} {
		if s.HasPath(gradle) {
			out.Add(radar.CategoryLanguages, "Java")
			out.Add(radar.CategoryTools, "Gradle")
			if content, ok := s.File(gradle); ok && strings.Contains(string(content), "spring-boot") {
				out.Add(radar.CategoryFrameworks, "Spring Boot")
			}
		}
	}
}

func init() {
	extract.Register(&JavaDetector{})
}
