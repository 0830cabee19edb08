package detectors

import (
	"strings"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

type RubyDetector struct{}

func (d *RubyDetector) ID() string { return "ruby" }

func (d *RubyDetector) Manifests() []string { return []string{"Gemfile"} }

func (d *RubyDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	content, ok := s.File("Gemfile")
	if !ok {
		if s.HasPath("Gemfile") {
			out.Add(radar.CategoryLanguages, "Ruby")
		}
		return
	}
	out.Add(radar.CategoryLanguages, "Ruby")
	if strings.Contains(strings.ToLower(string(content)), "rails") {
		out.Add(radar.CategoryFrameworks, "Ruby on Rails")
	}
}

func init() {
	extract.Register(&RubyDetector{})
}
