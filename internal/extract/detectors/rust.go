package detectors

import (
	"techradar/internal/extract"
	"techradar/internal/radar"
)

type RustDetector struct{}

func (d *RustDetector) ID() string { return "rust" }

func (d *RustDetector) Manifests() []string { return []string{"Cargo.toml"} }

func (d *RustDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	if s.HasPath("Cargo.toml") {
		out.Add(radar.CategoryLanguages, "Rust")
	}
}

func init() {
	extract.Register(&RustDetector{})
}
