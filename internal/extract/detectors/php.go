package detectors

import (
	"encoding/json"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

type PHPDetector struct{}

func (d *PHPDetector) ID() string { return "php" }

func (d *PHPDetector) Manifests() []string { return []string{"composer.json"} }

func (d *PHPDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	content, ok := s.File("composer.json")
	if !ok {
		return
	}
	var manifest struct {
		Require map[string]string `json:"require"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return
	}
	out.Add(radar.CategoryLanguages, "PHP")
	out.Add(radar.CategoryTools, "Composer")
	if _, ok := manifest.Require["laravel/framework"]; ok {
		out.Add(radar.CategoryFrameworks, "Laravel")
	}
	if _, ok := manifest.Require["symfony/symfony"]; ok {
		out.Add(radar.CategoryFrameworks, "Symfony")
	}
}

func init() {
	extract.Register(&PHPDetector{})
}
