package output

import (
	"strings"
	"testing"

	"techradar/internal/radar"

	"github.com/fatih/color"
)

func sampleDocument() *radar.Document {
	return &radar.Document{
		TotalRepos: 10,
		Decisions: []radar.Decision{
			{
				Name:         "Terraform",
				Quadrant:     radar.QuadrantTools,
				Ring:         radar.RingAdopt,
				Confidence:   0.85,
				RepoCount:    6,
				UsagePercent: 60,
			},
			{
				Name:         "CoffeeScript",
				Quadrant:     radar.QuadrantLanguages,
				Ring:         radar.RingHold,
				Confidence:   0.4,
				RepoCount:    1,
				UsagePercent: 10,
				NeedsReview:  true,
				ReviewReason: "low confidence",
			},
		},
		Curation: radar.CurationReport{Evaluated: 3, Kept: 2, Removed: 1},
		Summary:  radar.ScanSummary{ReposScanned: 10, APICalls: 42},
	}
}

func TestConsoleSinkRendersDocument(t *testing.T) {
	color.NoColor = true

	var buf strings.Builder
	s := NewConsoleSink(&buf)
	if err := s.Write(sampleDocument()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Tech Radar (2 technologies across 10 repositories)",
		"Languages & Frameworks",
		"Tools",
		"Terraform",
		"Adopt",
		"[review: low confidence]",
		"3 evaluated, 2 kept, 1 removed",
		"42 API calls",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleSinkIgnoresEvents(t *testing.T) {
	var buf strings.Builder
	s := NewConsoleSink(&buf)
	if err := s.Write(Event{Type: "run.started"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("events must not render: %q", buf.String())
	}
}
