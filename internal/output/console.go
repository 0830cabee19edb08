package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"techradar/internal/radar"

	"github.com/fatih/color"
)

var ringColors = map[radar.Ring]*color.Color{
	radar.RingAdopt:  color.New(color.FgGreen, color.Bold),
	radar.RingTrial:  color.New(color.FgCyan),
	radar.RingAssess: color.New(color.FgYellow),
	radar.RingHold:   color.New(color.FgRed),
}

// ConsoleSink renders the final radar document as a quadrant-grouped
// summary for humans. Lifecycle events are ignored; the engine reports
// progress on stderr separately.
type ConsoleSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w}
}

func (s *ConsoleSink) Write(v any) error {
	doc, ok := v.(*radar.Document)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(doc)
}

func (s *ConsoleSink) render(doc *radar.Document) error {
	printf := func(format string, args ...any) error {
		_, err := fmt.Fprintf(s.writer, format, args...)
		return err
	}

	if err := printf("Tech Radar (%d technologies across %d repositories)\n",
		len(doc.Decisions), doc.TotalRepos); err != nil {
		return err
	}

	byQuadrant := make(map[radar.Quadrant][]radar.Decision)
	for _, d := range doc.Decisions {
		byQuadrant[d.Quadrant] = append(byQuadrant[d.Quadrant], d)
	}

	for _, quadrant := range []radar.Quadrant{
		radar.QuadrantLanguages,
		radar.QuadrantTools,
		radar.QuadrantPlatforms,
		radar.QuadrantTechniques,
	} {
		decisions := byQuadrant[quadrant]
		if len(decisions) == 0 {
			continue
		}
		sort.Slice(decisions, func(i, j int) bool {
			if decisions[i].Ring != decisions[j].Ring {
				return ringOrder(decisions[i].Ring) < ringOrder(decisions[j].Ring)
			}
			return decisions[i].Name < decisions[j].Name
		})

		if err := printf("\n%s\n", quadrant); err != nil {
			return err
		}
		for _, d := range decisions {
			ring := string(d.Ring)
			if c, ok := ringColors[d.Ring]; ok {
				ring = c.Sprint(ring)
			}
			review := ""
			if d.NeedsReview {
				review = color.YellowString(" [review: %s]", d.ReviewReason)
			}
			deprecated := ""
			if d.Deprecated {
				deprecated = color.RedString(" [deprecated -> %s]", d.Replacement)
			}
			if err := printf("  %-8s %-28s %3d repos  %5.1f%%  %.2f%s%s\n",
				ring, d.Name, d.RepoCount, d.UsagePercent, d.Confidence, review, deprecated); err != nil {
				return err
			}
		}
	}

	if err := printf("\nCuration: %d evaluated, %d kept, %d removed, %d merged, %d consolidated (%d oracle calls)\n",
		doc.Curation.Evaluated, doc.Curation.Kept, doc.Curation.Removed,
		doc.Curation.Merged, doc.Curation.Consolidated, doc.Curation.OracleCalls); err != nil {
		return err
	}
	if err := printf("Scan: %d scanned, %d skipped, %d errors, %d API calls\n",
		doc.Summary.ReposScanned, doc.Summary.ReposSkipped, doc.Summary.Errors, doc.Summary.APICalls); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func ringOrder(r radar.Ring) int {
	switch r {
	case radar.RingAdopt:
		return 0
	case radar.RingTrial:
		return 1
	case radar.RingAssess:
		return 2
	default:
		return 3
	}
}

func (s *ConsoleSink) Close() error { return nil }
