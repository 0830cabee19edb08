// Package extract turns raw repository signals into technology observations.
// Detectors are pure: they read already-fetched signals and MUST NOT call
// remote APIs.
package extract

import (
	"sort"
	"strings"

	"techradar/internal/radar"
)

// Signals is the per-repository raw material gathered by the fetcher. A nil
// map or slice means the corresponding signal was unavailable.
type Signals struct {
	RepoName    string
	Description string

	// Languages is the byte count per language as reported by the host.
	Languages map[string]int

	// Paths are top-level tree entries (directories carry a trailing slash).
	Paths []string

	// Files maps manifest paths to their raw contents. Only paths a detector
	// declared via Manifests are fetched.
	Files map[string][]byte

	Topics        []string
	ReadmeSnippet string
}

// File returns the fetched contents of path.
func (s *Signals) File(path string) ([]byte, bool) {
	if s == nil || s.Files == nil {
		return nil, false
	}
	content, ok := s.Files[path]
	return content, ok
}

// HasPath reports whether path exists at the repository root. A trailing
// slash on the argument matches a directory entry.
func (s *Signals) HasPath(path string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.Paths {
		if p == path || strings.TrimSuffix(p, "/") == strings.TrimSuffix(path, "/") {
			return true
		}
	}
	return false
}

// Detector recognizes one ecosystem from its manifest files.
type Detector interface {
	ID() string

	// Manifests declares the file paths this detector wants fetched. A path
	// ending in "/" requests only presence of the directory, not contents.
	Manifests() []string

	// Detect appends observations to out. Best effort: malformed manifests
	// are skipped silently.
	Detect(s *Signals, out radar.ObservationSet)
}

// Run applies every registered detector plus the host's language report.
func Run(s *Signals) radar.ObservationSet {
	out := radar.NewObservationSet()
	if s == nil {
		return out
	}
	for lang := range s.Languages {
		out.Add(radar.CategoryLanguages, lang)
	}
	for _, d := range List() {
		d.Detect(s, out)
	}
	return out
}

// ManifestPaths returns the union of every registered detector's manifest
// declarations, sorted, for the fetcher to request in one pass.
func ManifestPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range List() {
		for _, path := range d.Manifests() {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	sort.Strings(out)
	return out
}
