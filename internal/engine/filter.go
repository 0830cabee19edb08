package engine

import (
	"path"
	"strings"

	"techradar/internal/config"
)

// FilterRepos applies the targeting policies to a discovered population.
// Order is preserved; the MaxRepos cap truncates after all predicates.
func FilterRepos(repos []RepositoryRef, cfg *config.Config) []RepositoryRef {
	if cfg == nil {
		panic("engine.FilterRepos: cfg must not be nil")
	}

	var filtered []RepositoryRef

	visibility := strings.TrimSpace(cfg.Targeting.Visibility)
	if visibility == "" {
		visibility = "all"
	}
	archivedPolicy := strings.TrimSpace(cfg.Targeting.Archived)
	if archivedPolicy == "" {
		archivedPolicy = "exclude"
	}
	forksPolicy := strings.TrimSpace(cfg.Targeting.Forks)
	if forksPolicy == "" {
		forksPolicy = "exclude"
	}

	for _, r := range repos {
		// Visibility
		if visibility != "all" && visibility != repoVisibility(r) {
			continue
		}

		// Archived
		if archivedPolicy == "exclude" && r.Repo.GetArchived() {
			continue
		}
		if archivedPolicy == "only" && !r.Repo.GetArchived() {
			continue
		}

		// Forks
		if forksPolicy == "exclude" && r.Repo.GetFork() {
			continue
		}
		if forksPolicy == "only" && !r.Repo.GetFork() {
			continue
		}

		// Stars
		if cfg.Targeting.MinStars > 0 && r.Repo.GetStargazersCount() < cfg.Targeting.MinStars {
			continue
		}

		// Exclude patterns (name matching)
		if len(cfg.Targeting.Exclude) > 0 && matchesAnyPattern(cfg.Targeting.Exclude, r.FullName(), r.Name) {
			continue
		}

		filtered = append(filtered, r)
	}

	if cfg.Targeting.MaxRepos > 0 && len(filtered) > cfg.Targeting.MaxRepos {
		filtered = filtered[:cfg.Targeting.MaxRepos]
	}

	return filtered
}

func repoVisibility(r RepositoryRef) string {
	if v := strings.TrimSpace(r.Repo.GetVisibility()); v != "" {
		return v
	}
	if r.Repo.GetPrivate() {
		return "private"
	}
	return "public"
}

func matchesAnyPattern(patterns []string, fullName, repoName string) bool {
	for _, p := range patterns {
		if matchPattern(p, fullName, repoName) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, fullName, repoName string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	// If the pattern includes an owner component (contains '/'), match against full name.
	// Otherwise match against repo name only so patterns like "*-service" work with org scope.
	if strings.Contains(pattern, "/") {
		matched, _ := path.Match(pattern, fullName)
		return matched
	}
	matched, _ := path.Match(pattern, repoName)
	return matched
}
