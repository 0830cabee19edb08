package radar

import "strings"

// Static keyword tables for the quadrant fallback used when the oracle is
// unavailable. Lookup data, not behavior: matching is substring on the
// lowercased technology name, checked in quadrant order below.
var (
	languageKeywords = []string{
		"python", "javascript", "typescript", "java", "go", "rust", "php",
		"ruby", "kotlin", "c++", "c#", "swift", "scala",
		"react", "vue", "angular", "django", "flask", "express", "next.js",
		"rails", "laravel", "spring",
	}
	platformKeywords = []string{
		"docker", "kubernetes", "aws", "azure", "gcp", "postgres", "mysql",
		"mongodb", "redis", "kafka", "terraform",
	}
	toolKeywords = []string{
		"webpack", "vite", "jest", "pytest", "eslint", "prettier", "github",
		"maven", "gradle", "jenkins",
	}
)

// InferQuadrant guesses a quadrant from the technology name alone. It is the
// deterministic fallback when no oracle opinion is available and must never
// fail; unmatched names land in Techniques.
func InferQuadrant(name string) Quadrant {
	lower := strings.ToLower(name)

	for _, kw := range languageKeywords {
		if strings.Contains(lower, kw) {
			return QuadrantLanguages
		}
	}
	for _, kw := range platformKeywords {
		if strings.Contains(lower, kw) {
			return QuadrantPlatforms
		}
	}
	for _, kw := range toolKeywords {
		if strings.Contains(lower, kw) {
			return QuadrantTools
		}
	}
	return QuadrantTechniques
}
