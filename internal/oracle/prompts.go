package oracle

import (
	"fmt"
	"sort"
	"strings"

	"techradar/internal/radar"
)

const classifySystemPrompt = "You are a technology expert helping to classify technologies for a tech radar. Provide strategic, industry-informed classifications."

func classifyPrompt(q radar.TechQuestion) string {
	return fmt.Sprintf(`Classify the technology %q for a tech radar.

**Our Usage:**
- Found in %d repositories (%.1f%%)
- Recent adoption: %d repos in last 6 months
- Active repos: %d out of %d
- Trend: %s
- Suggested ring: %s

**Quadrants:**
0 = Techniques (practices, methodologies like CI/CD, DevOps practices)
1 = Tools (development tools like Maven, GitHub Actions, Jest)
2 = Platforms (infrastructure like Docker, AWS, Kubernetes, databases)
3 = Languages & Frameworks (like Java, React, Python, Kotlin)

**Rings (STRATEGIC, not just usage-based):**
0 = ADOPT: Mature, proven, industry standard. Recommend for production.
1 = TRIAL: Promising, worth pursuing. Try in new projects.
2 = ASSESS: Emerging, experimental. Worth exploring.
3 = HOLD: Legacy, deprecated, or better alternatives exist.

**Your Task:**
Provide JSON with:
1. "quadrant": The appropriate quadrant (0-3)
2. "description": 1-2 sentences explaining what it is and why it's in %s
3. "ai_confidence": "high", "medium", or "low"

**Consider:**
- Industry standards (not just our usage)
- Technology maturity and ecosystem
- Better alternatives available?
- Is low usage due to being new or obsolete?

Respond with valid JSON only.`,
		q.Name,
		q.Profile.TotalRepos, q.UsagePercent,
		q.Profile.RecentRepos,
		q.Profile.ActiveRepos, q.Profile.TotalRepos,
		q.Profile.Trend,
		q.SuggestedRing,
		q.SuggestedRing)
}

const domainSystemPrompt = `You are an expert at analyzing software repositories and determining their engineering domain.

Analyze the provided repository information and classify it into one of these domains:
- mobile: Mobile applications (iOS, Android, cross-platform)
- backend: Backend services, APIs, microservices
- frontend: Web frontends, SPAs, user interfaces
- infrastructure: Infrastructure as code, DevOps, deployment
- data: Data pipelines, ETL, analytics, warehousing
- ml: Machine learning, AI models, inference services
- library: Shared libraries, SDKs, frameworks
- tooling: Developer tools, CLI applications, scripts

Return ONLY a valid JSON object with this exact structure:
{
  "domain": "backend",
  "confidence": 0.95,
  "reasoning": "Brief explanation of why this classification was chosen"
}

Rules:
- confidence is 0.0 to 1.0
- reasoning should be 1-2 sentences`

func domainPrompt(q radar.DomainQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", q.RepoName)
	if q.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s\n", q.Description)
	}
	if len(q.TopPaths) > 0 {
		paths := q.TopPaths
		if len(paths) > 15 {
			paths = paths[:15]
		}
		fmt.Fprintf(&b, "\nTop-Level Paths: %s\n", strings.Join(paths, ", "))
	}
	if q.Technologies.Len() > 0 {
		b.WriteString("\nTechnologies:\n")
		for _, category := range radar.Categories() {
			set := q.Technologies[category]
			if len(set) == 0 {
				continue
			}
			names := make([]string, 0, len(set))
			for name := range set {
				names = append(names, name)
			}
			sort.Strings(names)
			if len(names) > 5 {
				names = names[:5]
			}
			fmt.Fprintf(&b, "  %s: %s\n", category, strings.Join(names, ", "))
		}
	}
	return b.String()
}

const strategicSystemPrompt = "You are curating an enterprise tech radar. Judge strategic value honestly and answer with JSON only."

func strategicPrompt(q radar.StrategicQuestion) string {
	return fmt.Sprintf(`Evaluate if this technology has strategic value for an enterprise tech radar.

**Technology**: %s
**Usage**: %d repos (%.1f%%)
**Category**: %s
**Ring**: %s

**Consider**:
1. **Architectural Impact**: Affects system design? (YES = high value)
2. **Team Scope**: Multi-team or single-dev convenience? (Multi = higher value)
3. **Decision Weight**: Leadership cares? (YES = high value)
4. **Industry Recognition**: Well-known or obscure? (Well-known = higher value)

**Examples**:
- GraphQL -> HIGH (API architecture choice)
- Kubernetes -> HIGH (infrastructure platform)
- Jest -> MEDIUM (testing standard)
- tqdm -> LOW (progress bar utility)
- curl -> LOW (OS utility)

**Respond in JSON**:
{
  "strategic_value": "high/medium/low",
  "reason": "One sentence explanation",
  "confidence": "high/medium/low"
}`,
		q.Name, q.RepoCount, q.UsagePercent, q.Quadrant, q.Ring)
}

const duplicateSystemPrompt = "You deduplicate technology names for a tech radar. Answer with JSON only."

func duplicatePrompt(names []string) string {
	return fmt.Sprintf(`Are these the same technology with different names?

**Names**: %s

**Examples**:
- SAME: ["AWS ECR", "Amazon ECR", "ECR"]
- SAME: ["ESLint", "eslint"]
- DIFFERENT: ["React", "React Native"]
- DIFFERENT: ["AWS", "AWS CLI"]

**Respond in JSON**:
{
  "are_duplicates": true/false,
  "canonical_name": "Official standard name",
  "merge_candidates": ["names to merge into canonical"],
  "reason": "Brief explanation"
}`,
		strings.Join(names, ", "))
}

const hierarchySystemPrompt = "You consolidate technology hierarchies for a tech radar. Answer with JSON only."

func hierarchyPrompt(parent string, children []string) string {
	return fmt.Sprintf(`Is this a parent-child relationship where children are sub-features?

**Parent**: %s
**Potential Children**: %s

**Examples**:
- CONSOLIDATE: Firebase -> [Firebase Crashlytics, Firebase Performance]
- CONSOLIDATE: AWS -> [AWS CloudFront, AWS Elastic Beanstalk]
- KEEP SEPARATE: Docker -> [Docker Compose] (both strategic)
- KEEP SEPARATE: React -> [React Native] (different platforms)

**Respond in JSON**:
{
  "should_consolidate": true/false,
  "reason": "Brief explanation"
}`,
		parent, strings.Join(children, ", "))
}
