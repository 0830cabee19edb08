package detectors

import (
	"encoding/json"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

// nodeFrameworks maps npm package names to radar framework names. Scoped
// variants are listed explicitly.
var nodeFrameworks = map[string]string{
	"react":         "React",
	"next":          "Next.js",
	"vue":           "Vue.js",
	"angular":       "Angular",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"express":       "Express.js",
	"nestjs":        "NestJS",
	"@nestjs/core":  "NestJS",
	"tailwindcss":   "Tailwind CSS",
}

var nodeTools = map[string]string{
	"typescript":       "TypeScript",
	"webpack":          "Webpack",
	"vite":             "Vite",
	"jest":             "Jest",
	"playwright":       "Playwright",
	"@playwright/test": "Playwright",
	"eslint":           "ESLint",
	"prettier":         "Prettier",
}

type NodeDetector struct{}

func (d *NodeDetector) ID() string { return "node" }

func (d *NodeDetector) Manifests() []string { return []string{"package.json"} }

func (d *NodeDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	content, ok := s.File("package.json")
	if !ok {
		return
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return
	}

	deps := make(map[string]bool, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		deps[name] = true
	}
	for name := range manifest.DevDependencies {
		deps[name] = true
	}

	for pkg, name := range nodeFrameworks {
		if deps[pkg] {
			out.Add(radar.CategoryFrameworks, name)
		}
	}
	for pkg, name := range nodeTools {
		if deps[pkg] {
			out.Add(radar.CategoryTools, name)
		}
	}
}

func init() {
	extract.Register(&NodeDetector{})
}
