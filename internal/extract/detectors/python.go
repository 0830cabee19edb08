package detectors

import (
	"strings"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

type pythonMapping struct {
	fragment string
	category radar.Category
	name     string
}

// Ordered: the first matching fragment wins, so torch must not shadow
// pytorch-lightning style names and pytest must be checked before "test".
var pythonMappings = []pythonMapping{
	{"django", radar.CategoryFrameworks, "Django"},
	{"flask", radar.CategoryFrameworks, "Flask"},
	{"fastapi", radar.CategoryFrameworks, "FastAPI"},
	{"streamlit", radar.CategoryFrameworks, "Streamlit"},
	{"pytorch", radar.CategoryFrameworks, "PyTorch"},
	{"torch", radar.CategoryFrameworks, "PyTorch"},
	{"tensorflow", radar.CategoryFrameworks, "TensorFlow"},
	{"pytest", radar.CategoryTools, "pytest"},
	{"black", radar.CategoryTools, "Black"},
	{"mypy", radar.CategoryTools, "mypy"},
}

// PythonDetector reads requirements.txt and notices Pipenv and Poetry
// manifests by presence alone.
type PythonDetector struct{}

func (d *PythonDetector) ID() string { return "python" }

func (d *PythonDetector) Manifests() []string {
	return []string{"requirements.txt", "Pipfile", "pyproject.toml"}
}

func (d *PythonDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	if content, ok := s.File("requirements.txt"); ok {
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.ToLower(strings.TrimSpace(line))
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			pkg := strings.TrimSpace(splitRequirement(line))
			for _, m := range pythonMappings {
				if strings.Contains(pkg, m.fragment) {
					out.Add(m.category, m.name)
					break
				}
			}
		}
	}

	if s.HasPath("Pipfile") {
		out.Add(radar.CategoryTools, "Pipenv")
	}
	if s.HasPath("pyproject.toml") {
		out.Add(radar.CategoryTools, "Poetry")
	}
}

// splitRequirement strips version constraints from a requirement line.
func splitRequirement(line string) string {
	if idx := strings.IndexAny(line, "=<>!["); idx >= 0 {
		return line[:idx]
	}
	return line
}

func init() {
	extract.Register(&PythonDetector{})
}
