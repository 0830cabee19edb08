package detectors

import (
	"strings"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

var goModules = map[string]struct {
	category radar.Category
	name     string
}{
	"github.com/gin-gonic/gin":   {radar.CategoryFrameworks, "Gin"},
	"github.com/labstack/echo":   {radar.CategoryFrameworks, "Echo"},
	"github.com/gofiber/fiber":   {radar.CategoryFrameworks, "Fiber"},
	"google.golang.org/grpc":     {radar.CategoryFrameworks, "gRPC"},
	"github.com/spf13/cobra":     {radar.CategoryTools, "Cobra"},
	"github.com/stretchr/testify": {radar.CategoryTools, "Testify"},
}

type GoDetector struct{}

func (d *GoDetector) ID() string { return "go" }

func (d *GoDetector) Manifests() []string { return []string{"go.mod"} }

func (d *GoDetector) Detect(s *extract.Signals, out radar.ObservationSet) {
	content, ok := s.File("go.mod")
	if !ok {
		if s.HasPath("go.mod") {
			out.Add(radar.CategoryLanguages, "Go")
		}
		return
	}
	out.Add(radar.CategoryLanguages, "Go")

	text := string(content)
	for module, tech := range goModules {
		if strings.Contains(text, module) {
			out.Add(tech.category, tech.name)
		}
	}
}

func init() {
	extract.Register(&GoDetector{})
}
