package detectors

import (
	"testing"

	"techradar/internal/extract"
	"techradar/internal/radar"
)

func TestNodeDetector(t *testing.T) {
	s := &extract.Signals{
		Paths: []string{"package.json", "src/"},
		Files: map[string][]byte{
			"package.json": []byte(`{
				"dependencies": {"react": "^18.0.0", "next": "14.1.0"},
				"devDependencies": {"typescript": "^5", "jest": "^29", "eslint": "8.0.0"}
			}`),
		},
	}

	out := radar.NewObservationSet()
	(&NodeDetector{}).Detect(s, out)

	for _, want := range []string{"React", "Next.js", "TypeScript", "Jest", "ESLint"} {
		if !out.Has(want) {
			t.Errorf("missing %s in %v", want, out.Names())
		}
	}
	if out.Has("Vue.js") {
		t.Errorf("Vue.js must not be detected")
	}
}

func TestNodeDetectorMalformedManifest(t *testing.T) {
	s := &extract.Signals{
		Files: map[string][]byte{"package.json": []byte("{not json")},
	}
	out := radar.NewObservationSet()
	(&NodeDetector{}).Detect(s, out)
	if out.Len() != 0 {
		t.Errorf("malformed manifest must yield no observations, got %v", out.Names())
	}
}

func TestPythonDetector(t *testing.T) {
	s := &extract.Signals{
		Paths: []string{"requirements.txt", "pyproject.toml"},
		Files: map[string][]byte{
			"requirements.txt": []byte("# deps\ndjango==4.2\npytest>=7\nfastapi\ntorch==2.1.0\n\n"),
		},
	}

	out := radar.NewObservationSet()
	(&PythonDetector{}).Detect(s, out)

	for _, want := range []string{"Django", "pytest", "FastAPI", "PyTorch", "Poetry"} {
		if !out.Has(want) {
			t.Errorf("missing %s in %v", want, out.Names())
		}
	}
	if out.Has("Pipenv") {
		t.Errorf("Pipenv requires a Pipfile")
	}
}

func TestPHPDetector(t *testing.T) {
	s := &extract.Signals{
		Files: map[string][]byte{
			"composer.json": []byte(`{"require": {"laravel/framework": "^10.0", "php": ">=8.1"}}`),
		},
	}
	out := radar.NewObservationSet()
	(&PHPDetector{}).Detect(s, out)

	for _, want := range []string{"PHP", "Composer", "Laravel"} {
		if !out.Has(want) {
			t.Errorf("missing %s in %v", want, out.Names())
		}
	}
	if out.Has("Symfony") {
		t.Errorf("Symfony must not be detected")
	}
}

func TestRubyDetectorRails(t *testing.T) {
	s := &extract.Signals{
		Paths: []string{"Gemfile"},
		Files: map[string][]byte{"Gemfile": []byte("source 'https://rubygems.org'\ngem 'rails', '~> 7.1'\n")},
	}
	out := radar.NewObservationSet()
	(&RubyDetector{}).Detect(s, out)
	if !out.Has("Ruby") || !out.Has("Ruby on Rails") {
		t.Errorf("Rails Gemfile must yield Ruby and Ruby on Rails, got %v", out.Names())
	}
}

func TestJavaDetector(t *testing.T) {
	s := &extract.Signals{
		Paths: []string{"pom.xml"},
		Files: map[string][]byte{"pom.xml": []byte("<project><artifactId>spring-boot-starter</artifactId></project>")},
	}
	out := radar.NewObservationSet()
	(&JavaDetector{}).Detect(s, out)
	for _, want := range []string{"Java", "Maven", "Spring Boot"} {
		if !out.Has(want) {
			t.Errorf("missing %s in %v", want, out.Names())
		}
	}
}

func TestGoDetector(t *testing.T) {
	s := &extract.Signals{
		Paths: []string{"go.mod"},
		Files: map[string][]byte{"go.mod": []byte("module example\n\nrequire github.com/spf13/cobra v1.8.0\n")},
	}
	out := radar.NewObservationSet()
	(&GoDetector{}).Detect(s, out)
	if !out.Has("Go") || !out.Has("Cobra") {
		t.Errorf("go.mod must yield Go and Cobra, got %v", out.Names())
	}
}

func TestDockerDetector(t *testing.T) {
	s := &extract.Signals{Paths: []string{"Dockerfile", "docker-compose.yml"}}
	out := radar.NewObservationSet()
	(&DockerDetector{}).Detect(s, out)
	if !out.Has("Docker") || !out.Has("Docker Compose") {
		t.Errorf("missing docker observations: %v", out.Names())
	}
}

func TestGitHubActionsDetector(t *testing.T) {
	s := &extract.Signals{Paths: []string{".github/workflows/"}}
	out := radar.NewObservationSet()
	(&GitHubActionsDetector{}).Detect(s, out)
	if !out.Has("GitHub Actions") {
		t.Errorf("workflow directory must yield GitHub Actions")
	}
}

func TestInfraDetector(t *testing.T) {
	s := &extract.Signals{Paths: []string{"main.tf", "k8s/", "src/"}}
	out := radar.NewObservationSet()
	(&InfraDetector{}).Detect(s, out)

	if !out.Has("Terraform") {
		t.Errorf("missing Terraform in %v", out.Names())
	}
	if !out.Has("Kubernetes") {
		t.Errorf("missing Kubernetes in %v", out.Names())
	}
}

func TestInfraDetectorNoSignals(t *testing.T) {
	s := &extract.Signals{Paths: []string{"src/", "README.md"}}
	out := radar.NewObservationSet()
	(&InfraDetector{}).Detect(s, out)
	if out.Len() != 0 {
		t.Errorf("unexpected detections: %v", out.Names())
	}
}
