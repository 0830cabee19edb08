package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"techradar/internal/fetcher"

	// Detector registrations populate extract.ManifestPaths, which decides
	// which manifest contents FetchSignals requests.
	_ "techradar/internal/extract/detectors"
)

func newTestSource(t *testing.T, mux *http.ServeMux) *Source {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), "test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client.Client.BaseURL = base
	client.Client.UploadURL = base
	return NewSource(client)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestFetchSignals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1, "name": "api", "full_name": "acme/api", "description": "payments API", "topics": ["payments"]}`)
	})
	mux.HandleFunc("/repos/acme/api/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Go": 12000, "Makefile": 300}`)
	})
	mux.HandleFunc("/repos/acme/api/contents/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"type": "file", "name": "go.mod", "path": "go.mod"},
			{"type": "file", "name": "Dockerfile", "path": "Dockerfile"},
			{"type": "dir", "name": "internal", "path": "internal"}
		]`)
	})
	mux.HandleFunc("/repos/acme/api/contents/go.mod", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type": "file", "name": "go.mod", "path": "go.mod", "encoding": "base64", "content": %q}`, b64("module api\n"))
	})
	mux.HandleFunc("/repos/acme/api/readme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type": "file", "name": "README.md", "path": "README.md", "encoding": "base64", "content": %q}`, b64("# api\nPayments service."))
	})

	source := newTestSource(t, mux)
	signals, err := source.FetchSignals(context.Background(), "acme", "api")
	if err != nil {
		t.Fatalf("FetchSignals: %v", err)
	}

	if signals.RepoName != "api" || signals.Description != "payments API" {
		t.Fatalf("metadata mismatch: %+v", signals)
	}
	if signals.Languages["Go"] != 12000 {
		t.Fatalf("languages missing: %v", signals.Languages)
	}
	if !signals.HasPath("Dockerfile") || !signals.HasPath("internal/") {
		t.Fatalf("paths missing: %v", signals.Paths)
	}
	if content, ok := signals.File("go.mod"); !ok || string(content) != "module api\n" {
		t.Fatalf("go.mod content missing: %q ok=%v", content, ok)
	}
	if _, ok := signals.File("package.json"); ok {
		t.Fatalf("absent manifests must not be fetched")
	}
	if signals.ReadmeSnippet == "" {
		t.Fatalf("readme snippet missing")
	}
}

func TestFetchSignalsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	source := newTestSource(t, mux)
	_, err := source.FetchSignals(context.Background(), "acme", "gone")
	if !errors.Is(err, fetcher.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPopulationFallsBackToUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "name": "hello", "full_name": "octocat/hello"}]`)
	})

	source := newTestSource(t, mux)
	repos, err := source.ListPopulation(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("ListPopulation: %v", err)
	}
	if len(repos) != 1 || repos[0].GetFullName() != "octocat/hello" {
		t.Fatalf("unexpected repos: %v", repos)
	}
}

func TestListPopulationPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 2, "name": "b", "full_name": "acme/b"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/orgs/acme/repos?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"id": 1, "name": "a", "full_name": "acme/a"}]`)
	})

	source := newTestSource(t, mux)
	repos, err := source.ListPopulation(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ListPopulation: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected 2 repos across pages, got %d", len(repos))
	}
}

func TestQuota(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources": {"core": {"limit": 5000, "remaining": 4200, "reset": 1750000000}}}`)
	})

	source := newTestSource(t, mux)
	remaining, reset, err := source.Quota(context.Background())
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if remaining != 4200 {
		t.Fatalf("remaining = %d, want 4200", remaining)
	}
	if reset.IsZero() {
		t.Fatalf("reset time missing")
	}
}
