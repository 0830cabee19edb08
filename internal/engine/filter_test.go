package engine

import (
	"testing"

	"techradar/internal/config"

	"github.com/google/go-github/v81/github"
)

func ref(owner, name string, mutate ...func(*github.Repository)) RepositoryRef {
	repo := &github.Repository{
		Name:     github.Ptr(name),
		FullName: github.Ptr(owner + "/" + name),
		Owner:    &github.User{Login: github.Ptr(owner)},
	}
	for _, m := range mutate {
		m(repo)
	}
	return RepositoryRef{Owner: owner, Name: name, Repo: repo}
}

func archived(r *github.Repository) { r.Archived = github.Ptr(true) }
func forked(r *github.Repository)  { r.Fork = github.Ptr(true) }
func private(r *github.Repository) { r.Private = github.Ptr(true) }

func stars(n int) func(*github.Repository) {
	return func(r *github.Repository) { r.StargazersCount = github.Ptr(n) }
}

func names(refs []RepositoryRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.FullName())
	}
	return out
}

func TestFilterReposDefaultsExcludeArchivedAndForks(t *testing.T) {
	cfg := config.New()
	repos := []RepositoryRef{
		ref("acme", "live"),
		ref("acme", "museum", archived),
		ref("acme", "mirror", forked),
	}

	got := FilterRepos(repos, cfg)
	if len(got) != 1 || got[0].Name != "live" {
		t.Fatalf("filtered = %v", names(got))
	}
}

func TestFilterReposArchivedOnly(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.Archived = "only"
	repos := []RepositoryRef{
		ref("acme", "live"),
		ref("acme", "museum", archived),
	}

	got := FilterRepos(repos, cfg)
	if len(got) != 1 || got[0].Name != "museum" {
		t.Fatalf("filtered = %v", names(got))
	}
}

func TestFilterReposVisibility(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.Visibility = "private"
	repos := []RepositoryRef{
		ref("acme", "open"),
		ref("acme", "secret", private),
	}

	got := FilterRepos(repos, cfg)
	if len(got) != 1 || got[0].Name != "secret" {
		t.Fatalf("filtered = %v", names(got))
	}
}

func TestFilterReposMinStars(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.MinStars = 10
	repos := []RepositoryRef{
		ref("acme", "popular", stars(25)),
		ref("acme", "obscure", stars(2)),
	}

	got := FilterRepos(repos, cfg)
	if len(got) != 1 || got[0].Name != "popular" {
		t.Fatalf("filtered = %v", names(got))
	}
}

func TestFilterReposExcludePatterns(t *testing.T) {
	// Patterns with '/' match the full name; bare patterns match the repo
	// name regardless of owner.
	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{
			name:    "repo name glob",
			exclude: []string{"*-archive"},
			want:    []string{"acme/api"},
		},
		{
			name:    "full name glob scopes to owner",
			exclude: []string{"other/*"},
			want:    []string{"acme/api", "acme/api-archive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Targeting.Exclude = tt.exclude
			repos := []RepositoryRef{
				ref("acme", "api"),
				ref("acme", "api-archive"),
				ref("other", "api-archive"),
			}
			got := names(FilterRepos(repos, cfg))
			if len(got) != len(tt.want) {
				t.Fatalf("filtered = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("filtered = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFilterReposMaxReposTruncates(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.MaxRepos = 2
	repos := []RepositoryRef{
		ref("acme", "a"),
		ref("acme", "b"),
		ref("acme", "c"),
	}

	got := FilterRepos(repos, cfg)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("filtered = %v", names(got))
	}
}
