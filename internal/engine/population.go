package engine

import (
	"context"
	"fmt"

	"techradar/internal/config"

	"github.com/google/go-github/v81/github"
)

// Source lists the repositories of one account. Implemented by
// github.Source; tests substitute fakes.
type Source interface {
	ListPopulation(ctx context.Context, name string) ([]*github.Repository, error)
}

// RepositoryRef is one repository in the scan population.
type RepositoryRef struct {
	Owner string
	Name  string
	Repo  *github.Repository
}

func (r RepositoryRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// DiscoverRepos resolves every configured population into a single ordered
// repository list. A repository named by overlapping populations appears
// once, at its first position.
func DiscoverRepos(ctx context.Context, source Source, cfg *config.Config) ([]RepositoryRef, error) {
	if ctx == nil {
		return nil, fmt.Errorf("DiscoverRepos: nil context")
	}
	if source == nil {
		return nil, fmt.Errorf("DiscoverRepos: nil source")
	}

	seen := make(map[string]bool)
	var refs []RepositoryRef
	for _, org := range cfg.Targeting.Orgs {
		repos, err := source.ListPopulation(ctx, org)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", org, err)
		}
		for _, repo := range repos {
			owner := repo.GetOwner().GetLogin()
			if owner == "" {
				owner = org
			}
			full := owner + "/" + repo.GetName()
			if seen[full] {
				continue
			}
			seen[full] = true
			refs = append(refs, RepositoryRef{Owner: owner, Name: repo.GetName(), Repo: repo})
		}
	}
	return refs, nil
}
