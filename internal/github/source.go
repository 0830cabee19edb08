package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"techradar/internal/extract"
	"techradar/internal/fetcher"

	"github.com/google/go-github/v81/github"
)

const readmeSnippetLen = 500

// Source adapts the GitHub REST API to the fetcher's Source contract and
// lists scan populations. One Source serves one run.
type Source struct {
	client *Client
}

func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// ListPopulation returns every repository of an organization, falling back
// to a user account when the organization does not exist. Results are in
// the host's listing order, which the orchestrator preserves.
func (s *Source) ListPopulation(ctx context.Context, name string) ([]*github.Repository, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ListPopulation: nil context")
	}
	if s == nil || s.client == nil || s.client.Client == nil {
		return nil, fmt.Errorf("ListPopulation: nil GitHub client (use NewSource)")
	}
	if name == "" {
		return nil, fmt.Errorf("ListPopulation: population name is required")
	}

	repos, err := s.listOrg(ctx, name)
	if err == nil {
		return repos, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}

	repos, userErr := s.listUser(ctx, name)
	if userErr != nil {
		if isNotFound(userErr) {
			return nil, fmt.Errorf("population %s: %w", name, fetcher.ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", name, userErr)
	}
	return repos, nil
}

func (s *Source) listOrg(ctx context.Context, org string) ([]*github.Repository, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.Repository
	for {
		page, resp, err := s.client.Client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (s *Source) listUser(ctx context.Context, user string) ([]*github.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.Repository
	for {
		page, resp, err := s.client.Client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// FetchSignals gathers one repository's raw signals: metadata, language
// breakdown, root tree entries, declared manifest contents, and a README
// snippet. Missing optional files are benign; a missing repository maps to
// fetcher.ErrNotFound.
func (s *Source) FetchSignals(ctx context.Context, owner, name string) (*extract.Signals, error) {
	if ctx == nil {
		return nil, fmt.Errorf("FetchSignals: nil context")
	}
	if s == nil || s.client == nil || s.client.Client == nil {
		return nil, fmt.Errorf("FetchSignals: nil GitHub client (use NewSource)")
	}

	repo, _, err := s.client.Client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("repo %s/%s: %w", owner, name, fetcher.ErrNotFound)
		}
		return nil, fmt.Errorf("get repo %s/%s: %w", owner, name, err)
	}

	signals := &extract.Signals{
		RepoName:    repo.GetName(),
		Description: repo.GetDescription(),
		Topics:      repo.Topics,
		Files:       make(map[string][]byte),
	}

	if languages, _, err := s.client.Client.Repositories.ListLanguages(ctx, owner, name); err == nil {
		signals.Languages = languages
	}

	rootDirs := make(map[string]bool)
	_, entries, _, err := s.client.Client.Repositories.GetContents(ctx, owner, name, "", nil)
	if err == nil {
		for _, entry := range entries {
			if entry.GetType() == "dir" {
				signals.Paths = append(signals.Paths, entry.GetName()+"/")
				rootDirs[entry.GetName()] = true
			} else {
				signals.Paths = append(signals.Paths, entry.GetName())
			}
		}
	}

	// Workflows live below the root listing; record the directory as a path
	// so the GitHub Actions detector sees it.
	if rootDirs[".github"] {
		if _, wf, _, err := s.client.Client.Repositories.GetContents(ctx, owner, name, ".github/workflows", nil); err == nil && len(wf) > 0 {
			signals.Paths = append(signals.Paths, ".github/workflows/")
		}
	}

	present := make(map[string]bool, len(signals.Paths))
	for _, p := range signals.Paths {
		present[strings.TrimSuffix(p, "/")] = true
	}
	for _, manifest := range extract.ManifestPaths() {
		if strings.HasSuffix(manifest, "/") {
			continue // presence-only declarations carry no contents
		}
		if !present[manifest] {
			continue
		}
		file, _, _, err := s.client.Client.Repositories.GetContents(ctx, owner, name, manifest, nil)
		if err != nil || file == nil {
			continue
		}
		content, err := file.GetContent()
		if err != nil {
			continue
		}
		signals.Files[manifest] = []byte(content)
	}

	if readme, _, err := s.client.Client.Repositories.GetReadme(ctx, owner, name, nil); err == nil {
		if content, err := readme.GetContent(); err == nil {
			if len(content) > readmeSnippetLen {
				content = content[:readmeSnippetLen]
			}
			signals.ReadmeSnippet = content
		}
	}

	return signals, nil
}

// Quota reports the core REST quota snapshot.
func (s *Source) Quota(ctx context.Context) (int, time.Time, error) {
	if s == nil || s.client == nil || s.client.Client == nil {
		return 0, time.Time{}, fmt.Errorf("Quota: nil GitHub client (use NewSource)")
	}
	limits, _, err := s.client.Client.RateLimit.Get(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit query: %w", err)
	}
	core := limits.GetCore()
	if core == nil {
		return 0, time.Time{}, fmt.Errorf("rate limit query: no core bucket in response")
	}
	return core.Remaining, core.Reset.Time, nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
