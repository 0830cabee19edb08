package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"techradar/internal/checkpoint"
	"techradar/internal/config"
	"techradar/internal/fetcher"
	"techradar/internal/output"
	"techradar/internal/radar"
)

func exitCodeForRun(fatal, partial, review bool) int {
	// Exit code contract:
	// 0 = clean run
	// 1 = decisions escalated for review
	// 2 = partial failure (some repos errored or the scan was interrupted)
	// 3 = fatal error (scan did not run)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if review {
		return 1
	}
	return 0
}

// Engine wires the scan and analysis passes together. Construct with
// NewEngine; the exported fields are seams for tests.
type Engine struct {
	Source     Source
	Fetcher    *fetcher.Fetcher
	Oracle     radar.Oracle
	Checkpoint *checkpoint.Store

	// Logf receives progress diagnostics. Nil silences them.
	Logf func(format string, args ...any)

	now func() time.Time
}

func NewEngine(source Source, f *fetcher.Fetcher, oracle radar.Oracle, store *checkpoint.Store) *Engine {
	return &Engine{
		Source:     source,
		Fetcher:    f,
		Oracle:     oracle,
		Checkpoint: store,
	}
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

func maybeDryRun(cfg *config.Config, repos []RepositoryRef) bool {
	if !cfg.Targeting.DryRun {
		return false
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.FullName())
	}
	sort.Strings(names)
	fmt.Println("Resolved repositories:")
	for _, n := range names {
		fmt.Println(n)
	}
	return true
}

// Run executes the whole pipeline: discover, filter, scan, analyze, emit.
// The returned value is the process exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	if !cfg.Output.NoConsole {
		fmt.Fprintln(os.Stderr, "Discovering repositories...")
	}
	repos, err := DiscoverRepos(ctx, e.Source, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering repositories: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	repos = FilterRepos(repos, cfg)
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Found %d repositories.\n", len(repos))
	}

	if maybeDryRun(cfg, repos) {
		return 0
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	_ = outMgr.Write(output.Event{Type: "run.started", Repos: len(repos)})

	result, scanErr := e.Scan(ctx, cfg, repos)
	if result == nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", scanErr)
		return exitCodeForRun(true, false, false)
	}
	if result.Interrupted {
		// Checkpoint already flushed; a later --resume run picks up here.
		fmt.Fprintf(os.Stderr, "Scan interrupted after %d repositories; checkpoint saved.\n", result.Stats.ReposScanned)
		code := exitCodeForRun(false, true, false)
		_ = outMgr.Write(output.Event{Type: "run.finished", ExitCode: code})
		return code
	}

	doc := e.Analyze(ctx, cfg, result)
	_ = outMgr.Write(doc)

	partial := result.Stats.Errors > 0
	code := exitCodeForRun(false, partial, doc.NeedsReview() > 0)
	_ = outMgr.Write(output.Event{Type: "run.finished", ExitCode: code})
	return code
}
