package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"techradar/internal/checkpoint"
	"techradar/internal/config"
	"techradar/internal/engine"
	"techradar/internal/fetcher"
	gh "techradar/internal/github"
	"techradar/internal/oracle"
	"techradar/internal/radar"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"techradar/internal/flags"
)

var cfg = config.New()

var configPath string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan GitHub organizations and build the radar",
	Long: `Scan the repositories of one or more GitHub organizations, detect the
technologies they use, and classify each into a radar ring.

TechRadar is read-only: it reads repository metadata, manifests, and
languages via the GitHub API and never mutates state.

Authentication:
  TechRadar uses a GitHub access token. It prefers GITHUB_TOKEN (then
  GH_TOKEN), but can also reuse GitHub CLI authentication if the gh CLI is
  installed and logged in.
  AI classification additionally needs OPENAI_API_KEY; without it, or with
  --no-oracle, the deterministic fallback classifier is used. Both variables
  may live in a .env file next to the working directory.

Checkpoints:
  Progress is saved periodically. An interrupted scan (Ctrl-C) flushes the
  checkpoint; rerun with --resume to continue where it stopped, or --fresh
  to discard the checkpoint and start over.

Exit codes:
	0 = clean run
	1 = decisions escalated for review
	2 = partial failure (some repos errored or the scan was interrupted)
	3 = fatal error (scan did not run)

Examples:
  # Token via environment variable
  export GITHUB_TOKEN="<your_token>"
  techradar scan --org my-org --output radar.json

  # Resume after an interrupt
  techradar scan --org my-org --resume

  # Plan only
  techradar scan --org my-org --dry-run
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}
		os.Exit(runScan(cmd))
	},
}

func runScan(cmd *cobra.Command) int {
	config.LoadEnv()

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 3
		}
		applyFlagOverrides(cmd, loaded)
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	token, _, err := gh.ResolveAuthToken(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
		return 3
	}
	if strings.TrimSpace(token) == "" {
		fmt.Fprintln(os.Stderr, "Error: GitHub auth token is required (set GITHUB_TOKEN or run 'gh auth login')")
		return 3
	}

	client, err := gh.NewClient(ctx, token, gh.WithVerbose(cfg.Runtime.Verbose, nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create GitHub client: %v\n", err)
		return 3
	}
	source := gh.NewSource(client)

	governor := fetcher.NewGovernor(fetcher.GovernorConfig{
		MaxPerMinute:    cfg.RateLimit.MaxPerMinute,
		SafetyThreshold: cfg.RateLimit.SafetyThreshold,
		QuotaCacheTTL:   cfg.RateLimit.QuotaCacheTTL.Std(),
	}, source.Quota)
	breaker := fetcher.NewBreaker(fetcher.BreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Cooldown:         cfg.Breaker.Cooldown.Std(),
	})
	f := fetcher.NewFetcher(source, governor, breaker, fetcher.DefaultRetryConfig())

	store := checkpoint.Open(cfg.Checkpoint.Path, cfg.Checkpoint.Resume, checkpoint.Options{
		SaveInterval: cfg.Checkpoint.SaveInterval,
		Disabled:     cfg.Checkpoint.Disabled,
	})
	if cfg.Checkpoint.Fresh {
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to clear checkpoint: %v\n", err)
			return 3
		}
	}

	logf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	eng := engine.NewEngine(source, f, buildOracle(), store)
	if !cfg.Output.NoConsole {
		eng.Logf = logf
	}
	if cfg.Runtime.Verbose {
		governor.Logf = logf
	}

	return eng.Run(ctx, cfg)
}

// buildOracle selects the AI oracle when a key is available and the oracle
// is not disabled; otherwise the offline stub.
func buildOracle() radar.Oracle {
	key := config.OpenAIKey()
	if cfg.Oracle.Disabled || key == "" {
		if !cfg.Oracle.Disabled && !cfg.Output.NoConsole {
			fmt.Fprintln(os.Stderr, "OPENAI_API_KEY not set; using the offline fallback classifier.")
		}
		return oracle.NewStub()
	}
	return oracle.NewClient(key, oracle.Options{
		Model:             cfg.Oracle.Model,
		MaxTokens:         cfg.Oracle.MaxTokens,
		Temperature:       cfg.Oracle.Temperature,
		Attempts:          cfg.Oracle.Attempts,
		RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
	})
}

// applyFlagOverrides copies every explicitly set scan flag onto a config
// loaded from file, so the precedence is flags > file > defaults.
func applyFlagOverrides(cmd *cobra.Command, to *config.Config) {
	overrides := map[string]func(){
		flags.FlagOrg:        func() { to.Targeting.Orgs = cfg.Targeting.Orgs },
		flags.FlagExclude:    func() { to.Targeting.Exclude = cfg.Targeting.Exclude },
		flags.FlagMinStars:   func() { to.Targeting.MinStars = cfg.Targeting.MinStars },
		flags.FlagVisibility: func() { to.Targeting.Visibility = cfg.Targeting.Visibility },
		flags.FlagArchived:   func() { to.Targeting.Archived = cfg.Targeting.Archived },
		flags.FlagForks:      func() { to.Targeting.Forks = cfg.Targeting.Forks },
		flags.FlagLimit:      func() { to.Targeting.MaxRepos = cfg.Targeting.MaxRepos },
		flags.FlagDryRun:     func() { to.Targeting.DryRun = cfg.Targeting.DryRun },
		flags.FlagResume:     func() { to.Checkpoint.Resume = cfg.Checkpoint.Resume },
		flags.FlagFresh:      func() { to.Checkpoint.Fresh = cfg.Checkpoint.Fresh },
		flags.FlagNoOracle:   func() { to.Oracle.Disabled = cfg.Oracle.Disabled },
		flags.FlagOut:        func() { to.Output.Out = cfg.Output.Out },
		flags.FlagNoConsole:  func() { to.Output.NoConsole = cfg.Output.NoConsole },
		flags.FlagTimeout:    func() { to.Runtime.Timeout = cfg.Runtime.Timeout },
		"verbose":            func() { to.Runtime.Verbose = cfg.Runtime.Verbose },
	}
	visit := func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	}
	cmd.Flags().Visit(visit)
	cmd.InheritedFlags().Visit(visit)
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// MAINTAINER NOTE: If you add/change/remove any scan-affecting flags here,
	// keep applyFlagOverrides and the config field docs in sync.

	// Targeting
	scanCmd.Flags().StringSliceVar(&cfg.Targeting.Orgs, flags.FlagOrg, nil, "GitHub organization or user account(s) to scan (name or URL; repeatable; comma-separated accepted)")
	scanCmd.Flags().StringSliceVar(&cfg.Targeting.Exclude, flags.FlagExclude, nil, "Exclude pattern(s) (repeatable; comma-separated accepted). Go path.Match style; if pattern contains '/', matches OWNER/REPO, else matches repo name")
	scanCmd.Flags().IntVar(&cfg.Targeting.MinStars, flags.FlagMinStars, 0, "Skip repositories below this star count (0 = no filter)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Visibility, flags.FlagVisibility, "all", "Visibility filter: public|private|internal|all (default: all)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Archived, flags.FlagArchived, "exclude", "Archived repos policy: include|exclude|only (default: exclude)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Forks, flags.FlagForks, "exclude", "Forks policy: include|exclude|only (default: exclude)")
	scanCmd.Flags().IntVar(&cfg.Targeting.MaxRepos, flags.FlagLimit, 0, "Maximum number of repositories to scan (0 = unlimited)")
	scanCmd.Flags().BoolVar(&cfg.Targeting.DryRun, flags.FlagDryRun, false, "Resolve repos and print plan without scanning (still requires auth token)")

	// Config and checkpoints
	scanCmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "Read settings from this YAML file (flags override it)")
	scanCmd.Flags().BoolVar(&cfg.Checkpoint.Resume, flags.FlagResume, false, "Resume from the existing checkpoint, skipping completed repositories")
	scanCmd.Flags().BoolVar(&cfg.Checkpoint.Fresh, flags.FlagFresh, false, "Discard any existing checkpoint before scanning")

	// Oracle
	scanCmd.Flags().BoolVar(&cfg.Oracle.Disabled, flags.FlagNoOracle, false, "Skip AI classification and use the deterministic fallback only")

	// Output
	scanCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, cfg.Output.Out, "Write the radar document (JSON) to this path")
	scanCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output")

	// Runtime
	scanCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 2h)")
}
