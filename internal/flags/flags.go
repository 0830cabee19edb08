package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that need to reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringSliceVar(&cfg.Targeting.Orgs, flags.FlagOrg, nil, "...")
//	arg := "--" + flags.FlagOrg
const (
	// Targeting
	FlagOrg        = "org"
	FlagExclude    = "exclude"
	FlagMinStars   = "min-stars"
	FlagVisibility = "visibility"
	FlagArchived   = "archived"
	FlagForks      = "forks"
	FlagLimit      = "limit"
	FlagDryRun     = "dry-run"

	// Config and checkpoints
	FlagConfig = "config"
	FlagResume = "resume"
	FlagFresh  = "fresh"

	// Oracle
	FlagNoOracle = "no-oracle"

	// Output
	FlagOut       = "output"
	FlagNoConsole = "no-console"

	// Runtime
	FlagTimeout = "timeout"
)
