package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "techradar",
	Short: "Build a technology radar from an organization's GitHub repositories",
	Long: `TechRadar scans GitHub organizations via API, detects the technologies each
repository uses, and classifies them into radar rings (Adopt, Trial, Assess,
Hold) backed by usage and activity evidence.

TechRadar is read-only: it never mutates repository state.

Examples:
	# Show available commands and global flags
	techradar --help

	# Scan an organization and write the radar document
	techradar scan --org my-org --output radar.json

	# Resume an interrupted scan
	techradar scan --org my-org --resume

	# Print build info
	techradar version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every GitHub API call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
