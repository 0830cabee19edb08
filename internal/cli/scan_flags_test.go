package cli

import (
	"testing"

	"techradar/internal/config"
	"techradar/internal/flags"

	"github.com/spf13/cobra"
)

func TestScanFlagsBindToConfig(t *testing.T) {
	t.Cleanup(func() { cfg = config.New() })

	for name, value := range map[string]string{
		flags.FlagOrg:      "acme,octo",
		flags.FlagExclude:  "*-archive",
		flags.FlagMinStars: "3",
		flags.FlagLimit:    "50",
		flags.FlagArchived: "include",
		flags.FlagResume:   "true",
		flags.FlagNoOracle: "true",
		flags.FlagOut:      "out/radar.json",
	} {
		if err := scanCmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Targeting.Orgs) != 2 || cfg.Targeting.Orgs[0] != "acme" {
		t.Fatalf("orgs = %v", cfg.Targeting.Orgs)
	}
	if cfg.Targeting.MinStars != 3 || cfg.Targeting.MaxRepos != 50 {
		t.Fatalf("targeting = %+v", cfg.Targeting)
	}
	if cfg.Targeting.Archived != "include" {
		t.Fatalf("archived = %q", cfg.Targeting.Archived)
	}
	if !cfg.Checkpoint.Resume || !cfg.Oracle.Disabled {
		t.Fatalf("checkpoint/oracle flags not bound: %+v %+v", cfg.Checkpoint, cfg.Oracle)
	}
	if cfg.Output.Out != "out/radar.json" {
		t.Fatalf("output = %q", cfg.Output.Out)
	}
}

func TestApplyFlagOverridesPrefersExplicitFlags(t *testing.T) {
	t.Cleanup(func() { cfg = config.New() })
	cfg = config.New()

	// A standalone command keeps this test independent of scanCmd's shared
	// flag state.
	cmd := &cobra.Command{Use: "scan"}
	cmd.Flags().IntVar(&cfg.Targeting.MinStars, flags.FlagMinStars, 0, "")
	cmd.Flags().StringSliceVar(&cfg.Targeting.Orgs, flags.FlagOrg, nil, "")
	if err := cmd.Flags().Set(flags.FlagMinStars, "7"); err != nil {
		t.Fatalf("set --min-stars: %v", err)
	}

	fileCfg := config.New()
	fileCfg.Targeting.MinStars = 1
	fileCfg.Targeting.Orgs = []string{"from-file"}

	applyFlagOverrides(cmd, fileCfg)

	if fileCfg.Targeting.MinStars != 7 {
		t.Fatalf("explicit flag must override file value, got %d", fileCfg.Targeting.MinStars)
	}
	if len(fileCfg.Targeting.Orgs) != 1 || fileCfg.Targeting.Orgs[0] != "from-file" {
		t.Fatalf("unset flag must keep file value, got %v", fileCfg.Targeting.Orgs)
	}
}
