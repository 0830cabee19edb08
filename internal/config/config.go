package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect scan
	// behavior, keep the CLI flags in internal/cli/scan.go in sync.
	Targeting  Targeting  `yaml:"targeting"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Breaker    Breaker    `yaml:"breaker"`
	Checkpoint Checkpoint `yaml:"checkpoint"`
	Oracle     Oracle     `yaml:"oracle"`
	Decision   Decision   `yaml:"decision"`
	Curation   Curation   `yaml:"curation"`
	Output     Output     `yaml:"output"`
	Runtime    Runtime    `yaml:"runtime"`
}

// Duration accepts Go duration strings ("90s", "2h") and bare integers
// (seconds) in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration value at line %d", value.Line)
	}
	// A bare YAML integer also decodes as a string, so the unit-less form
	// must be recognized before ParseDuration rejects it.
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Targeting struct {
	// Orgs lists the GitHub organization or user accounts to scan
	// (name or URL; see --org). Repeated flags and comma-separated
	// lists are both accepted.
	Orgs []string `yaml:"organizations"`

	// Exclude filters repositories by name using Go path.Match style (see --exclude).
	// If a pattern contains '/', it matches OWNER/REPO; otherwise it matches repo name.
	Exclude []string `yaml:"exclude_repos"`

	// MinStars skips repositories below this star count. 0 disables the filter.
	MinStars int `yaml:"min_stars"`

	// Archived controls how archived repos are handled (see --archived).
	// Allowed values: include, exclude, only.
	Archived string `yaml:"archived"`

	// Forks controls how forked repos are handled (see --forks).
	// Allowed values: include, exclude, only.
	Forks string `yaml:"forks"`

	// Visibility filters repositories by visibility (see --visibility).
	// Allowed values: public, private, internal, all.
	Visibility string `yaml:"visibility"`

	// MaxRepos limits how many repositories to scan per run (see --limit).
	// 0 means unlimited.
	MaxRepos int `yaml:"max_repos"`

	// DryRun resolves the repo set and prints the scan plan without scanning (see --dry-run).
	DryRun bool `yaml:"-"`
}

type RateLimit struct {
	// MaxPerMinute is the local sliding-window ceiling on GitHub calls.
	MaxPerMinute int `yaml:"max_per_minute"`

	// SafetyThreshold suspends scanning when the remote quota drops below it.
	SafetyThreshold int `yaml:"safety_threshold"`

	// QuotaCacheTTL bounds how often the remote quota endpoint is probed.
	QuotaCacheTTL Duration `yaml:"quota_cache_ttl"`
}

type Breaker struct {
	// FailureThreshold is the consecutive-failure count that opens the breaker.
	FailureThreshold int `yaml:"failure_threshold"`

	// Cooldown is how long the breaker stays open before one recovery trial.
	Cooldown Duration `yaml:"cooldown"`
}

type Checkpoint struct {
	// Path is the checkpoint file location.
	Path string `yaml:"path"`

	// SaveInterval persists the checkpoint every Nth scanned repository.
	SaveInterval int `yaml:"save_interval"`

	// Disabled turns checkpoint persistence off entirely.
	Disabled bool `yaml:"disabled"`

	// Resume loads the existing checkpoint and skips completed repositories
	// (see --resume). Mutually exclusive with Fresh.
	Resume bool `yaml:"-"`

	// Fresh clears any existing checkpoint before scanning (see --fresh).
	Fresh bool `yaml:"-"`
}

type Oracle struct {
	// Model names the chat model used for judgment calls.
	Model string `yaml:"model"`

	// MaxTokens caps the classification answer size.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for classification questions.
	Temperature float32 `yaml:"temperature"`

	// Attempts bounds retries per question (transport and malformed-payload
	// failures both count).
	Attempts int `yaml:"attempts"`

	// RequestsPerMinute paces oracle calls.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Disabled runs the whole pipeline on the offline stub oracle.
	Disabled bool `yaml:"disabled"`
}

type Decision struct {
	// MinSampleSize is the repository count treated as an adequate sample
	// when scoring signal clarity.
	MinSampleSize int `yaml:"min_sample_size"`

	// ReviewConfidenceFloor escalates decisions below this confidence for
	// human review.
	ReviewConfidenceFloor float64 `yaml:"review_confidence_floor"`
}

type Curation struct {
	// AlwaysInclude lists technology names kept without any oracle call.
	AlwaysInclude []string `yaml:"always_include"`

	// MinRepos auto-keeps any technology used by at least this many
	// repositories.
	MinRepos int `yaml:"min_repos"`

	// MinReposByDomain lowers the keep threshold for technologies
	// concentrated in the named domain.
	MinReposByDomain map[string]int `yaml:"min_repos_by_domain"`

	// DetectDuplicates toggles the duplicate-merge phase.
	DetectDuplicates *bool `yaml:"detect_duplicates"`

	// DetectHierarchies toggles the parent/child consolidation phase.
	DetectHierarchies *bool `yaml:"detect_hierarchies"`

	// FlagDeprecated toggles the deprecation annotation phase.
	FlagDeprecated *bool `yaml:"flag_deprecated"`
}

type Output struct {
	// Out writes the radar document to this path (see --output).
	Out string `yaml:"path"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `yaml:"-"`
}

type Runtime struct {
	// Timeout is the global scan timeout for the run. Flag-only (see
	// --timeout). Must be > 0.
	Timeout time.Duration `yaml:"-"`

	// Verbose enables more detailed diagnostics, including per-call API logs.
	Verbose bool `yaml:"-"`
}

func New() *Config {
	return &Config{
		Targeting: Targeting{
			Visibility: "all",
			Archived:   "exclude",
			Forks:      "exclude",
		},
		RateLimit: RateLimit{
			MaxPerMinute:    25,
			SafetyThreshold: 100,
			QuotaCacheTTL:   Duration(10 * time.Second),
		},
		Breaker: Breaker{
			FailureThreshold: 5,
			Cooldown:         Duration(60 * time.Second),
		},
		Checkpoint: Checkpoint{
			Path:         "checkpoint.json",
			SaveInterval: 10,
		},
		Oracle: Oracle{
			Model:             "gpt-4o-mini",
			MaxTokens:         1000,
			Temperature:       0.3,
			Attempts:          3,
			RequestsPerMinute: 60,
		},
		Decision: Decision{
			MinSampleSize:         5,
			ReviewConfidenceFloor: 0.75,
		},
		Curation: Curation{
			MinRepos: 5,
		},
		Output: Output{
			Out: "radar.json",
		},
		Runtime: Runtime{
			Timeout: 2 * time.Hour,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is an
// error; pass an empty path to use pure defaults. LoadEnv is separate so
// tests can construct configs without touching the process environment.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv pulls a .env file (if present) into the process environment so
// GITHUB_TOKEN and OPENAI_API_KEY can live next to the config file.
func LoadEnv() {
	_ = godotenv.Load()
}

// OpenAIKey returns the oracle API key from the environment, empty when
// the oracle should run in stub mode.
func OpenAIKey() string {
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Orgs = splitCommaList(c.Targeting.Orgs)
	c.Targeting.Exclude = splitCommaList(c.Targeting.Exclude)

	for i, org := range c.Targeting.Orgs {
		normalized, err := normalizeAccountSelector(org)
		if err != nil {
			return fmt.Errorf("invalid --org value: %w", err)
		}
		c.Targeting.Orgs[i] = normalized
	}

	if len(c.Targeting.Orgs) == 0 {
		return errors.New("at least one organization must be provided (--org or config organizations)")
	}

	c.Targeting.Visibility = normalizeEnumValue(c.Targeting.Visibility)
	if c.Targeting.Visibility == "" {
		c.Targeting.Visibility = "all"
	}
	if c.Targeting.Visibility != "public" && c.Targeting.Visibility != "private" && c.Targeting.Visibility != "internal" && c.Targeting.Visibility != "all" {
		return fmt.Errorf("unsupported --visibility: %s (must be one of: public, private, internal, all)", c.Targeting.Visibility)
	}

	c.Targeting.Archived = normalizeEnumValue(c.Targeting.Archived)
	if c.Targeting.Archived == "" {
		c.Targeting.Archived = "exclude"
	}
	if c.Targeting.Archived != "include" && c.Targeting.Archived != "exclude" && c.Targeting.Archived != "only" {
		return fmt.Errorf("unsupported --archived: %s (must be one of: include, exclude, only)", c.Targeting.Archived)
	}

	c.Targeting.Forks = normalizeEnumValue(c.Targeting.Forks)
	if c.Targeting.Forks == "" {
		c.Targeting.Forks = "exclude"
	}
	if c.Targeting.Forks != "include" && c.Targeting.Forks != "exclude" && c.Targeting.Forks != "only" {
		return fmt.Errorf("unsupported --forks: %s (must be one of: include, exclude, only)", c.Targeting.Forks)
	}

	if c.Targeting.MinStars < 0 {
		return errors.New("min_stars must be >= 0")
	}
	if c.Targeting.MaxRepos < 0 {
		return errors.New("--limit must be >= 0")
	}

	if c.RateLimit.MaxPerMinute <= 0 {
		return errors.New("rate_limit.max_per_minute must be >= 1")
	}
	if c.RateLimit.SafetyThreshold < 0 {
		return errors.New("rate_limit.safety_threshold must be >= 0")
	}

	if c.Breaker.FailureThreshold <= 0 {
		return errors.New("breaker.failure_threshold must be >= 1")
	}
	if c.Breaker.Cooldown <= 0 {
		return errors.New("breaker.cooldown must be > 0")
	}

	if c.Checkpoint.SaveInterval <= 0 {
		return errors.New("checkpoint.save_interval must be >= 1")
	}
	if c.Checkpoint.Resume && c.Checkpoint.Fresh {
		return errors.New("--resume and --fresh are mutually exclusive")
	}
	if !c.Checkpoint.Disabled && c.Checkpoint.Path == "" {
		return errors.New("checkpoint.path must be set unless checkpoints are disabled")
	}

	if c.Oracle.Attempts <= 0 {
		return errors.New("oracle.attempts must be >= 1")
	}
	if c.Oracle.RequestsPerMinute <= 0 {
		return errors.New("oracle.requests_per_minute must be >= 1")
	}

	if c.Decision.MinSampleSize <= 0 {
		return errors.New("decision.min_sample_size must be >= 1")
	}
	if c.Decision.ReviewConfidenceFloor < 0 || c.Decision.ReviewConfidenceFloor > 1 {
		return errors.New("decision.review_confidence_floor must be in [0,1]")
	}

	if c.Curation.MinRepos <= 0 {
		return errors.New("curation.min_repos must be >= 1")
	}

	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeAccountSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	// Accept a raw account name, or a GitHub URL like:
	//   https://github.com/<name>
	//   https://github.com/orgs/<name>
	//   https://github.com/users/<name>
	//   github.com/<name>
	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", fmt.Errorf("%q", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) == 0 {
			return "", fmt.Errorf("%q", raw)
		}
		if parts[0] == "orgs" || parts[0] == "users" {
			if len(parts) < 2 {
				return "", fmt.Errorf("%q", raw)
			}
			return parts[1], nil
		}
		return parts[0], nil
	}

	// Basic sanity: reject obvious repo-like inputs.
	if strings.Contains(raw, "/") {
		return "", fmt.Errorf("%q", raw)
	}
	return raw, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
