package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/input"
)

// Defaults reproduce the links the Trilinos wiki table has always used
const (
	DefaultRepo          = "trilinos/Trilinos"
	DefaultDevelopBranch = "develop"
	DefaultMasterBranch  = "master"
	DefaultWIPLabel      = "AT: WIP"
	DefaultJiraURL       = "https://sems-atlassian-son.sandia.gov/jira/browse"
	DefaultJiraProject   = "TRILFRAME"
	DefaultJiraLabel     = "TrilFrame"
	DefaultConcurrency   = 4
)

// Config holds all configuration for the application
type Config struct {
	GitHubToken   string
	GitHubAPIURL  string // empty for github.com
	Repo          input.RepoRef
	DevelopBranch string
	MasterBranch  string
	WIPLabel      string
	Timezone      string
	NoTitle       bool
	Verbose       bool
	Quiet         bool
	Concurrency   int
	Jira          struct {
		BaseURL string
		Project string // issue key prefix, e.g. TRILFRAME
		Label   string // link text prefix, e.g. TrilFrame
	}
}

// Options carries the values supplied by CLI flags
type Options struct {
	NoTitle     bool
	Verbose     bool
	Quiet       bool
	Concurrency int
}

// Load creates a Config from a .env file, environment variables and CLI flags
func Load(opts Options) (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load() // Silently ignore if .env file doesn't exist
	return fromLookup(os.Getenv, opts)
}

// Defaults returns the configuration used when no environment is set
func Defaults() *Config {
	cfg, err := fromLookup(func(string) string { return "" }, Options{})
	if err != nil {
		panic("config: invalid defaults: " + err.Error())
	}
	return cfg
}

// fromLookup builds the config from an env lookup function
func fromLookup(getenv func(string) string, opts Options) (*Config, error) {
	cfg := &Config{
		GitHubToken:   getenv("GITHUB_TOKEN"),
		GitHubAPIURL:  strings.TrimSpace(getenv("GITHUB_API_URL")),
		DevelopBranch: envOr(getenv, "STATUS_DEVELOP_BRANCH", DefaultDevelopBranch),
		MasterBranch:  envOr(getenv, "STATUS_MASTER_BRANCH", DefaultMasterBranch),
		WIPLabel:      envOr(getenv, "STATUS_WIP_LABEL", DefaultWIPLabel),
		Timezone:      envOr(getenv, "STATUS_TIMEZONE", derive.DefaultTimezone),
		NoTitle:       opts.NoTitle,
		Verbose:       opts.Verbose && !opts.Quiet, // verbose is disabled if quiet is set
		Quiet:         opts.Quiet,
		Concurrency:   opts.Concurrency,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	repo, err := input.ParseRepoRef(envOr(getenv, "STATUS_REPO", DefaultRepo))
	if err != nil {
		return nil, fmt.Errorf("STATUS_REPO: %w", err)
	}
	if cfg.GitHubAPIURL != "" {
		// Table links must open on the server the counts come from
		repo.WebURL, err = input.WebURLFromAPI(cfg.GitHubAPIURL)
		if err != nil {
			return nil, fmt.Errorf("GITHUB_API_URL: %w", err)
		}
	}
	cfg.Repo = repo

	cfg.Jira.BaseURL = strings.TrimSuffix(envOr(getenv, "STATUS_JIRA_URL", DefaultJiraURL), "/")
	if u, err := url.Parse(cfg.Jira.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("STATUS_JIRA_URL must be an absolute URL, got %q", cfg.Jira.BaseURL)
	}
	cfg.Jira.Project = envOr(getenv, "STATUS_JIRA_PROJECT", DefaultJiraProject)
	cfg.Jira.Label = envOr(getenv, "STATUS_JIRA_LABEL", DefaultJiraLabel)

	if cfg.DevelopBranch == cfg.MasterBranch {
		return nil, errors.New("STATUS_DEVELOP_BRANCH and STATUS_MASTER_BRANCH must differ")
	}

	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
