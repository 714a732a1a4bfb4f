// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// DefaultPath is where Load looks for the config file when no path is given.
const DefaultPath = "commitwatch.yaml"

// defaultCheckInterval matches the original behavior of checking every
// 30 minutes when the interval is not configured.
const defaultCheckInterval = 30 * time.Minute

// Config holds the application configuration.
type Config struct {
	GitHubToken         string
	SlackToken          string
	Repositories        []model.RepositoryRef
	NotificationTargets []string
	CheckInterval       time.Duration
	ListenAddr          string
	StatePath           string
}

// fileConfig is the YAML document shape.
type fileConfig struct {
	GitHubToken          string      `yaml:"github_token"`
	SlackToken           string      `yaml:"slack_token"`
	Repositories         []repoEntry `yaml:"repositories"`
	NotificationTargets  []string    `yaml:"notification_targets"`
	CheckIntervalMinutes int         `yaml:"check_interval_minutes"`
	ListenAddr           string      `yaml:"listen_addr"`
	StatePath            string      `yaml:"state_path"`
}

// repoEntry accepts both configured forms of a repository: a plain
// "owner/name" string, or a mapping with owner, repo, and optional branch.
type repoEntry struct {
	ref model.RepositoryRef
}

// UnmarshalYAML implements yaml.Unmarshaler for the two entry forms.
// A malformed scalar entry yields an empty ref, which the check cycle skips
// with a log rather than failing configuration load.
func (e *repoEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var fullName string
		if err := node.Decode(&fullName); err != nil {
			return err
		}
		ref, err := model.ParseRepositoryRef(fullName)
		if err != nil {
			e.ref = model.RepositoryRef{}
			return nil
		}
		e.ref = ref
		return nil

	case yaml.MappingNode:
		var m struct {
			Owner  string `yaml:"owner"`
			Repo   string `yaml:"repo"`
			Branch string `yaml:"branch"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		e.ref = model.RepositoryRef{Owner: m.Owner, Name: m.Repo, Branch: m.Branch}
		return nil

	default:
		return fmt.Errorf("repository entry must be a string or a mapping (line %d)", node.Line)
	}
}

// Load reads the config file at path and applies environment overrides.
// A missing file is not an error: the daemon can run with env-only
// configuration (no repositories means cycles are no-ops).
// Env overrides: COMMITWATCH_GITHUB_TOKEN, COMMITWATCH_SLACK_TOKEN,
// COMMITWATCH_LISTEN_ADDR, COMMITWATCH_STATE_PATH.
func Load(path string) (*Config, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Env-only configuration.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{
		GitHubToken:         fc.GitHubToken,
		SlackToken:          fc.SlackToken,
		NotificationTargets: fc.NotificationTargets,
		CheckInterval:       defaultCheckInterval,
		ListenAddr:          "127.0.0.1:8080",
		StatePath:           "commitwatch.json",
	}

	for _, entry := range fc.Repositories {
		cfg.Repositories = append(cfg.Repositories, entry.ref)
	}

	if fc.CheckIntervalMinutes > 0 {
		cfg.CheckInterval = time.Duration(fc.CheckIntervalMinutes) * time.Minute
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.StatePath != "" {
		cfg.StatePath = fc.StatePath
	}

	if v := os.Getenv("COMMITWATCH_GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v := os.Getenv("COMMITWATCH_SLACK_TOKEN"); v != "" {
		cfg.SlackToken = v
	}
	if v := os.Getenv("COMMITWATCH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("COMMITWATCH_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}

	return cfg, nil
}
