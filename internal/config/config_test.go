package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// allConfigKeys lists every COMMITWATCH_ env var that Load() reads.
var allConfigKeys = []string{
	"COMMITWATCH_GITHUB_TOKEN",
	"COMMITWATCH_SLACK_TOKEN",
	"COMMITWATCH_LISTEN_ADDR",
	"COMMITWATCH_STATE_PATH",
}

// isolateConfigEnv unsets all COMMITWATCH_ env vars so tests don't inherit
// values from the host environment.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// writeConfig writes a temp YAML config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commitwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	isolateConfigEnv(t)

	path := writeConfig(t, `
github_token: ghp_file
slack_token: xoxb_file
repositories:
  - acme/widgets
  - owner: acme
    repo: gadgets
    branch: develop
notification_targets:
  - C0123456789
  - C9876543210
check_interval_minutes: 5
listen_addr: "0.0.0.0:9090"
state_path: /var/lib/commitwatch/state.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_file", cfg.GitHubToken)
	assert.Equal(t, "xoxb_file", cfg.SlackToken)
	assert.Equal(t, []model.RepositoryRef{
		{Owner: "acme", Name: "widgets"},
		{Owner: "acme", Name: "gadgets", Branch: "develop"},
	}, cfg.Repositories)
	assert.Equal(t, []string{"C0123456789", "C9876543210"}, cfg.NotificationTargets)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/commitwatch/state.json", cfg.StatePath)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	path := writeConfig(t, `
repositories:
  - acme/widgets
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "commitwatch.json", cfg.StatePath)
	assert.Empty(t, cfg.GitHubToken)
	assert.Empty(t, cfg.NotificationTargets)
}

func TestLoad_MissingFile(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Repositories)
	assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("COMMITWATCH_GITHUB_TOKEN", "ghp_env")
	t.Setenv("COMMITWATCH_SLACK_TOKEN", "xoxb_env")
	t.Setenv("COMMITWATCH_LISTEN_ADDR", "127.0.0.1:7070")
	t.Setenv("COMMITWATCH_STATE_PATH", "/tmp/state.json")

	path := writeConfig(t, `
github_token: ghp_file
slack_token: xoxb_file
listen_addr: "0.0.0.0:9090"
state_path: other.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_env", cfg.GitHubToken)
	assert.Equal(t, "xoxb_env", cfg.SlackToken)
	assert.Equal(t, "127.0.0.1:7070", cfg.ListenAddr)
	assert.Equal(t, "/tmp/state.json", cfg.StatePath)
}

func TestLoad_MalformedScalarEntryYieldsInvalidRef(t *testing.T) {
	isolateConfigEnv(t)

	path := writeConfig(t, `
repositories:
  - justaname
  - acme/widgets
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Repositories, 2)

	// A malformed entry is kept as an invalid ref and skipped at cycle
	// time rather than failing the whole configuration.
	assert.False(t, cfg.Repositories[0].IsValid())
	assert.True(t, cfg.Repositories[1].IsValid())
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateConfigEnv(t)

	path := writeConfig(t, "repositories: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RepositoryEntryWrongKind(t *testing.T) {
	isolateConfigEnv(t)

	path := writeConfig(t, `
repositories:
  - [acme, widgets]
`)

	_, err := Load(path)
	require.Error(t, err)
}
