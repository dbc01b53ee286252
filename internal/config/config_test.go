package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/codi/internal/state"
)

// clearEnv isolates a test from the developer's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CODI_AGENTIC_ENABLED", "")
	t.Setenv("CODI_WORKSPACE", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "CODI_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workspace != "." {
		t.Errorf("expected workspace '.', got %q", cfg.Workspace)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("expected info/text logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Agentic.Enabled {
		t.Error("expected agentic to be disabled by default")
	}
	if cfg.Agentic.Reasoner != ReasonerRules {
		t.Errorf("expected reasoner %q, got %q", ReasonerRules, cfg.Agentic.Reasoner)
	}
	if cfg.Timeouts.Capability != 30*time.Second {
		t.Errorf("expected capability timeout 30s, got %v", cfg.Timeouts.Capability)
	}
	if cfg.Timeouts.Reasoning != 60*time.Second {
		t.Errorf("expected reasoning timeout 60s, got %v", cfg.Timeouts.Reasoning)
	}
	if cfg.Executor.MaxParallelIntents != 4 {
		t.Errorf("expected 4 parallel intents, got %d", cfg.Executor.MaxParallelIntents)
	}
	if cfg.Storage.Driver != state.DriverSQLite {
		t.Errorf("expected driver %q, got %q", state.DriverSQLite, cfg.Storage.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
workspace: /srv/work
logging:
  level: debug
  format: json
agentic:
  enabled: true
  force: true
  reasoner: anthropic
  kill_file: /tmp/codi.kill
anthropic:
  api_key: test-key
  model: claude-haiku-4-5-20251001
  use_bedrock: true
  aws_region: us-west-2
timeouts:
  capability: 5s
  reasoning: 2m
executor:
  max_parallel_intents: 2
storage:
  driver: sqlite3
  path: /tmp/codi.db
guard:
  config: /etc/codi/guard.yaml
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Workspace != "/srv/work" {
		t.Errorf("expected workspace '/srv/work', got %q", cfg.Workspace)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("expected debug/json logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if !cfg.Agentic.Enabled || !cfg.Agentic.Force {
		t.Error("expected agentic enabled and forced")
	}
	if cfg.Agentic.Reasoner != ReasonerAnthropic {
		t.Errorf("expected reasoner anthropic, got %q", cfg.Agentic.Reasoner)
	}
	if cfg.Agentic.KillFile != "/tmp/codi.kill" {
		t.Errorf("expected kill file '/tmp/codi.kill', got %q", cfg.Agentic.KillFile)
	}
	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}
	if !cfg.Anthropic.UseBedrock || cfg.Anthropic.AWSRegion != "us-west-2" {
		t.Errorf("expected bedrock in us-west-2, got %+v", cfg.Anthropic)
	}
	if cfg.Timeouts.Capability != 5*time.Second {
		t.Errorf("expected capability timeout 5s, got %v", cfg.Timeouts.Capability)
	}
	if cfg.Timeouts.Reasoning != 2*time.Minute {
		t.Errorf("expected reasoning timeout 2m, got %v", cfg.Timeouts.Reasoning)
	}
	if cfg.Executor.MaxParallelIntents != 2 {
		t.Errorf("expected 2 parallel intents, got %d", cfg.Executor.MaxParallelIntents)
	}
	if cfg.Storage.Driver != state.DriverSQLite3 || cfg.StoragePath() != "/tmp/codi.db" {
		t.Errorf("expected sqlite3 at /tmp/codi.db, got %s at %s", cfg.Storage.Driver, cfg.StoragePath())
	}
	if cfg.Guard.Config != "/etc/codi/guard.yaml" {
		t.Errorf("expected guard config path, got %q", cfg.Guard.Config)
	}
}

func TestLoadFromPathDefaultsFillGaps(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromPath(writeConfig(t, "workspace: /only\n"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Workspace != "/only" {
		t.Errorf("expected workspace '/only', got %q", cfg.Workspace)
	}
	if cfg.Agentic.Reasoner != ReasonerRules {
		t.Errorf("expected default reasoner, got %q", cfg.Agentic.Reasoner)
	}
	if cfg.Timeouts.Capability != 30*time.Second {
		t.Errorf("expected default capability timeout, got %v", cfg.Timeouts.Capability)
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromPathRejectsUnknownValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{"reasoner", "agentic:\n  reasoner: oracle\n"},
		{"driver", "storage:\n  driver: postgres\n"},
		{"log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromPath(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	t.Setenv("CODI_AGENTIC_ENABLED", "true")
	t.Setenv("CODI_WORKSPACE", "/from/env")

	cfg, err := LoadFromPath(writeConfig(t, "workspace: /from/file\nanthropic:\n  api_key: file-key\n"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env" {
		t.Errorf("expected env api key, got %q", cfg.Anthropic.APIKey)
	}
	if !cfg.Agentic.Enabled {
		t.Error("expected CODI_AGENTIC_ENABLED to enable agentic")
	}
	if cfg.Workspace != "/from/env" {
		t.Errorf("expected env workspace, got %q", cfg.Workspace)
	}
}

func TestLoadProjectConfigOverridesUser(t *testing.T) {
	clearEnv(t)

	userDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "codi")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	user := "workspace: /user\nlogging:\n  level: warn\n"
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, ProjectConfigName), []byte("workspace: /project\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workspace != "/project" {
		t.Errorf("expected project workspace, got %q", cfg.Workspace)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected user log level 'warn', got %q", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	cfg.Workspace = "/saved"
	cfg.Agentic.Enabled = true
	cfg.Timeouts.Reasoning = 90 * time.Second
	cfg.Executor.MaxParallelIntents = 8

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Workspace != "/saved" || !loaded.Agentic.Enabled {
		t.Errorf("saved values not loaded back: %+v", loaded)
	}
	if loaded.Timeouts.Reasoning != 90*time.Second {
		t.Errorf("expected reasoning timeout 90s, got %v", loaded.Timeouts.Reasoning)
	}
	if loaded.Executor.MaxParallelIntents != 8 {
		t.Errorf("expected 8 parallel intents, got %d", loaded.Executor.MaxParallelIntents)
	}
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	cfg.Executor.MaxParallelIntents = 0
	cfg.Timeouts.Capability = 2 * time.Second

	p := cfg.Policy()
	if p.Executor.MaxParallelIntents != 1 {
		t.Errorf("expected invalid parallelism clamped to 1, got %d", p.Executor.MaxParallelIntents)
	}
	if p.Timeouts.Capability != 2*time.Second {
		t.Errorf("expected capability timeout 2s, got %v", p.Timeouts.Capability)
	}
	if len(p.Planner.CreationVerbs) == 0 {
		t.Error("expected default planner keywords")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	if got := expandEnv("${TEST_VAR}"); got != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", got)
	}
	if got := expandEnv("prefix-${TEST_VAR}-suffix"); got != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", got)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	if dir := getUserConfigDir(); dir != "/custom/config/codi" {
		t.Errorf("expected %q, got %q", "/custom/config/codi", dir)
	}
}
