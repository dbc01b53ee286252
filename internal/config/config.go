// Package config handles configuration loading and management for codi.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/state"
)

// Reasoner backends accepted by agentic.reasoner.
const (
	ReasonerAnthropic = "anthropic"
	ReasonerRules     = "rules"
	ReasonerNone      = "none"
)

// ProjectConfigName is the project-level override file.
const ProjectConfigName = ".codi.yaml"

// Config holds all configuration for codi.
type Config struct {
	Workspace string          `mapstructure:"workspace"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Agentic   AgenticConfig   `mapstructure:"agentic"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Guard     GuardConfig     `mapstructure:"guard"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// AgenticConfig holds agentic engine settings.
type AgenticConfig struct {
	// Enabled is the global feature flag.
	Enabled bool `mapstructure:"enabled"`
	// Force sends every permitted objective to the agentic engine.
	Force bool `mapstructure:"force"`
	// Reasoner is anthropic, rules or none.
	Reasoner string `mapstructure:"reasoner"`
	// KillFile disables agentic execution while it exists.
	KillFile string `mapstructure:"kill_file"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// TimeoutsConfig bounds collaborator calls.
type TimeoutsConfig struct {
	Capability time.Duration `mapstructure:"capability"`
	Reasoning  time.Duration `mapstructure:"reasoning"`
}

// ExecutorConfig holds intent execution limits.
type ExecutorConfig struct {
	MaxParallelIntents int `mapstructure:"max_parallel_intents"`
}

// StorageConfig selects the report database.
type StorageConfig struct {
	// Driver is sqlite (pure Go) or sqlite3 (cgo).
	Driver string `mapstructure:"driver"`
	// Path is the database file. Empty means the XDG data default.
	Path string `mapstructure:"path"`
}

// GuardConfig points at the capability path guard file.
type GuardConfig struct {
	Config string `mapstructure:"config"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, CODI_AGENTIC_ENABLED, CODI_WORKSPACE)
// 2. Project config (.codi.yaml in current directory or parent)
// 3. User config (~/.config/codi/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)
	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path. Environment
// overrides still apply.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)
	return unmarshal(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("codi")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by the Anthropic tooling.
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("agentic.enabled", "CODI_AGENTIC_ENABLED")
	v.BindEnv("workspace", "CODI_WORKSPACE")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Agentic.KillFile = expandEnv(cfg.Agentic.KillFile)
	cfg.Storage.Path = expandEnv(cfg.Storage.Path)
	cfg.Logging.File = expandEnv(cfg.Logging.File)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerated values.
func (c *Config) Validate() error {
	switch c.Agentic.Reasoner {
	case ReasonerAnthropic, ReasonerRules, ReasonerNone:
	default:
		return fmt.Errorf("agentic.reasoner: unknown backend %q", c.Agentic.Reasoner)
	}
	switch c.Storage.Driver {
	case state.DriverSQLite, state.DriverSQLite3:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// Policy returns the default orchestration policy with the user-facing
// limits from c applied.
func (c *Config) Policy() *policy.Config {
	p := policy.Default()
	p.Executor.MaxParallelIntents = c.Executor.MaxParallelIntents
	p.Timeouts.Capability = c.Timeouts.Capability
	p.Timeouts.Reasoning = c.Timeouts.Reasoning
	p.Validate()
	return p
}

// StoragePath returns the configured database path or the XDG default.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return state.DefaultPath()
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return SaveTo(cfg, filepath.Join(userConfigDir, "config.yaml"))
}

// SaveTo writes the configuration to path.
func SaveTo(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("workspace", cfg.Workspace)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("agentic.enabled", cfg.Agentic.Enabled)
	v.Set("agentic.force", cfg.Agentic.Force)
	v.Set("agentic.reasoner", cfg.Agentic.Reasoner)
	v.Set("agentic.kill_file", cfg.Agentic.KillFile)
	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("timeouts.capability", cfg.Timeouts.Capability.String())
	v.Set("timeouts.reasoning", cfg.Timeouts.Reasoning.String())
	v.Set("executor.max_parallel_intents", cfg.Executor.MaxParallelIntents)
	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("guard.config", cfg.Guard.Config)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("workspace", d.Workspace)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", "")

	v.SetDefault("agentic.enabled", d.Agentic.Enabled)
	v.SetDefault("agentic.force", d.Agentic.Force)
	v.SetDefault("agentic.reasoner", d.Agentic.Reasoner)
	v.SetDefault("agentic.kill_file", d.Agentic.KillFile)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("timeouts.capability", d.Timeouts.Capability.String())
	v.SetDefault("timeouts.reasoning", d.Timeouts.Reasoning.String())

	v.SetDefault("executor.max_parallel_intents", d.Executor.MaxParallelIntents)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", "")

	v.SetDefault("guard.config", "")
}

// getUserConfigDir returns the XDG config directory for codi.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "codi")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "codi")
	}
	return filepath.Join(home, ".config", "codi")
}

// defaultKillFile lives next to the user config.
func defaultKillFile() string {
	return filepath.Join(getUserConfigDir(), "agentic.kill")
}

// findProjectConfig searches for .codi.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	p := policy.Default()
	return &Config{
		Workspace: ".",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Agentic: AgenticConfig{
			Enabled:  false,
			Reasoner: ReasonerRules,
			KillFile: defaultKillFile(),
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Timeouts: TimeoutsConfig{
			Capability: p.Timeouts.Capability,
			Reasoning:  p.Timeouts.Reasoning,
		},
		Executor: ExecutorConfig{
			MaxParallelIntents: p.Executor.MaxParallelIntents,
		},
		Storage: StorageConfig{
			Driver: state.DriverSQLite,
		},
	}
}
