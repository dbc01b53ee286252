package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify codi configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/codi/config.yaml
Project-specific overrides can be placed in .codi.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			fmt.Fprintf(out, "# user config: %s\n", config.GetUserConfigPath())
			if project := config.GetProjectConfigPath(); project != "" {
				fmt.Fprintf(out, "# project config: %s\n", project)
			}
			displayAllConfig(out, cfg)
			return nil
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(out, "Set %s = %s\n", args[0], args[1])
			return nil
		}
	},
}

// configKey binds a dot-notation key to a Config field.
type configKey struct {
	name string
	get  func(*config.Config) string
	set  func(*config.Config, string) error
}

func stringKey(name string, field func(*config.Config) *string) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func boolKey(name string, field func(*config.Config) *bool) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func durationKey(name string, field func(*config.Config) *time.Duration) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return field(c).String() },
		set: func(c *config.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration for %s: %w", name, err)
			}
			*field(c) = d
			return nil
		},
	}
}

// configKeys lists every user-facing key in display order.
var configKeys = []configKey{
	stringKey("workspace", func(c *config.Config) *string { return &c.Workspace }),
	stringKey("logging.level", func(c *config.Config) *string { return &c.Logging.Level }),
	stringKey("logging.format", func(c *config.Config) *string { return &c.Logging.Format }),
	stringKey("logging.file", func(c *config.Config) *string { return &c.Logging.File }),
	boolKey("agentic.enabled", func(c *config.Config) *bool { return &c.Agentic.Enabled }),
	boolKey("agentic.force", func(c *config.Config) *bool { return &c.Agentic.Force }),
	stringKey("agentic.reasoner", func(c *config.Config) *string { return &c.Agentic.Reasoner }),
	stringKey("agentic.kill_file", func(c *config.Config) *string { return &c.Agentic.KillFile }),
	{
		name: "anthropic.api_key",
		get:  func(c *config.Config) string { return config.MaskAPIKey(c.Anthropic.APIKey) },
		set: func(c *config.Config, v string) error {
			if err := config.ValidateAPIKey(v); err != nil {
				return err
			}
			c.Anthropic.APIKey = v
			return nil
		},
	},
	stringKey("anthropic.model", func(c *config.Config) *string { return &c.Anthropic.Model }),
	boolKey("anthropic.use_bedrock", func(c *config.Config) *bool { return &c.Anthropic.UseBedrock }),
	stringKey("anthropic.aws_region", func(c *config.Config) *string { return &c.Anthropic.AWSRegion }),
	stringKey("anthropic.aws_profile", func(c *config.Config) *string { return &c.Anthropic.AWSProfile }),
	durationKey("timeouts.capability", func(c *config.Config) *time.Duration { return &c.Timeouts.Capability }),
	durationKey("timeouts.reasoning", func(c *config.Config) *time.Duration { return &c.Timeouts.Reasoning }),
	{
		name: "executor.max_parallel_intents",
		get:  func(c *config.Config) string { return strconv.Itoa(c.Executor.MaxParallelIntents) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid value for executor.max_parallel_intents: %q", v)
			}
			c.Executor.MaxParallelIntents = n
			return nil
		},
	},
	stringKey("storage.driver", func(c *config.Config) *string { return &c.Storage.Driver }),
	stringKey("storage.path", func(c *config.Config) *string { return &c.Storage.Path }),
	stringKey("guard.config", func(c *config.Config) *string { return &c.Guard.Config }),
}

func lookupConfigKey(key string) (configKey, bool) {
	key = strings.ToLower(key)
	for _, k := range configKeys {
		if k.name == key {
			return k, true
		}
	}
	return configKey{}, false
}

// displayAllConfig prints all configuration values.
func displayAllConfig(w io.Writer, cfg *config.Config) {
	for _, k := range configKeys {
		fmt.Fprintf(w, "%s: %s\n", k.name, k.get(cfg))
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	k, ok := lookupConfigKey(key)
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return k.get(cfg), nil
}

// setConfigValue sets a configuration value by dot-notation key. The
// resulting config must still validate.
func setConfigValue(cfg *config.Config, key, value string) error {
	k, ok := lookupConfigKey(key)
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	prev := *cfg
	if err := k.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		*cfg = prev
		return err
	}
	return nil
}
