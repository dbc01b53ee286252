package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/config"
)

var (
	flagConfigPath string
	flagWorkspace  string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "codi",
	Short: "Objective orchestrator",
	Long: `codi turns a natural-language objective into executed actions.

Each objective goes through a decision gate. Simple objectives are decomposed
by the keyword planner and run task by task. Multi-step objectives may be
routed to the agentic engine, where a reasoning backend proposes intents that
are executed and audited. Every run produces a stored report.

Core capabilities:
- Creates, analyzes and inspects files inside a guarded workspace
- Extracts zip archives with size and path limits
- Answers questions through the configured reasoning backend
- Keeps reports and audit records in a local SQLite database`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default: user config merged with .codi.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "Workspace directory capabilities operate in")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(agenticCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfigPath != "" {
		cfg, err = config.LoadFromPath(flagConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flagWorkspace != "" {
		cfg.Workspace = flagWorkspace
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg, nil
}
