package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/config"
	"github.com/ShayCichocki/codi/internal/gate"
)

var agenticCmd = &cobra.Command{
	Use:   "agentic",
	Short: "Stop, resume or inspect the agentic engine",
	Long: `Control the agentic kill switch.

"codi agentic stop" creates the kill file configured in agentic.kill_file.
Running orchestrators watch that file and fall back to the standard engine
while it exists. "codi agentic resume" removes it again.`,
}

var agenticStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Disable the agentic engine for every caller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitch(func(cfg *config.Config, sw *gate.Switch) error {
			if err := sw.Kill(); err != nil {
				return fmt.Errorf("create kill file: %w", err)
			}
			printStatus(cmd.OutOrStdout(), "⚠", "Agentic engine stopped (kill file "+cfg.Agentic.KillFile+")", color.FgYellow)
			return nil
		})
	},
}

var agenticResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Remove the kill file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitch(func(cfg *config.Config, sw *gate.Switch) error {
			if err := sw.Clear(); err != nil {
				return fmt.Errorf("remove kill file: %w", err)
			}
			printAgenticStatus(cmd.OutOrStdout(), cfg, sw)
			return nil
		})
	},
}

var agenticStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the agentic engine is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitch(func(cfg *config.Config, sw *gate.Switch) error {
			printAgenticStatus(cmd.OutOrStdout(), cfg, sw)
			return nil
		})
	},
}

func init() {
	agenticCmd.AddCommand(agenticStopCmd)
	agenticCmd.AddCommand(agenticResumeCmd)
	agenticCmd.AddCommand(agenticStatusCmd)
}

// withSwitch opens the kill switch described by the configuration.
func withSwitch(fn func(cfg *config.Config, sw *gate.Switch) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return switchFor(cfg, fn)
}

func switchFor(cfg *config.Config, fn func(cfg *config.Config, sw *gate.Switch) error) error {
	if cfg.Agentic.KillFile == "" {
		return fmt.Errorf("agentic.kill_file is not set")
	}
	sw, err := gate.NewSwitch(cfg.Agentic.Enabled, cfg.Agentic.KillFile, nil)
	if err != nil {
		return err
	}
	defer sw.Close()
	return fn(cfg, sw)
}

func printAgenticStatus(w io.Writer, cfg *config.Config, sw *gate.Switch) {
	switch {
	case !cfg.Agentic.Enabled:
		printStatus(w, "⚠", "Agentic engine disabled (agentic.enabled: false)", color.FgYellow)
	case sw.Engaged():
		printStatus(w, "⚠", "Agentic engine stopped by kill file "+cfg.Agentic.KillFile, color.FgYellow)
	default:
		printStatus(w, "✓", "Agentic engine enabled", color.FgGreen)
	}
}
