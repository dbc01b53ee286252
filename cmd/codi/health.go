package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/codi/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check configuration, storage and engines",
	Long: `Check that codi can run objectives.

Reports the workspace, the state database, the registered capabilities, the
reasoning backend and whether the agentic engine is currently available.
Exits non-zero when a required component is unavailable.`,
	Args: cobra.NoArgs,
	RunE: checkHealth,
}

// healthCheck is one line of the health report.
type healthCheck struct {
	ok       bool
	warn     bool
	message  string
	required bool
}

func checkHealth(cmd *cobra.Command, args []string) error {
	return withApp(appOptions{orchestrator: true}, func(ctx context.Context, a *app) error {
		checks := collectHealth(ctx, a)
		printHealth(cmd.OutOrStdout(), checks)
		for _, c := range checks {
			if c.required && !c.ok {
				return fmt.Errorf("health check failed: %s", c.message)
			}
		}
		return nil
	})
}

func collectHealth(ctx context.Context, a *app) []healthCheck {
	var checks []healthCheck

	checks = append(checks, healthCheck{ok: true, required: true,
		message: "Workspace " + a.guard.Root()})

	if _, err := a.db.ListReports(ctx); err != nil {
		checks = append(checks, healthCheck{required: true,
			message: fmt.Sprintf("State database %s (%s): %v", a.db.Path(), a.db.Driver(), err)})
	} else {
		checks = append(checks, healthCheck{ok: true, required: true,
			message: fmt.Sprintf("State database %s (%s)", a.db.Path(), a.db.Driver())})
	}

	checks = append(checks, healthCheck{ok: true, required: true,
		message: "Capabilities: " + strings.Join(a.registry.Names(), ", ")})
	checks = append(checks, intentsCheck(a))

	cfg := a.cfg
	switch {
	case cfg.Agentic.Reasoner == config.ReasonerNone:
		checks = append(checks, healthCheck{warn: true, message: "Reasoner disabled (agentic.reasoner: none)"})
	case a.client != nil:
		src := config.GetAPIKeySource(cfg)
		detail := string(src)
		if key, err := config.GetAPIKey(cfg); err == nil {
			detail += ", key " + config.MaskAPIKey(key)
		}
		checks = append(checks, healthCheck{ok: true,
			message: fmt.Sprintf("Reasoner anthropic (%s, %s)", a.client.Model(), detail)})
	case !config.ReasonerReady(cfg):
		checks = append(checks, healthCheck{warn: true, message: "Reasoner anthropic unavailable: " + config.ErrNoAPIKey.Error()})
	case cfg.Agentic.Reasoner == config.ReasonerAnthropic:
		checks = append(checks, healthCheck{warn: true, message: "Reasoner anthropic unavailable: client could not be created"})
	default:
		checks = append(checks, healthCheck{ok: true, message: "Reasoner " + cfg.Agentic.Reasoner})
	}

	switch {
	case !cfg.Agentic.Enabled:
		checks = append(checks, healthCheck{warn: true, message: "Agentic engine disabled (agentic.enabled: false)"})
	case a.sw.Engaged():
		checks = append(checks, healthCheck{warn: true, message: "Agentic engine stopped by kill file " + cfg.Agentic.KillFile})
	default:
		msg := "Agentic engine enabled"
		if cfg.Agentic.Force {
			msg += " (forced for permitted callers)"
		}
		checks = append(checks, healthCheck{ok: true, message: msg})
	}

	return checks
}

// intentsCheck verifies that every intent routes to a registered capability.
func intentsCheck(a *app) healthCheck {
	intents := a.builder.Intents()
	var missing []string
	for _, name := range intents {
		if tool, ok := a.builder.Tool(name); !ok || !a.registry.Has(tool) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return healthCheck{required: true,
			message: "Intents without a capability: " + strings.Join(missing, ", ")}
	}
	return healthCheck{ok: true, required: true, message: "Intents: " + strings.Join(intents, ", ")}
}

func printHealth(w io.Writer, checks []healthCheck) {
	for _, c := range checks {
		switch {
		case c.ok:
			printStatus(w, "✓", c.message, color.FgGreen)
		case c.warn:
			printStatus(w, "⚠", c.message, color.FgYellow)
		default:
			printStatus(w, "✗", c.message, color.FgRed)
		}
	}
}
