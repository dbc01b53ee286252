package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/codi/internal/action"
	"github.com/ShayCichocki/codi/internal/audit"
	"github.com/ShayCichocki/codi/internal/config"
	"github.com/ShayCichocki/codi/internal/engine"
	"github.com/ShayCichocki/codi/internal/executor"
	"github.com/ShayCichocki/codi/internal/gate"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/orchestrator"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/planner"
	"github.com/ShayCichocki/codi/internal/reasoning"
	"github.com/ShayCichocki/codi/internal/state"
	"github.com/ShayCichocki/codi/internal/tools"
)

// backend is a reasoning backend that can also answer questions.
type backend interface {
	reasoning.Reasoner
	tools.Answerer
}

// app holds the wired components for one command invocation.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	logger   *slog.Logger
	policy   *policy.Config
	guard    *tools.Guard
	builder  *action.Builder
	registry *tools.Registry
	executor *executor.Executor
	client   *reasoning.Client
	db       *state.DB
	sw       *gate.Switch
	events   *orchestrator.EventEmitter
	orch     *orchestrator.Orchestrator
}

// appOptions tunes wiring per command.
type appOptions struct {
	// logOutput replaces stderr as the primary log destination.
	logOutput io.Writer
	// events enables the orchestrator event channel.
	events bool
	// orchestrator wires the engines, the switch and the orchestrator.
	// exec only needs the executor; reports only need storage.
	orchestrator bool
}

// newApp wires every component from cfg. The caller must Close the app.
func newApp(cfg *config.Config, opts appOptions) (a *app, err error) {
	log, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: opts.logOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a = &app{cfg: cfg, log: log, logger: log.Logger, policy: cfg.Policy()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.guard, err = tools.NewGuard(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	if cfg.Guard.Config != "" {
		if err := a.guard.LoadConfig(cfg.Guard.Config); err != nil {
			return nil, fmt.Errorf("load guard config: %w", err)
		}
	}

	a.builder = action.NewBuilder(action.WithSystemIntents())
	reasoner := a.newBackend()

	a.registry = tools.NewRegistry()
	if err := tools.RegisterDefaults(a.registry, a.guard, reasoner); err != nil {
		return nil, fmt.Errorf("register capabilities: %w", err)
	}
	a.executor = executor.New(a.builder, a.registry,
		executor.WithPolicy(a.policy),
		executor.WithLogger(a.logger),
	)

	a.db, err = state.OpenWithDriver(cfg.Storage.Driver, cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := a.db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if !opts.orchestrator {
		return a, nil
	}

	a.sw, err = gate.NewSwitch(cfg.Agentic.Enabled, cfg.Agentic.KillFile, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create agentic switch: %w", err)
	}

	p := planner.New(planner.WithPolicy(a.policy.Planner), planner.WithLogger(a.logger))
	standard := engine.NewStandard(p, a.executor, a.logger)
	agentic := engine.NewAudited(
		engine.NewAgentic(reasoner, a.executor, a.policy.Timeouts.Reasoning, a.logger),
		audit.Multi{audit.NewLogSink(a.logger), audit.NewStoreSink(a.db, a.logger)},
		a.logger,
	)

	orchOpts := []orchestrator.Option{
		orchestrator.WithPolicy(a.policy),
		orchestrator.WithAgentic(agentic, a.sw),
		orchestrator.WithForceAgentic(cfg.Agentic.Force),
		orchestrator.WithStore(a.db),
		orchestrator.WithLogger(a.logger),
	}
	if opts.events {
		a.events = orchestrator.NewEventEmitter(a.policy.Events.BufferSize, a.logger)
		orchOpts = append(orchOpts, orchestrator.WithEvents(a.events))
	}

	a.orch, err = orchestrator.New(orchestrator.RequiredConfig{Standard: standard}, orchOpts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// newBackend selects the reasoning backend. An anthropic backend that cannot
// be constructed degrades to Unavailable so agentic runs report the failure.
func (a *app) newBackend() backend {
	switch a.cfg.Agentic.Reasoner {
	case config.ReasonerAnthropic:
		client, err := reasoning.NewClient(reasoning.ClientConfig{
			Model:         anthropic.Model(a.cfg.Anthropic.Model),
			APIKey:        a.cfg.Anthropic.APIKey,
			UseAWSBedrock: a.cfg.Anthropic.UseBedrock,
			AWSRegion:     a.cfg.Anthropic.AWSRegion,
			AWSProfile:    a.cfg.Anthropic.AWSProfile,
			Logger:        a.logger,
		})
		if err != nil {
			a.logger.Warn("anthropic reasoner unavailable", "error", err)
			return reasoning.Unavailable{}
		}
		a.client = client
		return reasoning.NewAnthropicReasoner(client, a.builder.Intents())
	case config.ReasonerRules:
		return reasoning.Rules{}
	default:
		return reasoning.Unavailable{}
	}
}

// Close releases everything newApp acquired.
func (a *app) Close() {
	if a.orch != nil {
		a.orch.Close()
	}
	if a.events != nil {
		if n := a.events.DroppedCount(); n > 0 {
			a.logger.Warn("orchestrator events dropped", "count", n)
		}
	}
	if a.sw != nil {
		a.sw.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.client != nil {
		in, out := a.client.Tracker().Total()
		a.logger.Debug("reasoning usage", "calls", a.client.Tracker().Calls(), "input_tokens", in, "output_tokens", out)
	}
	a.log.Close()
}

// withApp loads configuration, wires the app and runs fn.
func withApp(opts appOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := newApp(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return fn(ctx, a)
}
