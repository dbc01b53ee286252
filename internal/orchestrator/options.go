package orchestrator

import (
	"log/slog"
	"time"

	"github.com/ShayCichocki/codi/internal/engine"
	"github.com/ShayCichocki/codi/internal/gate"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/state"
)

// RequiredConfig contains the minimal required configuration for an Orchestrator.
// All fields are required and have no defaults.
type RequiredConfig struct {
	// Standard is the planner + executor engine.
	Standard *engine.Standard
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	policyConfig *policy.Config
	agentic      *engine.Audited
	flags        gate.FlagSource
	forceAgentic bool
	store        state.ReportStore
	events       *EventEmitter
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// WithPolicy sets the policy configuration.
func WithPolicy(p *policy.Config) Option {
	return func(o *orchestratorOptions) { o.policyConfig = p }
}

// WithAgentic enables the agentic engine, gated by flags.
func WithAgentic(a *engine.Audited, flags gate.FlagSource) Option {
	return func(o *orchestratorOptions) {
		o.agentic = a
		o.flags = flags
	}
}

// WithForceAgentic makes every permitted caller use the agentic engine,
// regardless of the objective shape. It is a deployment override.
func WithForceAgentic(force bool) Option {
	return func(o *orchestratorOptions) { o.forceAgentic = force }
}

// WithStore persists reports. Stored reports are loaded at construction.
func WithStore(s state.ReportStore) Option {
	return func(o *orchestratorOptions) { o.store = s }
}

// WithEvents sets the emitter that receives state transitions.
func WithEvents(e *EventEmitter) Option {
	return func(o *orchestratorOptions) { o.events = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithClock sets the time source (mainly for testing).
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorOptions) { o.now = now }
}

// WithIDGenerator sets the agentic execution id generator (mainly for testing).
func WithIDGenerator(f func() string) Option {
	return func(o *orchestratorOptions) { o.newID = f }
}
