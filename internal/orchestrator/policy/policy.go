// Package policy defines configurable policy parameters for orchestration.
// This centralizes keyword sets, timeouts and concurrency limits so the
// planner, decision gate and executor can be tuned and tested without code changes.
package policy

import "time"

// Config contains all configurable policy parameters for the orchestrator.
type Config struct {
	// Planner keyword policies
	Planner PlannerPolicy

	// Decision gate heuristics
	Gate GatePolicy

	// Executor limits
	Executor ExecutorPolicy

	// Timeouts for external calls
	Timeouts TimeoutPolicy

	// Event delivery
	Events EventPolicy
}

// PlannerPolicy controls keyword-driven decomposition.
type PlannerPolicy struct {
	// CreationVerbs trigger the "Identify resources" task. Matched as word prefixes.
	CreationVerbs []string

	// ActionVerbs trigger the "Plan execution" task. Matched as word prefixes.
	ActionVerbs []string
}

// GatePolicy controls signal derivation for the decision gate.
type GatePolicy struct {
	// Conjunctions are whole words implying the objective has several steps.
	Conjunctions []string

	// MultiStepKeywords are word prefixes implying multi-step work on their own.
	MultiStepKeywords []string

	// ToolDomains maps a tool domain to the word prefixes that reference it.
	// Two or more distinct domains in one objective imply multiple tools.
	ToolDomains map[string][]string
}

// ExecutorPolicy controls intent batch execution.
type ExecutorPolicy struct {
	// MaxParallelIntents bounds concurrent intents within one batch.
	MaxParallelIntents int
}

// TimeoutPolicy bounds calls to collaborators.
type TimeoutPolicy struct {
	// Capability bounds one tool invocation.
	Capability time.Duration

	// Reasoning bounds one reasoning proposal.
	Reasoning time.Duration
}

// EventPolicy controls orchestrator event delivery.
type EventPolicy struct {
	// BufferSize is the buffer size of the event channel.
	BufferSize int
}

// Default returns the default policy configuration.
func Default() *Config {
	return &Config{
		Planner: PlannerPolicy{
			CreationVerbs: []string{
				"create", "generate", "build", "develop", "write", "make",
				"crear", "crea", "generar", "genera", "construir", "construye", "desarrollar", "desarrolla",
			},
			ActionVerbs: []string{
				"execute", "run", "process", "perform", "do",
				"ejecutar", "ejecuta", "procesar", "procesa", "realizar", "realiza", "hacer", "haz",
			},
		},
		Gate: GatePolicy{
			Conjunctions: []string{"and", "then", "y", "luego", "después"},
			MultiStepKeywords: []string{
				"analyze", "analyse", "analiza", "zip", "inspect", "extract", "summarize", "resume",
			},
			ToolDomains: map[string][]string{
				"file":      {"file", "archivo", "fichero", "txt", "document", "documento"},
				"archive":   {"zip", "archive", "compressed", "comprimido"},
				"question":  {"question", "pregunta", "explain", "explica", "answer", "responde"},
				"directory": {"directory", "folder", "directorio", "carpeta", "list", "lista"},
			},
		},
		Executor: ExecutorPolicy{
			MaxParallelIntents: 4,
		},
		Timeouts: TimeoutPolicy{
			Capability: 30 * time.Second,
			Reasoning:  60 * time.Second,
		},
		Events: EventPolicy{
			BufferSize: 100,
		},
	}
}

// Validate checks that policy values are within acceptable ranges.
// Out-of-range values are reset to their defaults.
func (c *Config) Validate() error {
	d := Default()
	if len(c.Planner.CreationVerbs) == 0 {
		c.Planner.CreationVerbs = d.Planner.CreationVerbs
	}
	if len(c.Planner.ActionVerbs) == 0 {
		c.Planner.ActionVerbs = d.Planner.ActionVerbs
	}
	if len(c.Gate.Conjunctions) == 0 {
		c.Gate.Conjunctions = d.Gate.Conjunctions
	}
	if len(c.Gate.MultiStepKeywords) == 0 {
		c.Gate.MultiStepKeywords = d.Gate.MultiStepKeywords
	}
	if len(c.Gate.ToolDomains) == 0 {
		c.Gate.ToolDomains = d.Gate.ToolDomains
	}
	if c.Executor.MaxParallelIntents < 1 {
		c.Executor.MaxParallelIntents = 1
	}
	if c.Timeouts.Capability < 10*time.Millisecond {
		c.Timeouts.Capability = d.Timeouts.Capability
	}
	if c.Timeouts.Reasoning < 10*time.Millisecond {
		c.Timeouts.Reasoning = d.Timeouts.Reasoning
	}
	if c.Events.BufferSize < 1 {
		c.Events.BufferSize = d.Events.BufferSize
	}
	return nil
}
