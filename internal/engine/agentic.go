package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShayCichocki/codi/internal/executor"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/reasoning"
	"github.com/ShayCichocki/codi/pkg/models"
)

// pipelineState flows through the agentic nodes.
type pipelineState struct {
	goal    string
	input   map[string]any
	intents []models.Intent
	results []models.IntentResult
	res     Result
}

// node is one stage of the agentic pipeline. Returning false stops the
// pipeline.
type node struct {
	name string
	run  func(ctx context.Context, st *pipelineState) bool
}

// Agentic is a two-node pipeline: plan asks the reasoner for intents, then
// execute routes every intent through the executor.
type Agentic struct {
	reasoner reasoning.Reasoner
	executor *executor.Executor
	timeout  time.Duration
	logger   *slog.Logger
	nodes    []node
}

// NewAgentic returns an agentic engine. Reasoner calls are bounded by
// timeout; zero means one minute.
func NewAgentic(r reasoning.Reasoner, e *executor.Executor, timeout time.Duration, logger *slog.Logger) *Agentic {
	if timeout <= 0 {
		timeout = time.Minute
	}
	a := &Agentic{
		reasoner: r,
		executor: e,
		timeout:  timeout,
		logger:   logging.OrNop(logger).With("component", "engine", "engine", "agentic"),
	}
	a.nodes = []node{
		{name: "plan", run: a.plan},
		{name: "execute", run: a.execute},
	}
	return a
}

// Run implements Engine.
func (a *Agentic) Run(ctx context.Context, goal string, input map[string]any) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	st := &pipelineState{
		goal:  goal,
		input: input,
		res:   Result{Steps: []string{}, Warnings: []string{}, Errors: []string{}},
	}
	for _, n := range a.nodes {
		a.logger.Debug("entering node", "node", n.name)
		if !n.run(ctx, st) {
			break
		}
	}
	st.res.Output = st.results
	return st.res, nil
}

func (a *Agentic) plan(ctx context.Context, st *pipelineState) bool {
	if a.reasoner == nil {
		st.res.Errors = append(st.res.Errors, fmt.Sprintf("plan: %v", reasoning.ErrReasoningUnavailable))
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	intents, err := a.reasoner.Propose(pctx, st.goal, st.input)
	if err != nil {
		a.logger.Error("reasoner failed", "error", err)
		st.res.Errors = append(st.res.Errors, fmt.Sprintf("plan: runtime error: %v", err))
		return false
	}

	st.intents = intents
	st.res.Steps = append(st.res.Steps, fmt.Sprintf("Step 1: Analyzed goal (%d intent(s) proposed)", len(intents)))
	if len(intents) == 0 {
		st.res.Warnings = append(st.res.Warnings, "no intents proposed for goal")
		return false
	}
	return true
}

func (a *Agentic) execute(ctx context.Context, st *pipelineState) bool {
	st.results = a.executor.ExecuteIntents(ctx, st.intents)

	failed := 0
	for i, r := range st.results {
		if r.OK() {
			continue
		}
		failed++
		st.res.Errors = append(st.res.Errors, fmt.Sprintf("intent %d (%s): %s", i+1, r.ActionType, r.Error))
	}
	st.res.Steps = append(st.res.Steps,
		fmt.Sprintf("Step 2: Executed %d action(s), %d failed", len(st.results), failed))
	return true
}
