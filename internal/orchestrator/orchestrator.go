package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/codi/internal/engine"
	"github.com/ShayCichocki/codi/internal/gate"
	"github.com/ShayCichocki/codi/internal/logging"
	"github.com/ShayCichocki/codi/internal/orchestrator/policy"
	"github.com/ShayCichocki/codi/internal/planner"
	"github.com/ShayCichocki/codi/internal/state"
	"github.com/ShayCichocki/codi/pkg/models"
)

var (
	// ErrReportNotFound is returned when no report has the requested id.
	ErrReportNotFound = errors.New("report not found")
	// ErrUnrecoverable marks failures that abort processing without storing
	// a report, such as a misconfigured engine or a storage failure.
	ErrUnrecoverable = errors.New("unrecoverable orchestration error")
)

// Request is one objective submitted by a caller.
type Request struct {
	Objective string
	Caller    gate.Caller
	// Attachments are workspace paths handed to the agentic engine.
	Attachments []string
	// ForceAgentic requests the agentic engine regardless of the objective
	// shape. The caller must still be permitted.
	ForceAgentic bool
}

// Orchestrator selects an engine per objective, runs it and keeps the
// resulting reports. It is safe for concurrent use.
type Orchestrator struct {
	standard     *engine.Standard
	agentic      *engine.Audited
	flags        gate.FlagSource
	forceAgentic bool
	policy       *policy.Config
	store        state.ReportStore
	events       *EventEmitter
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string

	mu      sync.RWMutex
	reports map[string]*models.Report
	order   []string
}

// New creates an orchestrator. When a store is configured its reports are
// loaded so they can be served by GetReport and ListReports.
func New(req RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if req.Standard == nil {
		return nil, fmt.Errorf("%w: standard engine is required", ErrUnrecoverable)
	}

	o := &orchestratorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.agentic != nil && o.flags == nil {
		return nil, fmt.Errorf("%w: agentic engine configured without authorization flags", ErrUnrecoverable)
	}
	if o.policyConfig == nil {
		o.policyConfig = policy.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = func() string { return uuid.New().String() }
	}

	orch := &Orchestrator{
		standard:     req.Standard,
		agentic:      o.agentic,
		flags:        o.flags,
		forceAgentic: o.forceAgentic,
		policy:       o.policyConfig,
		store:        o.store,
		events:       o.events,
		logger:       logging.OrNop(o.logger).With("component", "orchestrator"),
		now:          o.now,
		newID:        o.newID,
		reports:      make(map[string]*models.Report),
	}

	if orch.store != nil {
		stored, err := orch.store.ListReports(context.Background())
		if err != nil {
			return nil, fmt.Errorf("%w: load reports: %v", ErrUnrecoverable, err)
		}
		for _, r := range stored {
			orch.insert(r)
		}
		orch.logger.Debug("loaded stored reports", "count", len(stored))
	}
	return orch, nil
}

// ProcessObjective runs the objective through the selected engine and
// returns the stored report. Task and intent failures are reflected in the
// report status; only validation and unrecoverable errors are returned.
func (o *Orchestrator) ProcessObjective(ctx context.Context, req Request) (*models.Report, error) {
	objective := strings.TrimSpace(req.Objective)
	start := o.now()
	o.emit(Event{Type: EventReceived, Objective: objective})
	o.logger.Info("objective received", "caller", req.Caller.ID, "objective", objective)

	if objective == "" {
		return nil, o.fail(objective, planner.ErrEmptyObjective)
	}

	kind := o.selectEngine(objective, req)
	o.emit(Event{Type: EventEngineSelected, Objective: objective, Engine: kind})

	var (
		report *models.Report
		err    error
	)
	o.emit(Event{Type: EventExecuting, Objective: objective, Engine: kind})
	switch kind {
	case models.EngineAgentic:
		report, err = o.runAgentic(ctx, objective, req)
	default:
		report, err = o.runStandard(ctx, objective)
	}
	if err != nil {
		return nil, o.fail(objective, err)
	}

	report.Objective = objective
	report.CreatedAt = start
	report.CompletedAt = o.now()
	report.DurationSeconds = report.CompletedAt.Sub(start).Seconds()
	o.emit(Event{Type: EventReportAssembled, Objective: objective, ReportID: report.ID, Engine: kind, Status: report.Status})

	// A cancelled run still records what it did.
	if err := o.storeReport(context.WithoutCancel(ctx), report); err != nil {
		return nil, o.fail(objective, err)
	}
	o.emit(Event{Type: EventStored, Objective: objective, ReportID: report.ID, Engine: kind, Status: report.Status})

	o.logger.Info("objective processed",
		"report_id", report.ID,
		"engine", kind,
		"status", report.Status,
		"duration", report.DurationSeconds,
	)
	return report.Clone(), nil
}

// selectEngine applies the decision gate. The agentic engine is used only
// when the caller is allowed and either the objective shape calls for it or
// an explicit override is set.
func (o *Orchestrator) selectEngine(objective string, req Request) models.EngineKind {
	signals := gate.DeriveSignals(objective, o.policy.Gate)
	allowed := o.agentic != nil && gate.AgenticAllowed(o.flags, req.Caller)
	gateSays := gate.ShouldUseAgentic(signals)

	useAgentic := allowed && gateSays
	if allowed && !gateSays {
		// Overrides are explicit: per request or per deployment.
		switch {
		case req.ForceAgentic:
			o.logger.Info("agentic override", "source", "request", "caller", req.Caller.ID)
			useAgentic = true
		case o.forceAgentic:
			o.logger.Info("agentic override", "source", "config", "caller", req.Caller.ID)
			useAgentic = true
		}
	}

	kind := models.EngineStandard
	if useAgentic {
		kind = models.EngineAgentic
	}
	o.logger.Info("decision gate",
		"multi_step", signals.RequiresMultiStep,
		"multiple_tools", signals.RequiresMultipleTools,
		"allowed", allowed,
		"engine", kind,
	)
	return kind
}

func (o *Orchestrator) runStandard(ctx context.Context, objective string) (*models.Report, error) {
	run, err := o.standard.Execute(ctx, objective)
	if err != nil {
		return nil, err
	}
	for _, r := range run.Results {
		o.emitResult(run.PlanID, objective, models.EngineStandard, r)
	}
	return assembleStandard(run), nil
}

func (o *Orchestrator) runAgentic(ctx context.Context, objective string, req Request) (*models.Report, error) {
	if o.agentic == nil {
		return nil, fmt.Errorf("%w: agentic engine selected but not configured", ErrUnrecoverable)
	}
	id := o.newID()
	input := map[string]any{"caller": req.Caller.ID}
	if len(req.Attachments) > 0 {
		input["attachments"] = append([]string(nil), req.Attachments...)
	}

	res := o.agentic.Run(ctx, id, objective, input)
	report := assembleAgentic(id, res, o.now())
	for _, r := range report.ExecutionResults {
		o.emitResult(id, objective, models.EngineAgentic, r)
	}
	return report, nil
}

func (o *Orchestrator) storeReport(ctx context.Context, r *models.Report) error {
	if o.store != nil {
		if err := o.store.SaveReport(ctx, r); err != nil {
			return fmt.Errorf("%w: persist report %s: %v", ErrUnrecoverable, r.ID, err)
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.reports[r.ID]; exists {
		o.logger.Warn("report id collision, replacing stored report", "report_id", r.ID)
	}
	o.insertLocked(r.Clone())
	return nil
}

func (o *Orchestrator) insert(r *models.Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.insertLocked(r)
}

func (o *Orchestrator) insertLocked(r *models.Report) {
	if _, exists := o.reports[r.ID]; !exists {
		o.order = append(o.order, r.ID)
	}
	o.reports[r.ID] = r
}

// GetReport returns a copy of the report with id.
func (o *Orchestrator) GetReport(id string) (*models.Report, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return r.Clone(), nil
}

// ListReports returns report ids in insertion order.
func (o *Orchestrator) ListReports() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.order...)
}

// LastReport returns the most recently stored report.
func (o *Orchestrator) LastReport() (*models.Report, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.order) == 0 {
		return nil, ErrReportNotFound
	}
	return o.reports[o.order[len(o.order)-1]].Clone(), nil
}

// ExportReportJSON returns the report with id as indented JSON.
func (o *Orchestrator) ExportReportJSON(id string) ([]byte, error) {
	r, err := o.GetReport(id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report %s: %w", id, err)
	}
	return data, nil
}

// Close releases the event emitter. Stores are owned by the caller.
func (o *Orchestrator) Close() {
	if o.events != nil {
		o.events.Close()
	}
}

func (o *Orchestrator) fail(objective string, err error) error {
	o.logger.Error("objective failed", "objective", objective, "error", err)
	o.emit(Event{Type: EventFailed, Objective: objective, Error: err, Message: err.Error()})
	return err
}

func (o *Orchestrator) emitResult(id, objective string, kind models.EngineKind, r models.ExecutionResult) {
	ev := Event{
		Type:      EventTaskCompleted,
		Objective: objective,
		ReportID:  id,
		Engine:    kind,
		TaskID:    r.TaskID,
		TaskTitle: r.TaskTitle,
	}
	if !r.OK() {
		ev.Type = EventTaskFailed
		ev.Message = r.Error
	}
	o.emit(ev)
}

func (o *Orchestrator) emit(ev Event) {
	if o.events == nil {
		return
	}
	ev.Timestamp = o.now()
	o.events.Emit(ev)
}
