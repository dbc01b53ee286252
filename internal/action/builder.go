// Package action turns loosely typed intents into validated, tool-bound actions.
package action

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/codi/pkg/models"
)

// Registry names of the capability providers the builder binds actions to.
const (
	ToolFile     = "file"
	ToolQuestion = "question"
	ToolSystem   = "system"
	ToolCode     = "code"
)

var (
	// ErrUnknownIntent is returned when the intent name is missing or not in the table.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrMissingParameter is returned when a required parameter is absent.
	ErrMissingParameter = errors.New("missing required parameter")
)

// ValidationError describes why an intent could not be turned into an action.
// It wraps ErrUnknownIntent or ErrMissingParameter.
type ValidationError struct {
	Intent    string
	Parameter string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("intent %q: %v: %s", e.Intent, e.Err, e.Parameter)
	}
	if e.Intent == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Intent)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// binder extracts typed parameters from a raw parameter map.
type binder func(name string, p map[string]any) (models.ActionParams, error)

type entry struct {
	typ  models.ActionType
	tool string
	bind binder
}

// Builder maps intent names to actions through a table fixed at construction.
// It is stateless beyond that table and safe for concurrent use.
type Builder struct {
	table map[string]entry
}

// Option configures a Builder.
type Option func(*Builder)

// WithSystemIntents adds list_directory and write_code, bound to the system
// and code tools.
func WithSystemIntents() Option {
	return func(b *Builder) {
		b.table[string(models.ActionListDirectory)] = entry{models.ActionListDirectory, ToolSystem, bindListDirectory}
		b.table[string(models.ActionWriteCode)] = entry{models.ActionWriteCode, ToolCode, bindWriteCode}
	}
}

// NewBuilder returns a builder with the core intent table.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{table: map[string]entry{
		string(models.ActionCreateFile):     {models.ActionCreateFile, ToolFile, bindCreateFile},
		string(models.ActionAnalyzeText):    {models.ActionAnalyzeText, ToolFile, bindAnalyzeText},
		string(models.ActionInspectZip):     {models.ActionInspectZip, ToolFile, bindInspectZip},
		string(models.ActionAnswerQuestion): {models.ActionAnswerQuestion, ToolQuestion, bindAnswerQuestion},
	}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates an intent and returns the action it maps to.
func (b *Builder) Build(intent models.Intent) (models.Action, error) {
	name := strings.TrimSpace(intent.Name)
	if name == "" {
		return models.Action{}, &ValidationError{Err: ErrUnknownIntent}
	}
	e, ok := b.table[name]
	if !ok {
		return models.Action{}, &ValidationError{Intent: name, Err: ErrUnknownIntent}
	}
	params, err := e.bind(name, intent.Params)
	if err != nil {
		return models.Action{}, err
	}
	return models.Action{Type: e.typ, Tool: e.tool, Params: params}, nil
}

// Intents returns the known intent names, sorted.
func (b *Builder) Intents() []string {
	names := make([]string, 0, len(b.table))
	for n := range b.table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tool returns the capability name an intent is routed to.
func (b *Builder) Tool(name string) (string, bool) {
	e, ok := b.table[name]
	return e.tool, ok
}

func bindCreateFile(name string, p map[string]any) (models.ActionParams, error) {
	filename, err := required(name, p, "filename")
	if err != nil {
		return nil, err
	}
	content, _ := optional(p, "content")
	return models.CreateFileParams{Filename: filename, Content: content}, nil
}

func bindAnalyzeText(name string, p map[string]any) (models.ActionParams, error) {
	path, err := required(name, p, "path")
	if err != nil {
		return nil, err
	}
	return models.AnalyzeTextParams{Path: path}, nil
}

func bindInspectZip(name string, p map[string]any) (models.ActionParams, error) {
	path, err := required(name, p, "zip_path")
	if err != nil {
		return nil, err
	}
	return models.InspectZipParams{ZipPath: path}, nil
}

// questionKeys is the lookup order for the question text.
var questionKeys = []string{"question", "query", "text", "objective"}

func bindAnswerQuestion(name string, p map[string]any) (models.ActionParams, error) {
	for _, k := range questionKeys {
		if q, ok := optional(p, k); ok && strings.TrimSpace(q) != "" {
			return models.AnswerQuestionParams{Question: q}, nil
		}
	}
	return nil, &ValidationError{Intent: name, Parameter: "question", Err: ErrMissingParameter}
}

func bindListDirectory(_ string, p map[string]any) (models.ActionParams, error) {
	path, ok := optional(p, "path")
	if !ok || path == "" {
		path = "."
	}
	return models.ListDirectoryParams{Path: path}, nil
}

func bindWriteCode(name string, p map[string]any) (models.ActionParams, error) {
	path, err := required(name, p, "path")
	if err != nil {
		return nil, err
	}
	content, _ := optional(p, "content")
	op := models.CodeGenerate
	if raw, ok := optional(p, "operation"); ok && raw != "" {
		switch models.CodeOperation(raw) {
		case models.CodeGenerate, models.CodeModify:
			op = models.CodeOperation(raw)
		default:
			return nil, &ValidationError{Intent: name, Parameter: "operation", Err: ErrMissingParameter}
		}
	}
	return models.WriteCodeParams{Path: path, Content: content, Operation: op}, nil
}

func required(intent string, p map[string]any, key string) (string, error) {
	v, ok := optional(p, key)
	if !ok {
		return "", &ValidationError{Intent: intent, Parameter: key, Err: ErrMissingParameter}
	}
	return v, nil
}

// optional reads key as a string. Non-string scalars are formatted.
func optional(p map[string]any, key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}
