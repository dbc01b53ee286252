// Package tools provides the capability registry and the built-in capability
// providers that actions are invoked against.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ShayCichocki/codi/internal/action"
	"github.com/ShayCichocki/codi/pkg/models"
)

// ErrToolNotFound is returned when an action names a tool that is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrUnsupportedAction is returned by a capability that cannot handle the
// action kind it was given.
var ErrUnsupportedAction = errors.New("unsupported action")

// Capability performs actions of one tool domain.
type Capability interface {
	Invoke(ctx context.Context, action models.Action) (any, error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(ctx context.Context, action models.Action) (any, error)

// Invoke calls f.
func (f CapabilityFunc) Invoke(ctx context.Context, action models.Action) (any, error) {
	return f(ctx, action)
}

// Registry maps tool names to capabilities. It is read-mostly and shared by
// every executor invocation.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Capability)}
}

// Register adds or replaces the capability under name.
func (r *Registry) Register(name string, c Capability) error {
	if name == "" {
		return errors.New("tool name is required")
	}
	if c == nil {
		return fmt.Errorf("tool %q: capability is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = c
	return nil
}

// Invoke runs act against the named tool. An action whose parameters
// belong to another action kind is rejected before the tool sees it.
func (r *Registry) Invoke(ctx context.Context, name string, act models.Action) (any, error) {
	r.mu.RLock()
	c, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if act.Params != nil && models.ParamsType(act.Params) != act.Type {
		return nil, fmt.Errorf("%w: %s parameters for %s action", ErrUnsupportedAction, models.ParamsType(act.Params), act.Type)
	}
	return c.Invoke(ctx, act)
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults registers the built-in capabilities under the names the
// action builder binds to.
func RegisterDefaults(r *Registry, guard *Guard, answerer Answerer) error {
	for name, c := range map[string]Capability{
		action.ToolFile:     NewFileTool(guard),
		action.ToolQuestion: NewQuestionTool(answerer),
		action.ToolSystem:   NewSystemTool(guard),
		action.ToolCode:     NewCodeTool(guard),
	} {
		if err := r.Register(name, c); err != nil {
			return err
		}
	}
	return nil
}
