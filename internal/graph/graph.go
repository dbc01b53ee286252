// Package graph provides a dependency graph over plan tasks.
package graph

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/codi/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the task graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// ErrOutOfOrder indicates a task is stored before one of its dependencies.
var ErrOutOfOrder = errors.New("task precedes its dependency")

// DependencyGraph represents a directed acyclic graph of task dependencies.
// Tasks are nodes, and edges represent "blocked by" relationships.
type DependencyGraph struct {
	// edges maps task ID to IDs of tasks it depends on.
	edges map[int][]int
	// order is the stored task order.
	order []int
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{edges: make(map[int][]int)}
}

// Build constructs the dependency graph from a slice of tasks.
// Returns an error if a cycle is detected or dependencies reference unknown tasks.
func (g *DependencyGraph) Build(tasks []*models.Task) error {
	for _, task := range tasks {
		if _, dup := g.edges[task.ID]; dup {
			return fmt.Errorf("duplicate task id %d", task.ID)
		}
		g.edges[task.ID] = []int{}
		g.order = append(g.order, task.ID)
	}

	for _, task := range tasks {
		for _, depID := range task.Dependencies {
			if _, exists := g.edges[depID]; !exists {
				return fmt.Errorf("task %d depends on unknown task %d", task.ID, depID)
			}
			g.edges[task.ID] = append(g.edges[task.ID], depID)
		}
	}

	if g.hasCycle() {
		return ErrCycleDetected
	}
	return nil
}

// hasCycle uses depth-first search with coloring to detect back edges.
func (g *DependencyGraph) hasCycle() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[int]int, len(g.edges))

	var visit func(id int) bool
	visit = func(id int) bool {
		colors[id] = 1
		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for _, id := range g.order {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// ValidateOrder checks that every task is stored after all of its dependencies.
func (g *DependencyGraph) ValidateOrder() error {
	pos := make(map[int]int, len(g.order))
	for i, id := range g.order {
		pos[id] = i
	}
	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if pos[depID] > pos[id] {
				return fmt.Errorf("%w: task %d before %d", ErrOutOfOrder, id, depID)
			}
		}
	}
	return nil
}

// FromPlan builds a graph for plan and verifies it is acyclic and stored
// in dependency order.
func FromPlan(plan *models.Plan) (*DependencyGraph, error) {
	g := New()
	if err := g.Build(plan.Tasks); err != nil {
		return nil, err
	}
	if err := g.ValidateOrder(); err != nil {
		return nil, err
	}
	return g, nil
}
