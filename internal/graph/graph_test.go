package graph

import (
	"errors"
	"testing"

	"github.com/ShayCichocki/codi/pkg/models"
)

func tasks(deps map[int][]int, order ...int) []*models.Task {
	out := make([]*models.Task, 0, len(order))
	for _, id := range order {
		out = append(out, &models.Task{ID: id, Dependencies: deps[id], Status: models.TaskStatusPending})
	}
	return out
}

func TestBuild_DetectsCycle(t *testing.T) {
	g := New()
	err := g.Build(tasks(map[int][]int{1: {3}, 2: {1}, 3: {2}}, 1, 2, 3))
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Build() error = %v, want ErrCycleDetected", err)
	}
}

func TestBuild_UnknownDependency(t *testing.T) {
	g := New()
	if err := g.Build(tasks(map[int][]int{2: {9}}, 1, 2)); err == nil {
		t.Fatal("Build() expected error for unknown dependency")
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	g := New()
	if err := g.Build(tasks(nil, 1, 1)); err == nil {
		t.Fatal("Build() expected error for duplicate id")
	}
}

func TestValidateOrder(t *testing.T) {
	g := New()
	if err := g.Build(tasks(map[int][]int{1: {2}}, 1, 2)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := g.ValidateOrder(); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("ValidateOrder() = %v, want ErrOutOfOrder", err)
	}
}

func TestFromPlan(t *testing.T) {
	tests := []struct {
		name    string
		plan    *models.Plan
		wantErr error
	}{
		{"stored in order", &models.Plan{Tasks: tasks(map[int][]int{2: {1}, 3: {1, 2}}, 1, 2, 3)}, nil},
		{"out of order", &models.Plan{Tasks: tasks(map[int][]int{1: {2}}, 1, 2)}, ErrOutOfOrder},
		{"self dependency", &models.Plan{Tasks: tasks(map[int][]int{1: {1}}, 1)}, ErrCycleDetected},
		{"empty", &models.Plan{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromPlan(tt.plan)
			if tt.wantErr == nil {
				if err != nil || g == nil {
					t.Fatalf("FromPlan() = %v, %v; want graph", g, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FromPlan() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
