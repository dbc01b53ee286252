package models

import "time"

// TaskStatus represents the current state of a plan task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not run yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusSuccess indicates the task completed successfully.
	TaskStatusSuccess TaskStatus = "success"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusSuccess, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// PlanStatus represents the lifecycle state of a plan.
type PlanStatus string

const (
	// PlanStatusCreated is the only status a freshly analyzed plan carries.
	PlanStatusCreated PlanStatus = "created"
)

// Task represents one step of a plan.
type Task struct {
	// ID is the 1-based position of the task within its plan.
	ID int `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed information about the task.
	Description string `json:"description"`
	// Dependencies lists task IDs that must complete before this task.
	// Every entry refers to an existing task in the same plan and never to itself.
	Dependencies []int `json:"dependencies"`
	// Priority orders tasks for reporting. Lower runs earlier.
	Priority int `json:"priority"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Result holds the task output once it has run.
	Result any `json:"result,omitempty"`
	// Error contains the error message if the task failed.
	Error string `json:"error,omitempty"`
	// Intent is an optional explicit intent. When set, the executor runs it
	// instead of inferring one from the task text.
	Intent *Intent `json:"intent,omitempty"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Dependencies != nil {
		c.Dependencies = make([]int, len(t.Dependencies))
		copy(c.Dependencies, t.Dependencies)
	}
	if t.Intent != nil {
		in := t.Intent.Clone()
		c.Intent = &in
	}
	return &c
}

// Plan is an ordered list of tasks derived from an objective.
type Plan struct {
	// Objective is the text the plan was derived from.
	Objective string `json:"objective"`
	// CreatedAt is when the plan was analyzed.
	CreatedAt time.Time `json:"created_at"`
	// Tasks are stored in execution order.
	Tasks []*Task `json:"tasks"`
	// TotalTasks always equals len(Tasks).
	TotalTasks int `json:"total_tasks"`
	// Status is the plan lifecycle state.
	Status PlanStatus `json:"status"`
}

// Task returns the task with the given id, or nil.
func (p *Plan) Task(id int) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Snapshot returns a deep copy of the plan. Reports hold snapshots so later
// plan mutations cannot leak into an already stored report.
func (p *Plan) Snapshot() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Tasks = make([]*Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return &c
}
