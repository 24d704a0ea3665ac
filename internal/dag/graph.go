package dag

import (
	"fmt"

	wferrors "github.com/maxkimambo/subflow/internal/errors"
)

// Graph owns the task records of one run, in discovery order.
type Graph struct {
	order []ID
	tasks map[ID]*Task
}

// New validates the descriptors and builds the graph. Parallel groups are
// checked first, then every dependency id must name a task in the list. On
// error no graph is returned.
func New(descriptors []Descriptor) (*Graph, error) {
	if err := ValidateParallelGroups(descriptors); err != nil {
		return nil, err
	}

	g := &Graph{
		order: make([]ID, 0, len(descriptors)),
		tasks: make(map[ID]*Task, len(descriptors)),
	}

	for i, d := range descriptors {
		if d.ID == "" {
			return nil, wferrors.NewEmptyTaskIDError(i)
		}
		if _, exists := g.tasks[d.ID]; exists {
			return nil, wferrors.NewDuplicateTaskError(string(d.ID))
		}
		g.tasks[d.ID] = newTask(d)
		g.order = append(g.order, d.ID)
	}

	// dependents is the transpose of dependencies, built once here
	for _, id := range g.order {
		task := g.tasks[id]
		for _, depID := range task.Dependencies {
			dep, exists := g.tasks[depID]
			if !exists {
				return nil, wferrors.NewInvalidDependencyError(string(id), string(depID))
			}
			dep.Dependents = append(dep.Dependents, id)
		}
	}

	return g, nil
}

// ValidateParallelGroups rejects any non-zero parallel group in which one
// member lists another member as a dependency.
func ValidateParallelGroups(descriptors []Descriptor) error {
	members := make(map[int]map[ID]bool)
	for _, d := range descriptors {
		if d.ParallelGroup == 0 {
			continue
		}
		if members[d.ParallelGroup] == nil {
			members[d.ParallelGroup] = make(map[ID]bool)
		}
		members[d.ParallelGroup][d.ID] = true
	}

	for _, d := range descriptors {
		if d.ParallelGroup == 0 {
			continue
		}
		for _, depID := range d.Dependencies {
			if members[d.ParallelGroup][depID] {
				return wferrors.NewParallelGroupConflictError(d.ParallelGroup, string(d.ID), string(depID))
			}
		}
	}
	return nil
}

// Len returns the number of tasks in the graph
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns all task ids in discovery order
func (g *Graph) IDs() []ID {
	return append([]ID(nil), g.order...)
}

// Task retrieves a task by its ID
func (g *Graph) Task(id ID) (*Task, bool) {
	task, ok := g.tasks[id]
	return task, ok
}

// Tasks returns every task in discovery order
func (g *Graph) Tasks() []*Task {
	tasks := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		tasks = append(tasks, g.tasks[id])
	}
	return tasks
}

// WithStatus returns the tasks currently in the given status, in discovery order
func (g *Graph) WithStatus(status Status) []*Task {
	var tasks []*Task
	for _, id := range g.order {
		if task := g.tasks[id]; task.Status == status {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// SetStatus moves a task to a new status, enforcing CanTransition.
func (g *Graph) SetStatus(id ID, status Status) error {
	task, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if !CanTransition(task.Status, status) {
		return fmt.Errorf("task %s cannot move from %s to %s", id, task.Status, status)
	}
	task.Status = status
	return nil
}

// Finals returns the tasks nothing depends on, in discovery order
func (g *Graph) Finals() []*Task {
	var finals []*Task
	for _, id := range g.order {
		if task := g.tasks[id]; len(task.Dependents) == 0 {
			finals = append(finals, task)
		}
	}
	return finals
}

// AllCompleted returns true if every task has completed successfully
func (g *Graph) AllCompleted() bool {
	for _, task := range g.tasks {
		if task.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// HasFailed returns true if any task has failed
func (g *Graph) HasFailed() bool {
	for _, task := range g.tasks {
		if task.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Counts returns the number of tasks per status
func (g *Graph) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, task := range g.tasks {
		counts[task.Status]++
	}
	return counts
}

// Snapshot returns copies of every task in discovery order
func (g *Graph) Snapshot() []Task {
	snapshot := make([]Task, 0, len(g.order))
	for _, id := range g.order {
		snapshot = append(snapshot, g.tasks[id].Snapshot())
	}
	return snapshot
}
