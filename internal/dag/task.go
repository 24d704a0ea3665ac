package dag

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a task for the lifetime of a run.
type ID string

// UnmarshalJSON accepts both string and numeric ids, so [1, "2"] decodes to {"1", "2"}.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("task id must be a string or a number, got %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

// Descriptor is the caller-supplied description of one task, as produced by
// the decomposition step.
type Descriptor struct {
	ID            ID     `json:"id" yaml:"id"`
	Description   string `json:"description" yaml:"description"`
	Dependencies  []ID   `json:"dependencies" yaml:"dependencies"`
	ParallelGroup int    `json:"parallel_group" yaml:"parallel_group"`
	Context       string `json:"context" yaml:"context"`

	// RetryLimit overrides the run's default attempt limit when positive.
	RetryLimit int `json:"retry_limit,omitempty" yaml:"retry_limit,omitempty"`
}

// Task is one unit of work inside a Graph.
type Task struct {
	ID            ID
	Description   string
	Context       string
	Dependencies  []ID
	Dependents    []ID
	ParallelGroup int
	RetryLimit    int

	Status   Status
	Attempts int

	// Output holds the last successful result, or the failure payload once the
	// task has failed for good. Nil until either happens.
	Output any
}

// Sequential reports whether the task belongs to the sequential bucket.
func (t *Task) Sequential() bool {
	return t.ParallelGroup == 0
}

// Snapshot returns a copy of the task that shares no slices with the graph.
func (t *Task) Snapshot() Task {
	cp := *t
	cp.Dependencies = append([]ID(nil), t.Dependencies...)
	cp.Dependents = append([]ID(nil), t.Dependents...)
	return cp
}

func newTask(d Descriptor) *Task {
	return &Task{
		ID:            d.ID,
		Description:   d.Description,
		Context:       d.Context,
		Dependencies:  uniqueIDs(d.Dependencies),
		Dependents:    []ID{},
		ParallelGroup: d.ParallelGroup,
		RetryLimit:    d.RetryLimit,
		Status:        StatusPending,
	}
}

func uniqueIDs(ids []ID) []ID {
	seen := make(map[ID]bool, len(ids))
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
