package retry

import (
	"github.com/maxkimambo/subflow/internal/dag"
)

// DefaultLimit is the number of attempts a task gets when nothing overrides it.
const DefaultLimit = 3

// Decision is the outcome of consulting the policy after a failed attempt.
type Decision int

const (
	// DecisionRetry sends the task back to pending for another attempt
	DecisionRetry Decision = iota
	// DecisionFail marks the task failed for good
	DecisionFail
)

// String returns a string representation of the Decision
func (d Decision) String() string {
	if d == DecisionRetry {
		return "retry"
	}
	return "fail"
}

// Policy bounds the number of attempts per task. There is no backoff: a
// retried task is eligible again on the very next scheduling pass.
type Policy struct {
	DefaultLimit int `json:"default_limit"`

	overrides map[dag.ID]int
}

// NewDefaultPolicy creates a policy allowing DefaultLimit attempts per task
func NewDefaultPolicy() *Policy {
	return NewPolicy(DefaultLimit)
}

// NewPolicy creates a policy with a custom default limit. Values below one
// fall back to DefaultLimit.
func NewPolicy(limit int) *Policy {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Policy{
		DefaultLimit: limit,
		overrides:    make(map[dag.ID]int),
	}
}

// SetLimit overrides the limit for a single task. Non-positive limits remove the override.
func (p *Policy) SetLimit(id dag.ID, limit int) {
	if limit < 1 {
		delete(p.overrides, id)
		return
	}
	p.overrides[id] = limit
}

// Limit returns the attempt limit that applies to a task. An explicit
// SetLimit wins over the task's own RetryLimit, which wins over the default.
func (p *Policy) Limit(task *dag.Task) int {
	if limit, ok := p.overrides[task.ID]; ok {
		return limit
	}
	if task.RetryLimit > 0 {
		return task.RetryLimit
	}
	return p.DefaultLimit
}

// ShouldRetry returns true if the task still has attempts left. attempts is
// the count after the failure being judged has been recorded.
func (p *Policy) ShouldRetry(task *dag.Task, attempts int) bool {
	return attempts < p.Limit(task)
}

// Decide maps a recorded failure count to a decision.
func (p *Policy) Decide(task *dag.Task, attempts int) Decision {
	if p.ShouldRetry(task, attempts) {
		return DecisionRetry
	}
	return DecisionFail
}
