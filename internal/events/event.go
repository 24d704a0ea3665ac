package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
)

// Name identifies the kind of an event.
type Name string

const (
	WorkflowStart Name = "workflow-start"
	StatusChange  Name = "status-change"
	TaskStart     Name = "task-start"
	TaskSuccess   Name = "task-success"
	TaskRetry     Name = "task-retry"
	TaskFailure   Name = "task-failure"
	CriticalError Name = "critical-error"
)

// Event is one notification emitted by a workflow run. Fields that do not
// apply to a given Name are left zero.
type Event struct {
	Name        Name       `json:"event"`
	RunID       string     `json:"executionId"`
	TaskID      dag.ID     `json:"taskId,omitempty"`
	Status      dag.Status `json:"status"`
	Output      string     `json:"output,omitempty"`
	Description string     `json:"description,omitempty"`
	Agent       string     `json:"agent,omitempty"`
	Attempt     int        `json:"attempt,omitempty"`
	Error       string     `json:"error,omitempty"`
	Time        time.Time  `json:"timestamp"`
}

// FormatOutput renders a task output as text. Strings pass through and
// structured values are encoded as JSON.
func FormatOutput(v any) string {
	switch out := v.(type) {
	case nil:
		return ""
	case string:
		return out
	case fmt.Stringer:
		return out.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
