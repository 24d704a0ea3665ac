package workflow

import (
	"fmt"

	"github.com/maxkimambo/subflow/internal/dag"
)

const AgentIdle = "idle"

// Agent is informational metadata associated with one task. Its status
// mirrors the task's status once the run starts.
type Agent struct {
	ID     string `json:"id" yaml:"id"`
	TaskID dag.ID `json:"taskId" yaml:"taskId"`
	Status string `json:"status" yaml:"status"`
}

// CreateAgents returns one idle agent per descriptor, named agent-1,
// agent-2, ... in descriptor order.
func CreateAgents(descriptors []dag.Descriptor) []Agent {
	agents := make([]Agent, 0, len(descriptors))
	for i, d := range descriptors {
		agents = append(agents, Agent{
			ID:     fmt.Sprintf("agent-%d", i+1),
			TaskID: d.ID,
			Status: AgentIdle,
		})
	}
	return agents
}
