package utils

import (
	"fmt"
	"strconv"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/retry"
	"github.com/maxkimambo/subflow/internal/workflow"
)

const descriptionWidth = 40

// TaskTable renders one row per task: id, description, group, status,
// attempts and agent.
func TaskTable(tasks []dag.Task, agents []workflow.Agent) string {
	agentByTask := make(map[dag.ID]string, len(agents))
	for _, agent := range agents {
		agentByTask[agent.TaskID] = agent.ID
	}

	table := NewTableFormatter([]string{"ID", "Description", "Group", "Status", "Attempts", "Agent"})
	for _, task := range tasks {
		group := "seq"
		if !task.Sequential() {
			group = strconv.Itoa(task.ParallelGroup)
		}
		table.AddRow([]string{
			string(task.ID),
			Truncate(task.Description, descriptionWidth),
			group,
			task.Status.String(),
			strconv.Itoa(task.Attempts),
			agentByTask[task.ID],
		})
	}
	return table.String()
}

// ResultBox renders the outputs of a completed run.
func ResultBox(result *workflow.Result) *Box {
	box := NewBox(SuccessMessage, fmt.Sprintf("Workflow %s completed in %s", result.RunID, result.Duration.Round(1e6)))
	for _, out := range result.Outputs {
		box.AddLine("")
		box.AddLine(fmt.Sprintf("Task %s (%s):", out.TaskID, out.Description))
		box.AddText(out.Output)
	}
	return box
}

// FailureBox renders the notice for a run without an aggregate result.
func FailureBox(runID string, tasks []dag.Task, failed []*retry.FailedTask) *Box {
	var stranded int
	for _, task := range tasks {
		if task.Status == dag.StatusPending {
			stranded++
		}
	}

	box := NewBox(ErrorMessage, fmt.Sprintf("Workflow %s did not complete", runID))
	for _, f := range failed {
		box.AddBullet(fmt.Sprintf("Task %s failed after %d attempts: %s", f.TaskID, f.TotalAttempts, f.ErrorMessage))
	}
	if stranded > 0 {
		box.AddLine(fmt.Sprintf("%d task(s) never became ready", stranded))
	}
	return box
}
