package executor

import (
	"strings"

	"github.com/maxkimambo/subflow/internal/dag"
)

// DependencyOutput is a predecessor's stored result as seen by a dependent.
type DependencyOutput struct {
	ID          dag.ID
	Description string
	Output      string
}

// BuildPrompt assembles the text handed to the generator for one task.
// Dependencies are rendered in the order given.
func BuildPrompt(task dag.Task, deps []DependencyOutput) string {
	var b strings.Builder

	b.WriteString("\nTask: ")
	b.WriteString(task.Description)
	b.WriteString("\nContext: ")
	b.WriteString(task.Context)
	b.WriteString("\n\nYour job is to complete this specific subtask as part of a larger workflow.\n")

	if len(deps) > 0 {
		b.WriteString("\nHere are the results from previous tasks that you should incorporate:\n\n")
		for _, dep := range deps {
			b.WriteString("Task ")
			b.WriteString(string(dep.ID))
			b.WriteString(" (")
			b.WriteString(dep.Description)
			b.WriteString("):\n")
			b.WriteString(dep.Output)
			b.WriteString("\n\n")
		}
		b.WriteString("Use the above information to complete your task. Make sure your response builds upon these previous results.\n")
	}

	b.WriteString("\nPlease provide a concise, helpful response that completes this specific subtask:")
	return b.String()
}
