package executor

import (
	"context"

	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/logger"
)

// Unit executes a single task attempt.
type Unit struct {
	generator Generator
}

func NewUnit(generator Generator) *Unit {
	return &Unit{generator: generator}
}

// Execute builds the prompt for task and waits for the generator's answer.
// A generator failure is returned as an EXECUTION error wrapping the cause.
func (u *Unit) Execute(ctx context.Context, task dag.Task, deps []DependencyOutput) (string, error) {
	prompt := BuildPrompt(task, deps)

	logger.Op.WithFields(map[string]interface{}{
		"task_id":      string(task.ID),
		"dependencies": len(deps),
		"prompt_bytes": len(prompt),
	}).Debug("Invoking generator")

	output, err := u.generator.Generate(ctx, prompt)
	if err != nil {
		return "", wferrors.NewExecutionError(string(task.ID), err)
	}
	return output, nil
}
