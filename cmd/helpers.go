package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/loader"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/workflow"
	"github.com/spf13/cobra"
)

// loadInputs reads the descriptor file and, when given, a separate agents
// file. Agents in the agents file replace any listed in the descriptor
// file.
func loadInputs(tasksPath, agentsPath, mainTask string) ([]dag.Descriptor, []workflow.Agent, error) {
	if tasksPath == "" {
		return nil, nil, wferrors.NewConfigError("No descriptor file given", nil).
			WithTroubleshooting("Pass the decomposed subtasks with --tasks FILE")
	}

	doc, err := loader.LoadFile(tasksPath)
	if err != nil {
		return nil, nil, err
	}

	agents := doc.Agents
	if agentsPath != "" {
		agents, err = loader.LoadAgentsFile(agentsPath)
		if err != nil {
			return nil, nil, err
		}
	}

	logger.Op.WithFields(map[string]interface{}{
		"file":   tasksPath,
		"tasks":  len(doc.Tasks),
		"agents": len(agents),
	}).Debug("Loaded workflow inputs")

	return loader.Normalize(doc.Tasks, mainTask), agents, nil
}

// bindFlag exposes a command flag to viper under key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := settings.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
