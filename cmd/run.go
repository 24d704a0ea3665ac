package cmd

import (
	"errors"
	"fmt"

	"github.com/maxkimambo/subflow/internal/config"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/maxkimambo/subflow/internal/journal"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/progress"
	"github.com/maxkimambo/subflow/internal/retry"
	"github.com/maxkimambo/subflow/internal/utils"
	"github.com/maxkimambo/subflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	tasksFile  string
	agentsFile string
	mainTask   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a decomposed task list as a workflow",
	Long: `Loads the subtasks produced by decomposition and executes them in dependency order.

Each subtask is sent to the configured provider with the main task and the
outputs of its dependencies. Tasks sharing a non-zero parallel group run
concurrently; failed tasks are retried up to the retry limit.

Example:
subflow run --tasks subtasks.json --provider echo
subflow run --tasks plan.yaml --agents agents.yaml --provider openai --model gpt-4o-mini --serve :3001
subflow run --tasks plan.hcl --task "Write a launch announcement" --journal runs.db
`,
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&tasksFile, "tasks", "t", "", "Descriptor file with the decomposed subtasks (json, yaml or hcl) (required)")
	runCmd.Flags().StringVar(&agentsFile, "agents", "", "Agent list file (optional, one agent per task is created otherwise)")
	runCmd.Flags().StringVar(&mainTask, "task", "", "Main task text, replaces every subtask's context (optional)")
	runCmd.Flags().Int("retry-limit", retry.DefaultLimit, "Attempts per task before it is marked failed")
	runCmd.Flags().String("provider", executor.DefaultProvider, fmt.Sprintf("Text-generation provider %v", executor.Providers))
	runCmd.Flags().String("model", "", "Model name for the provider (optional)")
	runCmd.Flags().String("serve", "", "Serve status changes over socket.io on this address, e.g. :3001 (optional)")
	runCmd.Flags().Duration("serve-wait", 0, "Wait up to this long for an observer to connect before starting (requires --serve)")
	runCmd.Flags().String("journal", "", "Append every event to this SQLite file (optional)")

	bindFlag(runCmd, "retry_limit", "retry-limit")
	bindFlag(runCmd, "provider.name", "provider")
	bindFlag(runCmd, "provider.model", "model")
	bindFlag(runCmd, "broadcast.addr", "serve")
	bindFlag(runCmd, "broadcast.wait", "serve-wait")
	bindFlag(runCmd, "journal.path", "journal")

	if err := runCmd.MarkFlagRequired("tasks"); err != nil {
		panic(fmt.Sprintf("Failed to mark tasks as required: %v", err))
	}
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settings, cfgFile)
	if err != nil {
		return err
	}
	logger.Op.Debugf("Configuration: %+v", cfg)

	ctx, stop := signalContext(cmd)
	defer stop()

	descriptors, agents, err := loadInputs(tasksFile, agentsFile, mainTask)
	if err != nil {
		return err
	}

	generator, err := executor.NewGenerator(ctx, cfg.Provider)
	if err != nil {
		return err
	}

	var (
		broadcaster events.Broadcaster = events.NopBroadcaster{}
		server      *events.SocketIOBroadcaster
	)
	if cfg.Broadcast.Addr != "" {
		server = events.NewSocketIOBroadcaster(cfg.Broadcast.Path)
		addr, err := server.Listen(ctx, cfg.Broadcast.Addr)
		if err != nil {
			return fmt.Errorf("failed to start event server on %s: %w", cfg.Broadcast.Addr, err)
		}
		defer server.Shutdown(cfg.Broadcast.Linger)
		broadcaster = server
		logger.User.Infof("Broadcasting status changes on %s%s", addr, server.Path())
	}

	bus := events.NewBus(broadcaster)
	events.AttachLogListener(bus)

	run, err := workflow.New(descriptors, agents,
		workflow.WithGenerator(generator),
		workflow.WithRetryLimit(cfg.RetryLimit),
		workflow.WithBus(bus),
		workflow.WithIDGenerator(workflow.NewIDGenerator(cfg.RunID)),
	)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(run.Tasks())
	tracker.Attach(bus)
	bus.Subscribe(events.StatusChange, func(events.Event) {
		if tracker.ShouldReport() {
			logger.User.Info(tracker.Report())
		}
	})

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		j.Attach(bus)
	}

	if server != nil && cfg.Broadcast.Wait > 0 {
		logger.User.Infof("Waiting up to %s for an observer", cfg.Broadcast.Wait)
		if !server.WaitForObserver(ctx, cfg.Broadcast.Wait) {
			logger.User.Warn("No observer connected, starting anyway")
		}
	}

	logger.User.Infof("Provider: %s", cfg.Provider.Name)
	logger.User.Infof("Tasks: %d", len(descriptors))

	result, err := run.Start(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, utils.TaskTable(run.Tasks(), run.Agents()))

	if errors.Is(err, workflow.ErrIncomplete) {
		fmt.Fprintln(out, utils.FailureBox(run.ID(), run.Tasks(), run.DeadLetters()).Render())
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, utils.ResultBox(result).Render())
	logger.User.Successf("Workflow %s finished in %s", result.RunID, progress.FormatDuration(result.Duration))
	return nil
}
