package cmd

import (
	"fmt"
	"time"

	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/utils"
	"github.com/spf13/cobra"
)

var watchURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the status changes of a running workflow",
	Long: `Connects to a workflow started with 'subflow run --serve' and prints every
status change until interrupted.

Example:
subflow watch --url http://localhost:3001
subflow watch --url http://build-box:3001/events
`,
	RunE: watchWorkflow,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "http://localhost:3001", "Address of the event server, with an optional socket.io path")
}

func watchWorkflow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	out := cmd.OutOrStdout()
	logger.User.Infof("Watching %s", watchURL)

	return events.Watch(ctx, watchURL, func(e events.Event) {
		fmt.Fprintln(out, formatStatusChange(e))
	})
}

func formatStatusChange(e events.Event) string {
	line := fmt.Sprintf("%s  %s  task %-4s %-9s", e.Time.Local().Format(time.TimeOnly), e.RunID, e.TaskID, e.Status)
	if e.Output != "" {
		line += "  " + utils.Truncate(e.Output, 60)
	}
	return line
}
