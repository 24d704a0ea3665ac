package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/maxkimambo/subflow/internal/config"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/journal"
	"github.com/maxkimambo/subflow/internal/utils"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "Show runs and events recorded in the journal",
	Long: `Lists the runs recorded by 'subflow run --journal', newest first. With a run id,
prints every event of that run in order.

Example:
subflow history --journal runs.db
subflow history --journal runs.db 3f0c2a9e-6a4b-4c55-9d8e-0b7f1a2c3d4e
`,
	Args: cobra.MaximumNArgs(1),
	RunE: showHistory,
}

func init() {
	historyCmd.Flags().String("journal", "", "SQLite journal file (required unless journal.path is configured)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settings, cfgFile)
	if err != nil {
		return err
	}
	path := cfg.Journal.Path
	if flag, _ := cmd.Flags().GetString("journal"); flag != "" {
		path = flag
	}
	if path == "" {
		return wferrors.NewConfigError("No journal file given", nil).
			WithTroubleshooting("Pass --journal FILE or set journal.path in the config file")
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		recorded, err := j.Events(args[0])
		if err != nil {
			return err
		}
		if len(recorded) == 0 {
			return fmt.Errorf("no events recorded for run %s", args[0])
		}

		table := utils.NewTableFormatter([]string{"Time", "Event", "Task", "Status", "Attempt", "Detail"})
		for _, e := range recorded {
			detail := e.Error
			if detail == "" {
				detail = e.Output
			}
			attempt := ""
			if e.Attempt > 0 {
				attempt = strconv.Itoa(e.Attempt)
			}
			table.AddRow([]string{
				e.Time.Local().Format(time.TimeOnly),
				string(e.Name),
				string(e.TaskID),
				e.Status.String(),
				attempt,
				utils.Truncate(detail, 50),
			})
		}
		fmt.Fprintln(out, table.String())
		return nil
	}

	runs, err := j.Runs(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	table := utils.NewTableFormatter([]string{"Run", "Started", "Events"})
	for _, r := range runs {
		table.AddRow([]string{r.RunID, r.StartedAt.Local().Format(time.DateTime), strconv.Itoa(r.Events)})
	}
	fmt.Fprintln(out, table.String())
	return nil
}
