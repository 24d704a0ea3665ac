package cmd

import (
	"fmt"
	"os"

	"github.com/maxkimambo/subflow/internal/config"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool
	quiet    bool
	version  = "v0.1.0"

	// settings collects defaults, SUBFLOW_* env vars, the config file and
	// bound flags.
	settings = config.New()

	rootCmd = &cobra.Command{
		Use:   "subflow",
		Short: "Run decomposed subtasks as a dependency-ordered workflow",
		Long: `subflow executes a list of subtasks, produced by decomposing a larger task,
as a dependency-ordered workflow. Each subtask is sent to a text-generation
provider together with the outputs of the subtasks it depends on. Tasks that
share a parallel group run concurrently, failures are retried, and every status
change can be broadcast to socket.io observers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose, jsonLogs, quiet)
		},
	}
)

// Execute runs the root command and prints any returned error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"code":       wferrors.GetErrorCode(err),
			"user_error": wferrors.IsUserError(err),
		}).Debug(wferrors.DisplayErrorSummary(err))
		fmt.Fprint(os.Stderr, wferrors.FormatForCLI(err))
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}
