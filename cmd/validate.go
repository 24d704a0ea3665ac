package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/utils"
	"github.com/spf13/cobra"
)

var dotFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a task list without executing it",
	Long: `Builds the task graph from a descriptor file and reports what a run would
reject: unknown dependencies, duplicate or empty ids, and parallel-group members
depending on each other. Tasks caught in a dependency cycle are reported as a
warning; a run would leave them pending.

Example:
subflow validate --tasks subtasks.json
subflow validate --tasks plan.yaml --dot plan.dot
`,
	RunE: validateWorkflow,
}

func init() {
	validateCmd.Flags().StringVarP(&tasksFile, "tasks", "t", "", "Descriptor file with the decomposed subtasks (json, yaml or hcl) (required)")
	validateCmd.Flags().StringVar(&dotFile, "dot", "", "Write the task graph in Graphviz DOT format to this file (optional)")

	if err := validateCmd.MarkFlagRequired("tasks"); err != nil {
		panic(fmt.Sprintf("Failed to mark tasks as required: %v", err))
	}
}

func validateWorkflow(cmd *cobra.Command, args []string) error {
	descriptors, _, err := loadInputs(tasksFile, "", "")
	if err != nil {
		return err
	}

	graph, err := dag.New(descriptors)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), validationReport(graph))

	if stuck := graph.CycleMembers(); len(stuck) > 0 {
		logger.User.Warnf("%d task(s) can never become ready because of a dependency cycle", len(stuck))
	}

	if dotFile != "" {
		if err := graph.ExportToDOT(dotFile); err != nil {
			return fmt.Errorf("failed to write DOT file: %w", err)
		}
		logger.User.Successf("Task graph written to %s", dotFile)
	}
	return nil
}

func validationReport(graph *dag.Graph) string {
	groups := make(map[int][]string)
	sequential := 0
	for _, task := range graph.Tasks() {
		if task.Sequential() {
			sequential++
			continue
		}
		groups[task.ParallelGroup] = append(groups[task.ParallelGroup], string(task.ID))
	}

	finals := make([]string, 0)
	for _, task := range graph.Finals() {
		finals = append(finals, string(task.ID))
	}

	rb := utils.NewReportBuilder().
		Header("Workflow validation").
		AddKeyValue("Tasks", strconv.Itoa(graph.Len())).
		AddKeyValue("Sequential tasks", strconv.Itoa(sequential)).
		AddKeyValue("Parallel groups", strconv.Itoa(len(groups))).
		AddKeyValue("Final tasks", strings.Join(finals, ", "))

	if len(groups) > 0 {
		rb.Section("Parallel groups")
		keys := make([]int, 0, len(groups))
		for g := range groups {
			keys = append(keys, g)
		}
		slices.Sort(keys)
		for _, g := range keys {
			rb.AddBullet(fmt.Sprintf("group %d: %s", g, strings.Join(groups[g], ", ")))
		}
	}

	if stuck := graph.CycleMembers(); len(stuck) > 0 {
		rb.Section("Warnings")
		for _, id := range stuck {
			rb.AddBullet(fmt.Sprintf("task %s is on or behind a dependency cycle", id))
		}
	}

	return rb.Build()
}
