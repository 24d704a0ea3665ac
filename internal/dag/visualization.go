package dag

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// GenerateDOTGraph renders the graph in Graphviz DOT format. Members of a
// non-zero parallel group are drawn inside one cluster and every task is
// colored by its current status.
func (g *Graph) GenerateDOTGraph() string {
	var sb strings.Builder
	sb.WriteString("digraph Workflow {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=filled];\n\n")

	groups := make(map[int][]*Task)
	for _, task := range g.Tasks() {
		groups[task.ParallelGroup] = append(groups[task.ParallelGroup], task)
	}

	for _, task := range groups[0] {
		sb.WriteString(dotNode(task, "  "))
	}

	groupIDs := make([]int, 0, len(groups))
	for id := range groups {
		if id != 0 {
			groupIDs = append(groupIDs, id)
		}
	}
	sort.Ints(groupIDs)

	for _, id := range groupIDs {
		sb.WriteString(fmt.Sprintf("\n  subgraph cluster_group_%d {\n", id))
		sb.WriteString(fmt.Sprintf("    label=\"parallel group %d\";\n", id))
		sb.WriteString("    style=dashed;\n")
		for _, task := range groups[id] {
			sb.WriteString(dotNode(task, "    "))
		}
		sb.WriteString("  }\n")
	}

	sb.WriteString("\n")
	for _, task := range g.Tasks() {
		for _, depID := range task.Dependencies {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", string(depID), string(task.ID)))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// ExportToDOT writes the DOT rendering to a file
func (g *Graph) ExportToDOT(filename string) error {
	return os.WriteFile(filename, []byte(g.GenerateDOTGraph()), 0644)
}

func dotNode(task *Task, indent string) string {
	color := "white"
	switch task.Status {
	case StatusPending:
		color = "lightgrey"
	case StatusReady:
		color = "lightyellow"
	case StatusRunning:
		color = "lightblue"
	case StatusCompleted:
		color = "lightgreen"
	case StatusFailed:
		color = "salmon"
	}

	label := string(task.ID)
	if task.Description != "" {
		description := task.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}
		label += "\\n" + strings.ReplaceAll(description, `"`, `'`)
	}

	return fmt.Sprintf("%s%q [label=\"%s\", fillcolor=\"%s\"];\n", indent, string(task.ID), label, color)
}
