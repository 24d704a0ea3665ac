package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/workflow"
)

// hclFile is the top-level structure of an HCL descriptor file:
//
//	task "1" {
//	  description    = "Outline the article"
//	  dependencies   = []
//	  parallel_group = 0
//	}
//
//	agent "agent-1" {
//	  task_id = "1"
//	}
type hclFile struct {
	Tasks  []*hclTask  `hcl:"task,block"`
	Agents []*hclAgent `hcl:"agent,block"`
}

type hclTask struct {
	ID            string   `hcl:"id,label"`
	Description   string   `hcl:"description"`
	Context       string   `hcl:"context,optional"`
	Dependencies  []string `hcl:"dependencies,optional"`
	ParallelGroup int      `hcl:"parallel_group,optional"`
	RetryLimit    int      `hcl:"retry_limit,optional"`
}

type hclAgent struct {
	ID     string `hcl:"id,label"`
	TaskID string `hcl:"task_id"`
	Status string `hcl:"status,optional"`
}

func parseHCL(data []byte, filename string) (*Document, error) {
	if filename == "" {
		filename = "descriptors.hcl"
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	doc := &Document{
		Tasks: make([]dag.Descriptor, 0, len(parsed.Tasks)),
	}
	for _, t := range parsed.Tasks {
		deps := make([]dag.ID, 0, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			deps = append(deps, dag.ID(dep))
		}
		doc.Tasks = append(doc.Tasks, dag.Descriptor{
			ID:            dag.ID(t.ID),
			Description:   t.Description,
			Context:       t.Context,
			Dependencies:  deps,
			ParallelGroup: t.ParallelGroup,
			RetryLimit:    t.RetryLimit,
		})
	}
	for _, a := range parsed.Agents {
		status := a.Status
		if status == "" {
			status = workflow.AgentIdle
		}
		doc.Agents = append(doc.Agents, workflow.Agent{
			ID:     a.ID,
			TaskID: dag.ID(a.TaskID),
			Status: status,
		})
	}

	return doc, nil
}
