package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wantDiamond = []dag.Descriptor{
	{ID: "1", Description: "Outline", Context: "Write a post", Dependencies: []dag.ID{}},
	{ID: "2", Description: "Intro", Context: "Write a post", Dependencies: []dag.ID{"1"}, ParallelGroup: 1},
	{ID: "3", Description: "Body", Context: "Write a post", Dependencies: []dag.ID{"1"}, ParallelGroup: 1, RetryLimit: 5},
	{ID: "4", Description: "Merge", Context: "Write a post", Dependencies: []dag.ID{"2", "3"}},
}

const diamondJSON = `[
  {"id": 1, "description": "Outline", "context": "Write a post", "dependencies": [], "parallel_group": 0},
  {"id": 2, "description": "Intro", "context": "Write a post", "dependencies": [1], "parallel_group": 1},
  {"id": "3", "description": "Body", "context": "Write a post", "dependencies": ["1"], "parallel_group": 1, "retry_limit": 5},
  {"id": 4, "description": "Merge", "context": "Write a post", "dependencies": [2, 3]}
]`

const diamondYAML = `
subtasks:
  - id: 1
    description: Outline
    context: Write a post
    dependencies: []
  - id: 2
    description: Intro
    context: Write a post
    dependencies: [1]
    parallel_group: 1
  - id: 3
    description: Body
    context: Write a post
    dependencies: [1]
    parallel_group: 1
    retry_limit: 5
  - id: 4
    description: Merge
    context: Write a post
    dependencies: [2, 3]
agents:
  - id: writer
    taskId: 1
    status: idle
`

const diamondHCL = `
task "1" {
  description  = "Outline"
  context      = "Write a post"
  dependencies = []
}

task "2" {
  description    = "Intro"
  context        = "Write a post"
  dependencies   = ["1"]
  parallel_group = 1
}

task "3" {
  description    = "Body"
  context        = "Write a post"
  dependencies   = ["1"]
  parallel_group = 1
  retry_limit    = 5
}

task "4" {
  description  = "Merge"
  context      = "Write a post"
  dependencies = ["2", "3"]
}

agent "writer" {
  task_id = "1"
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Formats(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantAgents []workflow.Agent
	}{
		{"json list", "tasks.json", diamondJSON, nil},
		{"yaml document", "tasks.yaml", diamondYAML, []workflow.Agent{{ID: "writer", TaskID: "1", Status: "idle"}}},
		{"hcl", "tasks.hcl", diamondHCL, []workflow.Agent{{ID: "writer", TaskID: "1", Status: "idle"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			got := Normalize(doc.Tasks, "")
			if diff := cmp.Diff(wantDiamond, got); diff != "" {
				t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantAgents, doc.Agents)
		})
	}
}

func TestParse_JSONDocument(t *testing.T) {
	data := []byte(`{
  "subtasks": [{"id": "a", "description": "only"}],
  "agents": [{"id": "agent-1", "taskId": "a", "status": "idle"}]
}`)

	doc, err := Parse(data, FormatJSON, "")
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, dag.ID("a"), doc.Tasks[0].ID)
	assert.Nil(t, doc.Tasks[0].Dependencies)
	assert.Equal(t, []workflow.Agent{{ID: "agent-1", TaskID: "a", Status: "idle"}}, doc.Agents)
}

func TestParse_YAMLList(t *testing.T) {
	data := []byte("- id: x\n  description: first\n- id: y\n  description: second\n  dependencies: [x]\n")

	doc, err := Parse(data, FormatYAML, "")
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, []dag.ID{"x"}, doc.Tasks[1].Dependencies)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`[{"id": true}]`), FormatJSON, "")
	assert.Error(t, err)

	_, err = Parse([]byte("subtasks: [unclosed"), FormatYAML, "")
	assert.Error(t, err)

	_, err = Parse([]byte(`task "1" {}`), FormatHCL, "bad.hcl")
	assert.Error(t, err, "description is required")

	_, err = Parse([]byte(`{}`), Format("toml"), "")
	assert.Error(t, err)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(writeFile(t, "tasks.txt", "[]"))
	require.Error(t, err)
	assert.True(t, wferrors.IsUserError(err))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, wferrors.HasCode(err, wferrors.ErrorCategoryConfiguration, wferrors.CodeConfigLoad))
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json": FormatJSON,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
		"a.hcl":  FormatHCL,
	} {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("a")
	assert.Error(t, err)
}

func TestLoadAgentsFile(t *testing.T) {
	path := writeFile(t, "agents.json", `[{"id": "agent-1", "taskId": 1, "status": "idle"}]`)

	agents, err := LoadAgentsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []workflow.Agent{{ID: "agent-1", TaskID: "1", Status: "idle"}}, agents)

	path = writeFile(t, "agents.yml", "- id: agent-2\n  taskId: b\n  status: idle\n")
	agents, err = LoadAgentsFile(path)
	require.NoError(t, err)
	assert.Equal(t, dag.ID("b"), agents[0].TaskID)
}

func TestNormalize(t *testing.T) {
	in := []dag.Descriptor{
		{ID: "1", Context: "old"},
		{ID: "2", Dependencies: []dag.ID{"1", "missing"}, ParallelGroup: -2},
	}

	out := Normalize(in, "Plan a trip")

	assert.Equal(t, []dag.ID{}, out[0].Dependencies)
	assert.Equal(t, "Plan a trip", out[0].Context)
	assert.Equal(t, "Plan a trip", out[1].Context)
	assert.Equal(t, 0, out[1].ParallelGroup)
	assert.Equal(t, []dag.ID{"1", "missing"}, out[1].Dependencies, "unknown ids are kept for validation")

	// The input is left untouched.
	assert.Equal(t, "old", in[0].Context)
	assert.Nil(t, in[0].Dependencies)
}
