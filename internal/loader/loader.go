package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/workflow"
	"gopkg.in/yaml.v3"
)

// Format is a descriptor file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// Document is the content of a descriptor file: the subtasks produced by
// decomposition and, optionally, their agents.
type Document struct {
	Tasks  []dag.Descriptor `json:"subtasks" yaml:"subtasks"`
	Agents []workflow.Agent `json:"agents,omitempty" yaml:"agents,omitempty"`
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("unsupported descriptor file extension %q", filepath.Ext(path))
}

// LoadFile reads and parses a descriptor file.
func LoadFile(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, wferrors.NewConfigError(err.Error(), nil).
			WithContext("file", path).
			WithTroubleshooting("Use a .json, .yaml, .yml or .hcl file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wferrors.NewConfigError("Failed to read descriptor file", err).WithContext("file", path)
	}

	doc, err := Parse(data, format, path)
	if err != nil {
		return nil, wferrors.NewConfigError("Failed to parse descriptor file", err).WithContext("file", path)
	}

	logger.Op.WithFields(map[string]interface{}{
		"file":   path,
		"format": string(format),
		"tasks":  len(doc.Tasks),
		"agents": len(doc.Agents),
	}).Debug("Loaded descriptors")

	return doc, nil
}

// Parse decodes descriptor data. JSON and YAML accept either a bare list
// of tasks or a document with subtasks and agents.
func Parse(data []byte, format Format, filename string) (*Document, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatHCL:
		return parseHCL(data, filename)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func parseJSON(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []dag.Descriptor
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task list: %w", err)
		}
		return &Document{Tasks: tasks}, nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

func parseYAML(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return &Document{}, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var tasks []dag.Descriptor
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task list: %w", err)
		}
		return &Document{Tasks: tasks}, nil
	}

	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// LoadAgentsFile reads a standalone agent list (JSON or YAML).
func LoadAgentsFile(path string) ([]workflow.Agent, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, wferrors.NewConfigError(err.Error(), nil).WithContext("file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wferrors.NewConfigError("Failed to read agents file", err).WithContext("file", path)
	}

	var agents []workflow.Agent
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &agents)
	case FormatYAML:
		err = yaml.Unmarshal(data, &agents)
	case FormatHCL:
		var doc *Document
		doc, err = parseHCL(data, path)
		if doc != nil {
			agents = doc.Agents
		}
	}
	if err != nil {
		return nil, wferrors.NewConfigError("Failed to parse agents file", err).WithContext("file", path)
	}
	return agents, nil
}

// Normalize fills in defaults the decomposition step may omit. When
// mainTask is set it replaces every task's context. Unknown dependencies
// are left in place so graph construction can reject them.
func Normalize(descriptors []dag.Descriptor, mainTask string) []dag.Descriptor {
	out := make([]dag.Descriptor, len(descriptors))
	for i, d := range descriptors {
		if d.Dependencies == nil {
			d.Dependencies = []dag.ID{}
		}
		if d.ParallelGroup < 0 {
			d.ParallelGroup = 0
		}
		if mainTask != "" {
			d.Context = mainTask
		}
		out[i] = d
	}
	return out
}
