package errors

import (
	"fmt"
	"sort"
)

// Common error codes
const (
	// Validation error codes
	CodeInvalidDependency     = "001"
	CodeParallelGroupConflict = "002"
	CodeDuplicateTask         = "003"
	CodeEmptyTaskID           = "004"

	// Configuration error codes
	CodeConfigInvalid = "001"
	CodeConfigLoad    = "002"

	// Execution error codes
	CodeExecutionFailed = "001"

	// Retry error codes
	CodeRetryExhausted = "001"
)

// NewInvalidDependencyError creates an error for a dependency naming a task that does not exist
func NewInvalidDependencyError(taskID, dependencyID string) *WorkflowError {
	return NewValidationError(CodeInvalidDependency,
		fmt.Sprintf("Invalid dependency %s for task %s", dependencyID, taskID),
		"Task graph construction").
		WithContext("task", taskID).
		WithContext("dependency", dependencyID).
		WithTroubleshooting(
			"Check that every id listed in 'dependencies' is the id of another task in the same list",
			"Ids are compared as text: 2 and \"2\" are the same id, \"02\" is not",
		)
}

// NewParallelGroupConflictError creates an error for two members of one parallel group that depend on each other
func NewParallelGroupConflictError(group int, taskID, dependencyID string) *WorkflowError {
	return NewValidationError(CodeParallelGroupConflict,
		fmt.Sprintf("Parallel group %d contains dependent tasks", group),
		"Parallel group validation").
		WithContext("group", group).
		WithContext("task", taskID).
		WithContext("dependency", dependencyID).
		WithTroubleshooting(
			"Tasks in the same parallel group must not depend on each other",
			"Move one of the tasks to a different group or to the sequential group (0)",
		)
}

// NewDuplicateTaskError creates an error for a task id that appears more than once
func NewDuplicateTaskError(taskID string) *WorkflowError {
	return NewValidationError(CodeDuplicateTask,
		fmt.Sprintf("Task %s is declared more than once", taskID),
		"Task graph construction").
		WithContext("task", taskID)
}

// NewEmptyTaskIDError creates an error for a task without an id
func NewEmptyTaskIDError(position int) *WorkflowError {
	return NewValidationError(CodeEmptyTaskID,
		fmt.Sprintf("Task at position %d has no id", position),
		"Task graph construction").
		WithContext("position", position)
}

// NewExecutionError wraps a failed text generation call for one task attempt
func NewExecutionError(taskID string, cause error) *WorkflowError {
	return NewWorkflowError(ErrorCategoryExecution, CodeExecutionFailed,
		fmt.Sprintf("Failed to execute task %s: %v", taskID, cause),
		"Task execution").
		WithContext("task", taskID).
		WithOriginalError(cause)
}

// NewRetryExhaustedError describes a task that failed on its final allowed attempt
func NewRetryExhaustedError(taskID string, attempts int, cause error) *WorkflowError {
	return NewWorkflowError(ErrorCategoryRetry, CodeRetryExhausted,
		fmt.Sprintf("Task %s failed after %d attempts: %v", taskID, attempts, cause),
		"Task retry").
		WithContext("task", taskID).
		WithContext("attempts", attempts).
		WithOriginalError(cause).
		WithTroubleshooting(
			"Inspect the task-retry events for the error of each attempt",
			"Check that the text generation provider is reachable and the API key is valid",
			"Raise retry_limit for the task if the provider fails intermittently",
		)
}

// NewConfigError creates an error for an invalid or unreadable configuration
func NewConfigError(message string, cause error) *WorkflowError {
	code := CodeConfigInvalid
	if cause != nil {
		code = CodeConfigLoad
	}
	return NewConfigurationError(code, message, "Configuration").
		WithOriginalError(cause)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
