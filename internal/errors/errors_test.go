package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidDependencyError(t *testing.T) {
	err := NewInvalidDependencyError("3", "9")

	assert.Equal(t, ErrorCategoryValidation, err.Category)
	assert.Equal(t, CodeInvalidDependency, err.Code)
	assert.Equal(t, "3", err.Context["task"])
	assert.Equal(t, "9", err.Context["dependency"])
	assert.Contains(t, err.Error(), "Invalid dependency 9 for task 3")
	assert.True(t, IsUserError(err))
	assert.Equal(t, "VALIDATION-001", GetErrorCode(err))
}

func TestNewParallelGroupConflictError(t *testing.T) {
	err := NewParallelGroupConflictError(2, "b", "a")

	assert.True(t, HasCode(err, ErrorCategoryValidation, CodeParallelGroupConflict))
	assert.Contains(t, err.Error(), "Parallel group 2 contains dependent tasks")
	assert.NotEmpty(t, err.Troubleshooting)
}

func TestNewExecutionError_Unwraps(t *testing.T) {
	cause := stderrors.New("provider unavailable")
	err := NewExecutionError("t1", cause)

	assert.ErrorIs(t, err, cause)
	assert.False(t, IsUserError(err))
	assert.Equal(t, "EXECUTION-001", GetErrorCode(err))
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to build run: %w", NewDuplicateTaskError("x"))

	assert.True(t, HasCode(wrapped, ErrorCategoryValidation, CodeDuplicateTask))
	assert.False(t, HasCode(wrapped, ErrorCategoryValidation, CodeInvalidDependency))
	assert.False(t, HasCode(stderrors.New("plain"), ErrorCategoryValidation, CodeDuplicateTask))
}

func TestNewRetryExhaustedError(t *testing.T) {
	err := NewRetryExhaustedError("t2", 3, stderrors.New("boom"))

	assert.Equal(t, ErrorCategoryRetry, err.Category)
	assert.Equal(t, 3, err.Context["attempts"])
	assert.Contains(t, err.Message, "failed after 3 attempts: boom")
}

func TestNewConfigError_Codes(t *testing.T) {
	assert.Equal(t, CodeConfigInvalid, NewConfigError("bad value", nil).Code)
	assert.Equal(t, CodeConfigLoad, NewConfigError("unreadable", stderrors.New("eof")).Code)
}

func TestFormatForCLI(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "workflow error",
			err:  NewInvalidDependencyError("4", "7"),
			contains: []string{
				"[VALIDATION-001]",
				"Failed Operation: Task graph construction",
				"dependency: 7",
				"How to resolve:",
			},
		},
		{
			name:     "plain error",
			err:      stderrors.New("something broke"),
			contains: []string{"Error: something broke"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatForCLI(tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDisplayErrorSummary(t *testing.T) {
	summary := DisplayErrorSummary(NewDuplicateTaskError("a"))
	assert.Equal(t, "VALIDATION-003: Task a is declared more than once", summary)

	long := stderrors.New(string(make([]byte, 150)))
	require.Len(t, DisplayErrorSummary(long), 100)
}
