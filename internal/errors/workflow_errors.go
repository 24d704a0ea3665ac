package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryValidation represents task graph validation errors
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
	// ErrorCategoryExecution represents a single failed task attempt
	ErrorCategoryExecution ErrorCategory = "EXECUTION"
	// ErrorCategoryRetry represents a task that used up its attempts
	ErrorCategoryRetry ErrorCategory = "RETRY"
)

// WorkflowError represents a structured error with context and troubleshooting information
type WorkflowError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error returns CATEGORY-CODE: message, followed by the cause when there
// is one. FormatForCLI renders the full detail.
func (e *WorkflowError) Error() string {
	msg := fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message)
	if e.OriginalError != nil {
		msg += ": " + e.OriginalError.Error()
	}
	return msg
}

// Unwrap returns the original error for error chain compatibility
func (e *WorkflowError) Unwrap() error {
	return e.OriginalError
}

// NewWorkflowError creates a new workflow error with the specified parameters
func NewWorkflowError(category ErrorCategory, code, message, operation string) *WorkflowError {
	return &WorkflowError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *WorkflowError) WithContext(key string, value interface{}) *WorkflowError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *WorkflowError) WithTroubleshooting(steps ...string) *WorkflowError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the workflow error
func (e *WorkflowError) WithOriginalError(err error) *WorkflowError {
	e.OriginalError = err
	return e
}

// AsWorkflowError finds the first WorkflowError in err's chain.
func AsWorkflowError(err error) (*WorkflowError, bool) {
	var wfErr *WorkflowError
	if stderrors.As(err, &wfErr) {
		return wfErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain holds a WorkflowError with the given category and code.
func HasCode(err error, category ErrorCategory, code string) bool {
	wfErr, ok := AsWorkflowError(err)
	return ok && wfErr.Category == category && wfErr.Code == code
}

// Common error constructors

// NewValidationError creates a new validation error
func NewValidationError(code, message, operation string) *WorkflowError {
	return NewWorkflowError(ErrorCategoryValidation, code, message, operation)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message, operation string) *WorkflowError {
	return NewWorkflowError(ErrorCategoryConfiguration, code, message, operation)
}
