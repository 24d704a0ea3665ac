package errors

import (
	"fmt"
	"strings"
)

// DisplayErrorSummary is a one-line form of err for logs.
func DisplayErrorSummary(err error) string {
	if wfErr, ok := AsWorkflowError(err); ok {
		return fmt.Sprintf("%s-%s: %s", wfErr.Category, wfErr.Code, wfErr.Message)
	}

	msg := err.Error()
	if len(msg) > 100 {
		return msg[:97] + "..."
	}
	return msg
}

// FormatForCLI renders err for the terminal: message, failed operation,
// context, resolution steps and the underlying cause.
func FormatForCLI(err error) string {
	wfErr, ok := AsWorkflowError(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nError [%s-%s]\n  %s\n", wfErr.Category, wfErr.Code, wfErr.Message)

	if wfErr.Operation != "" {
		fmt.Fprintf(&sb, "\nFailed Operation: %s\n", wfErr.Operation)
	}

	if len(wfErr.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range sortedKeys(wfErr.Context) {
			fmt.Fprintf(&sb, "  %s: %v\n", key, wfErr.Context[key])
		}
	}

	if len(wfErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range wfErr.Troubleshooting {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
		}
	}

	if wfErr.OriginalError != nil {
		fmt.Fprintf(&sb, "\nCause: %v\n", wfErr.OriginalError)
	}

	return sb.String()
}

// IsUserError reports whether err stems from input or configuration
// rather than from a task execution.
func IsUserError(err error) bool {
	if wfErr, ok := AsWorkflowError(err); ok {
		return wfErr.Category == ErrorCategoryValidation ||
			wfErr.Category == ErrorCategoryConfiguration
	}
	return false
}

// GetErrorCode returns CATEGORY-CODE, or UNKNOWN for foreign errors.
func GetErrorCode(err error) string {
	if wfErr, ok := AsWorkflowError(err); ok {
		return fmt.Sprintf("%s-%s", wfErr.Category, wfErr.Code)
	}
	return "UNKNOWN"
}
