package events

import "github.com/maxkimambo/subflow/internal/logger"

// AttachLogListener reports task lifecycle events to the user log.
func AttachLogListener(bus *Bus) {
	bus.Subscribe(WorkflowStart, func(e Event) {
		logger.User.Startingf("Workflow %s started", e.RunID)
	})
	bus.Subscribe(TaskStart, func(e Event) {
		logger.User.Infof("Task %s started by %s", e.TaskID, e.Agent)
	})
	bus.Subscribe(TaskSuccess, func(e Event) {
		logger.User.Successf("Task %s completed", e.TaskID)
	})
	bus.Subscribe(TaskRetry, func(e Event) {
		logger.User.Retryf("Retrying task %s (attempt %d)", e.TaskID, e.Attempt)
	})
	bus.Subscribe(CriticalError, func(e Event) {
		logger.User.Criticalf("Critical error in %s: %s", e.TaskID, e.Error)
	})
	bus.Subscribe(TaskFailure, func(e Event) {
		logger.User.Errorf("Task %s failed after %d attempts", e.TaskID, e.Attempt)
	})
}
