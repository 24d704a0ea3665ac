package retry

import (
	"sync"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/logger"
)

// FailedTask represents a task that has permanently failed
type FailedTask struct {
	TaskID        dag.ID    `json:"task_id"`
	Description   string    `json:"description"`
	LastError     error     `json:"-"`
	ErrorMessage  string    `json:"error_message"`
	FailedAt      time.Time `json:"failed_at"`
	TotalAttempts int       `json:"total_attempts"`
}

// DeadLetterQueue stores tasks that have permanently failed after exhausting all attempts
type DeadLetterQueue struct {
	failed []*FailedTask
	mu     sync.RWMutex
}

// NewDeadLetterQueue creates an empty dead letter queue
func NewDeadLetterQueue() *DeadLetterQueue {
	return &DeadLetterQueue{
		failed: make([]*FailedTask, 0),
	}
}

// Add records a permanently failed task
func (q *DeadLetterQueue) Add(task *dag.Task, err error) *FailedTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := &FailedTask{
		TaskID:        task.ID,
		Description:   task.Description,
		LastError:     err,
		FailedAt:      time.Now(),
		TotalAttempts: task.Attempts,
	}
	if wfErr, ok := wferrors.AsWorkflowError(err); ok {
		entry.ErrorMessage = wfErr.Message
	} else if err != nil {
		entry.ErrorMessage = err.Error()
	}

	q.failed = append(q.failed, entry)

	logger.Op.WithFields(map[string]interface{}{
		"task_id":        string(task.ID),
		"total_attempts": task.Attempts,
		"error":          entry.ErrorMessage,
	}).Warn("Task permanently failed and added to dead letter queue")

	return entry
}

// List returns a copy of all failed tasks in the order they failed
func (q *DeadLetterQueue) List() []*FailedTask {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]*FailedTask, len(q.failed))
	copy(out, q.failed)
	return out
}

// Len returns the number of failed tasks in the queue
func (q *DeadLetterQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.failed)
}
