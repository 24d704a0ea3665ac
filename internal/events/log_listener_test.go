package events

import (
	"bytes"
	"os"
	"testing"

	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestAttachLogListener(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")
	logger.Setup(false, false, false)

	var user bytes.Buffer
	logger.SetOutput(&user, &bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stdout, os.Stderr) })

	bus := NewBus(nil)
	AttachLogListener(bus)

	bus.Emit(Event{Name: WorkflowStart, RunID: "r"})
	bus.Emit(Event{Name: TaskStart, TaskID: "1", Agent: "agent-1", Attempt: 1})
	bus.Emit(Event{Name: StatusChange, TaskID: "1"})
	bus.Emit(Event{Name: TaskRetry, TaskID: "1", Attempt: 1})
	bus.Emit(Event{Name: TaskSuccess, TaskID: "1"})
	bus.Emit(Event{Name: TaskFailure, TaskID: "2", Attempt: 3})
	bus.Emit(Event{Name: CriticalError, TaskID: "2", Error: "boom"})

	assert.Equal(t, "🚀 Workflow r started\n"+
		"Task 1 started by agent-1\n"+
		"🔁 Retrying task 1 (attempt 1)\n"+
		"✅ Task 1 completed\n"+
		"❌ Task 2 failed after 3 attempts\n"+
		"🚨 Critical error in 2: boom\n", user.String())
}
