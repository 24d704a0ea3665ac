package progress

import (
	"testing"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/stretchr/testify/assert"
)

func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func tasks() []dag.Task {
	return []dag.Task{
		{ID: "1"},
		{ID: "2", ParallelGroup: 1},
		{ID: "3", ParallelGroup: 1},
		{ID: "4"},
	}
}

func TestTracker_FollowsEvents(t *testing.T) {
	clock, advance := fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tracker := NewTracker(tasks())
	tracker.now = clock

	bus := events.NewBus(nil)
	tracker.Attach(bus)

	bus.Emit(events.Event{Name: events.WorkflowStart})
	bus.Emit(events.Event{Name: events.StatusChange, TaskID: "1", Status: dag.StatusCompleted})
	bus.Emit(events.Event{Name: events.StatusChange, TaskID: "2", Status: dag.StatusRunning})
	bus.Emit(events.Event{Name: events.StatusChange, TaskID: "3", Status: dag.StatusFailed})
	bus.Emit(events.Event{Name: events.TaskRetry, TaskID: "3"})
	bus.Emit(events.Event{Name: events.StatusChange, TaskID: "unknown", Status: dag.StatusRunning})
	advance(10 * time.Second)

	info := tracker.Info()
	assert.Equal(t, 4, info.TotalTasks)
	assert.Equal(t, 1, info.CompletedTasks)
	assert.Equal(t, 1, info.FailedTasks)
	assert.Equal(t, 1, info.PendingTasks)
	assert.Equal(t, []dag.ID{"2"}, info.RunningTasks)
	assert.Equal(t, 1, info.Retries)
	assert.Equal(t, 10*time.Second, info.ElapsedTime)
	assert.Equal(t, 30*time.Second, info.EstimatedTimeLeft)
	assert.Equal(t, GroupStats{Total: 2, Completed: 1, Pending: 1}, info.GroupBreakdown[0])
	assert.Equal(t, GroupStats{Total: 2, Failed: 1, Running: 1}, info.GroupBreakdown[1])
}

func TestTracker_ShouldReport(t *testing.T) {
	clock, advance := fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tracker := NewTracker(tasks())
	tracker.now = clock
	tracker.lastReportTime = clock()
	tracker.SetInterval(2 * time.Second)

	assert.False(t, tracker.ShouldReport())
	advance(2 * time.Second)
	assert.True(t, tracker.ShouldReport())

	tracker.Report()
	assert.False(t, tracker.ShouldReport())
}

func TestFormatReport(t *testing.T) {
	info := ProgressInfo{
		TotalTasks:        4,
		CompletedTasks:    1,
		RunningTasks:      []dag.ID{"2", "3"},
		Retries:           2,
		ElapsedTime:       90 * time.Second,
		EstimatedTimeLeft: 270 * time.Second,
		GroupBreakdown: map[int]GroupStats{
			0: {Total: 2, Completed: 1, Pending: 1},
			1: {Total: 2, Running: 2},
		},
	}

	expected := "Progress: 1/4 tasks completed (25.0%) | Elapsed: 1m 30s | ETA: 4m 30s" +
		"\n   Running: 2, 3" +
		"\n   Retries: 2" +
		"\n   Groups:" +
		"\n      sequential: 1/2 completed, 1 pending" +
		"\n      group 1: 0/2 completed, 2 running"

	assert.Equal(t, expected, FormatReport(info))
}

func TestCalculateETA(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateETA(0, 4, time.Minute))
	assert.Equal(t, time.Duration(0), CalculateETA(4, 4, time.Minute))
	assert.Equal(t, 3*time.Minute, CalculateETA(1, 4, time.Minute))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h 1m", FormatDuration(61*time.Minute))
}
