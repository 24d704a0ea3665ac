package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Publish(event string, payload any) {
	m.Called(event, payload)
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(nil)

	var got []string
	bus.Subscribe(TaskStart, func(e Event) { got = append(got, "first:"+string(e.TaskID)) })
	bus.SubscribeAll(func(e Event) { got = append(got, "all:"+string(e.Name)) })
	bus.Subscribe(TaskStart, func(e Event) { got = append(got, "second:"+string(e.TaskID)) })
	bus.Subscribe(TaskSuccess, func(e Event) { got = append(got, "never") })

	bus.Emit(Event{Name: TaskStart, TaskID: "3"})

	want := []string{"first:3", "second:3", "all:task-start"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listener calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_BroadcastsOnlyStatusChanges(t *testing.T) {
	b := &MockBroadcaster{}
	change := Event{Name: StatusChange, TaskID: "1", Status: dag.StatusReady, Description: "Outline"}
	b.On("Publish", "status-change", change).Once()

	bus := NewBus(b)
	bus.Emit(Event{Name: WorkflowStart, RunID: "r1"})
	bus.Emit(Event{Name: TaskStart, TaskID: "1"})
	bus.Emit(change)
	bus.Emit(Event{Name: CriticalError, TaskID: "1"})

	b.AssertExpectations(t)
	b.AssertNumberOfCalls(t, "Publish", 1)
}

func TestBus_NilBroadcaster(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() {
		bus.Emit(Event{Name: StatusChange, TaskID: "1"})
	})
}
