package events

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSocketIOBroadcaster_Path(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/socket.io"},
		{"events", "/events"},
		{"/events/", "/events"},
	}

	for _, tt := range tests {
		b := NewSocketIOBroadcaster(tt.in)
		assert.Equal(t, tt.want, b.Path())
		assert.NotNil(t, b.Handler())
		require.NoError(t, b.Close())
	}
}

func captureOp(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")
	logger.Setup(false, false, false)

	var op bytes.Buffer
	logger.SetOutput(&bytes.Buffer{}, &op)
	t.Cleanup(func() { logger.SetOutput(os.Stdout, os.Stderr) })
	return &op
}

func TestSocketIOBroadcaster_PublishWithoutClients(t *testing.T) {
	op := captureOp(t)

	b := NewSocketIOBroadcaster("")
	defer b.Close()

	for i := 0; i < 3; i++ {
		b.Publish(string(StatusChange), Event{Name: StatusChange, TaskID: "1"})
	}
	assert.NotContains(t, op.String(), "Broadcast failed")
}

func TestSocketIOBroadcaster_PublishReservedNameFails(t *testing.T) {
	op := captureOp(t)

	b := NewSocketIOBroadcaster("")
	defer b.Close()

	b.Publish("disconnect", Event{Name: StatusChange})
	assert.Contains(t, op.String(), "Broadcast failed")
	assert.Contains(t, op.String(), "reserved event name")
}

func TestSocketIOBroadcaster_DeliversToWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewSocketIOBroadcaster("")
	addr, err := b.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	received := make(chan Event, 16)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- Watch(ctx, "http://"+addr.String(), func(e Event) { received <- e })
	}()

	require.True(t, b.WaitForObserver(ctx, 5*time.Second), "watcher never connected")
	assert.Equal(t, 1, b.Observers())

	sent := Event{Name: StatusChange, RunID: "run-1", TaskID: "2", Status: dag.StatusRunning}
	var got Event
	require.Eventually(t, func() bool {
		b.Publish(string(StatusChange), sent)
		select {
		case got = <-received:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, sent.RunID, got.RunID)
	assert.Equal(t, sent.TaskID, got.TaskID)
	assert.Equal(t, dag.StatusRunning, got.Status)

	cancel()
	select {
	case err := <-watchErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSocketIOBroadcaster_WaitForObserverTimesOut(t *testing.T) {
	b := NewSocketIOBroadcaster("")
	_, err := b.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	start := time.Now()
	assert.False(t, b.WaitForObserver(context.Background(), 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// Without observers there is nothing to linger for.
	start = time.Now()
	require.NoError(t, b.Shutdown(time.Minute))
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, b.Close())
}

func TestSocketIOBroadcaster_ListenRejectsBusyAddr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewSocketIOBroadcaster("")
	addr, err := first.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	second := NewSocketIOBroadcaster("")
	defer second.Close()
	_, err = second.Listen(ctx, addr.String())
	assert.Error(t, err)
}

func TestWatch_RejectsBadURL(t *testing.T) {
	err := Watch(context.Background(), "localhost", func(Event) {})
	assert.Error(t, err)

	err = Watch(context.Background(), "://nope", func(Event) {})
	assert.Error(t, err)
}
