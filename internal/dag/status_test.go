package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusPending, "pending"},
		{StatusReady, "ready"},
		{StatusRunning, "running"},
		{StatusCompleted, "completed"},
		{StatusFailed, "failed"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("cancelled")
	assert.Error(t, err)
}

func TestStatus_TextRoundTrip(t *testing.T) {
	text, err := StatusRunning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "running", string(text))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("failed")))
	assert.Equal(t, StatusFailed, s)
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusReady}:     true,
		{StatusReady, StatusRunning}:     true,
		{StatusRunning, StatusCompleted}: true,
		{StatusRunning, StatusPending}:   true,
		{StatusRunning, StatusFailed}:    true,
	}

	for from := StatusPending; from <= StatusFailed; from++ {
		for to := StatusPending; to <= StatusFailed; to++ {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
