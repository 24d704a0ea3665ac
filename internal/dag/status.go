package dag

import "fmt"

// Status represents the execution status of a task
type Status int

const (
	// StatusPending indicates the task is waiting for its dependencies
	StatusPending Status = iota
	// StatusReady indicates every dependency has completed
	StatusReady
	// StatusRunning indicates the task's generation call is in flight
	StatusRunning
	// StatusCompleted indicates the task produced an output
	StatusCompleted
	// StatusFailed indicates the task used up its attempts. It is terminal.
	StatusFailed
)

// String returns a string representation of the Status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s := StatusPending; s <= StatusFailed; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return StatusPending, fmt.Errorf("unknown task status %q", name)
}

// CanTransition reports whether a task may move from one status to another.
//
//	pending   -> ready
//	ready     -> running
//	running   -> completed | pending (retry) | failed
//
// Completed and failed are final.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusReady
	case StatusReady:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusPending || to == StatusFailed
	default:
		return false
	}
}
