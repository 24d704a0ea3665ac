package progress

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/events"
)

// ProgressInfo is a point-in-time view of a run.
type ProgressInfo struct {
	TotalTasks        int
	CompletedTasks    int
	FailedTasks       int
	RunningTasks      []dag.ID
	PendingTasks      int
	Retries           int
	ElapsedTime       time.Duration
	EstimatedTimeLeft time.Duration
	GroupBreakdown    map[int]GroupStats
}

// GroupStats counts tasks of one parallel group; group 0 is the
// sequential bucket.
type GroupStats struct {
	Total     int
	Completed int
	Failed    int
	Running   int
	Pending   int
}

// Tracker follows a run's events and keeps per-task status.
type Tracker struct {
	mu       sync.Mutex
	order    []dag.ID
	groups   map[dag.ID]int
	statuses map[dag.ID]dag.Status
	retries  int

	startTime      time.Time
	lastReportTime time.Time
	reportInterval time.Duration
	now            func() time.Time
}

// NewTracker creates a tracker for the given tasks.
func NewTracker(tasks []dag.Task) *Tracker {
	t := &Tracker{
		groups:         make(map[dag.ID]int, len(tasks)),
		statuses:       make(map[dag.ID]dag.Status, len(tasks)),
		reportInterval: 5 * time.Second,
		now:            time.Now,
	}
	for _, task := range tasks {
		t.order = append(t.order, task.ID)
		t.groups[task.ID] = task.ParallelGroup
		t.statuses[task.ID] = task.Status
	}
	t.startTime = t.now()
	t.lastReportTime = t.startTime
	return t
}

// SetInterval changes how often ShouldReport fires.
func (t *Tracker) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reportInterval = d
}

// Attach subscribes the tracker to bus.
func (t *Tracker) Attach(bus *events.Bus) {
	bus.Subscribe(events.WorkflowStart, func(events.Event) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.startTime = t.now()
		t.lastReportTime = t.startTime
	})
	bus.Subscribe(events.StatusChange, func(e events.Event) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.statuses[e.TaskID]; ok {
			t.statuses[e.TaskID] = e.Status
		}
	})
	bus.Subscribe(events.TaskRetry, func(events.Event) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.retries++
	})
}

// ShouldReport returns true if it's time to report progress
func (t *Tracker) ShouldReport() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.lastReportTime) >= t.reportInterval
}

// Info returns the current progress.
func (t *Tracker) Info() ProgressInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := ProgressInfo{
		TotalTasks:     len(t.order),
		Retries:        t.retries,
		ElapsedTime:    t.now().Sub(t.startTime),
		GroupBreakdown: make(map[int]GroupStats),
	}
	for _, id := range t.order {
		group := t.groups[id]
		stats := info.GroupBreakdown[group]
		stats.Total++

		switch t.statuses[id] {
		case dag.StatusCompleted:
			info.CompletedTasks++
			stats.Completed++
		case dag.StatusFailed:
			info.FailedTasks++
			stats.Failed++
		case dag.StatusRunning:
			info.RunningTasks = append(info.RunningTasks, id)
			stats.Running++
		default:
			info.PendingTasks++
			stats.Pending++
		}
		info.GroupBreakdown[group] = stats
	}
	info.EstimatedTimeLeft = CalculateETA(info.CompletedTasks, info.TotalTasks, info.ElapsedTime)
	return info
}

// Report generates a formatted progress report
func (t *Tracker) Report() string {
	info := t.Info()

	t.mu.Lock()
	t.lastReportTime = t.now()
	t.mu.Unlock()

	return FormatReport(info)
}

// FormatReport renders progress information as text.
func FormatReport(info ProgressInfo) string {
	var sb strings.Builder

	percentage := 0.0
	if info.TotalTasks > 0 {
		percentage = float64(info.CompletedTasks) / float64(info.TotalTasks) * 100
	}

	sb.WriteString(fmt.Sprintf("Progress: %d/%d tasks completed (%.1f%%)",
		info.CompletedTasks, info.TotalTasks, percentage))
	sb.WriteString(fmt.Sprintf(" | Elapsed: %s", FormatDuration(info.ElapsedTime)))
	if info.EstimatedTimeLeft > 0 {
		sb.WriteString(fmt.Sprintf(" | ETA: %s", FormatDuration(info.EstimatedTimeLeft)))
	}

	if len(info.RunningTasks) > 0 {
		ids := make([]string, len(info.RunningTasks))
		for i, id := range info.RunningTasks {
			ids[i] = string(id)
		}
		sb.WriteString(fmt.Sprintf("\n   Running: %s", strings.Join(ids, ", ")))
	}
	if info.Retries > 0 {
		sb.WriteString(fmt.Sprintf("\n   Retries: %d", info.Retries))
	}

	if len(info.GroupBreakdown) > 1 {
		groups := make([]int, 0, len(info.GroupBreakdown))
		for group := range info.GroupBreakdown {
			groups = append(groups, group)
		}
		sort.Ints(groups)

		sb.WriteString("\n   Groups:")
		for _, group := range groups {
			stats := info.GroupBreakdown[group]
			name := fmt.Sprintf("group %d", group)
			if group == 0 {
				name = "sequential"
			}
			sb.WriteString(fmt.Sprintf("\n      %s: %d/%d completed", name, stats.Completed, stats.Total))
			if stats.Failed > 0 {
				sb.WriteString(fmt.Sprintf(", %d failed", stats.Failed))
			}
			if stats.Running > 0 {
				sb.WriteString(fmt.Sprintf(", %d running", stats.Running))
			}
			if stats.Pending > 0 {
				sb.WriteString(fmt.Sprintf(", %d pending", stats.Pending))
			}
		}
	}

	return sb.String()
}

// CalculateETA estimates time remaining based on current progress
func CalculateETA(completed, total int, elapsed time.Duration) time.Duration {
	if completed <= 0 || total <= 0 || completed >= total {
		return 0
	}

	averageTimePerTask := elapsed / time.Duration(completed)
	remainingTasks := total - completed
	return averageTimePerTask * time.Duration(remainingTasks)
}

// FormatDuration formats a duration in a user-friendly way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
