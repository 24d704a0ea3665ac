package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/retry"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrIncomplete is returned by Start when at least one task did not
	// complete, so the run has no aggregate result.
	ErrIncomplete = errors.New("workflow did not complete")

	// ErrAlreadyStarted is returned when Start is called twice on a run.
	ErrAlreadyStarted = errors.New("workflow already started")
)

// Output is the result of one final task.
type Output struct {
	TaskID      dag.ID `json:"taskId"`
	Description string `json:"description"`
	Output      string `json:"output"`
}

// Result is the aggregate result of a fully completed run: the outputs of
// every task nothing depends on, in discovery order.
type Result struct {
	RunID     string        `json:"executionId"`
	Outputs   []Output      `json:"outputs"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// Run is one execution of a task graph. It is created per decomposition
// result, started once and then discarded.
type Run struct {
	id     string
	graph  *dag.Graph
	agents map[dag.ID]*Agent

	// outputs holds successful results keyed by task id for dependents to
	// read.
	outputs map[dag.ID]string

	unit   *executor.Unit
	policy *retry.Policy
	bus    *events.Bus
	dlq    *retry.DeadLetterQueue
	tracer trace.Tracer
	now    func() time.Time

	mu      sync.Mutex
	started bool
}

// New validates the descriptors and builds a run. Invalid dependencies,
// conflicting parallel groups and duplicate ids are reported here, before
// anything is scheduled. When agents is empty one agent per task is
// created.
func New(descriptors []dag.Descriptor, agents []Agent, opts ...Option) (*Run, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.fillDefaults()

	graph, err := dag.New(descriptors)
	if err != nil {
		return nil, err
	}

	if len(agents) == 0 {
		agents = CreateAgents(descriptors)
	}
	agentMap := make(map[dag.ID]*Agent, len(agents))
	for i := range agents {
		agent := agents[i]
		if _, ok := graph.Task(agent.TaskID); !ok {
			logger.Op.WithFields(map[string]interface{}{
				"agent":   agent.ID,
				"task_id": string(agent.TaskID),
			}).Warn("Ignoring agent for unknown task")
			continue
		}
		agentMap[agent.TaskID] = &agent
	}

	r := &Run{
		id:      o.ids.NextID(),
		graph:   graph,
		agents:  agentMap,
		outputs: make(map[dag.ID]string, graph.Len()),
		unit:    executor.NewUnit(o.generator),
		policy:  o.policy,
		bus:     o.bus,
		dlq:     o.dlq,
		tracer:  o.tracer,
		now:     o.now,
	}

	logger.Op.WithFields(map[string]interface{}{
		"run_id": r.id,
		"tasks":  graph.Len(),
	}).Debug("Workflow run created")

	return r, nil
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Bus returns the bus the run emits on, for registering listeners.
func (r *Run) Bus() *events.Bus {
	return r.bus
}

// Graph exposes the task graph for read-only inspection. It must not be
// mutated, and must not be read while Start is running.
func (r *Run) Graph() *dag.Graph {
	return r.graph
}

// Tasks returns a snapshot of every task in discovery order.
func (r *Run) Tasks() []dag.Task {
	return r.graph.Snapshot()
}

// Agents returns a copy of the agent associations in task discovery order.
func (r *Run) Agents() []Agent {
	agents := make([]Agent, 0, len(r.agents))
	for _, id := range r.graph.IDs() {
		if agent, ok := r.agents[id]; ok {
			agents = append(agents, *agent)
		}
	}
	return agents
}

// DeadLetters returns the tasks that used up their attempts.
func (r *Run) DeadLetters() []*retry.FailedTask {
	return r.dlq.List()
}

// Start drives the run to a fixed point. When every task completed it
// returns the outputs of the final tasks; otherwise it returns
// ErrIncomplete. Task failures are reported through events, never as the
// returned error. Cancelling ctx stops new attempts; the error then also
// matches ctx.Err().
func (r *Run) Start(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "workflow.Run")
	defer span.End()

	startTime := r.now()
	r.emit(events.Event{Name: events.WorkflowStart})

	r.advanceReadiness()
	r.scheduleTasks(ctx)

	counts := r.graph.Counts()
	entry := logger.Op.WithFields(map[string]interface{}{
		"run_id":    r.id,
		"completed": counts[dag.StatusCompleted],
		"failed":    counts[dag.StatusFailed],
		"pending":   counts[dag.StatusPending],
		"duration":  r.now().Sub(startTime).String(),
	})

	switch {
	case r.graph.AllCompleted():
		entry.Info("Workflow run finished")
	case ctx.Err() != nil:
		entry.Warn("Workflow run interrupted")
		return nil, fmt.Errorf("%w: %w", ErrIncomplete, ctx.Err())
	case r.graph.HasFailed():
		entry.Warn("Workflow run stopped after task failures")
		return nil, ErrIncomplete
	default:
		entry.Warn("Workflow run stalled on unreachable tasks")
		return nil, ErrIncomplete
	}

	finals := r.graph.Finals()
	result := &Result{
		RunID:     r.id,
		Outputs:   make([]Output, 0, len(finals)),
		StartTime: startTime,
		Duration:  r.now().Sub(startTime),
	}
	for _, task := range finals {
		result.Outputs = append(result.Outputs, Output{
			TaskID:      task.ID,
			Description: task.Description,
			Output:      r.outputs[task.ID],
		})
	}
	return result, nil
}
