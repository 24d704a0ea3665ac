package workflow

import (
	"context"

	"github.com/maxkimambo/subflow/internal/dag"
	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/maxkimambo/subflow/internal/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// attempt is everything a goroutine needs to run one task attempt without
// touching the run's state.
type attempt struct {
	task dag.Task
	deps []executor.DependencyOutput
}

// settled is the outcome of one attempt.
type settled struct {
	id     dag.ID
	output string
	err    error

	// interrupted is set when the attempt failed after the run's context
	// was cancelled. It does not count against the retry limit.
	interrupted bool
}

// advanceReadiness promotes every pending task whose dependencies have all
// completed. Running it again without new completions changes nothing.
func (r *Run) advanceReadiness() int {
	promoted := 0
	for _, id := range r.graph.ReadyCandidates() {
		r.setStatus(id, dag.StatusReady, nil)
		promoted++
	}
	return promoted
}

// scheduleTasks runs passes until no task is ready. Each pass runs the
// ready parallel groups one after another, each as a full join, then the
// ready sequential tasks one at a time, then re-evaluates readiness. Once
// ctx is done no further attempt is started.
func (r *Run) scheduleTasks(ctx context.Context) {
	for pass := 1; ; pass++ {
		if ctx.Err() != nil {
			return
		}
		ready := r.graph.WithStatus(dag.StatusReady)
		if len(ready) == 0 {
			return
		}

		groupOrder, groups, sequential := partition(ready)

		logger.Op.WithFields(map[string]interface{}{
			"run_id":     r.id,
			"pass":       pass,
			"ready":      len(ready),
			"groups":     len(groupOrder),
			"sequential": len(sequential),
		}).Debug("Scheduling pass")

		for _, group := range groupOrder {
			if ctx.Err() != nil {
				return
			}
			r.runGroup(ctx, group, groups[group])
		}
		for _, task := range sequential {
			if ctx.Err() != nil {
				return
			}
			r.runTask(ctx, task)
		}

		if ctx.Err() != nil {
			return
		}
		r.advanceReadiness()
	}
}

// partition splits ready tasks into parallel groups, ordered by the first
// appearance of each group, and the sequential bucket in discovery order.
func partition(ready []*dag.Task) ([]int, map[int][]*dag.Task, []*dag.Task) {
	var (
		order      []int
		groups     = make(map[int][]*dag.Task)
		sequential []*dag.Task
	)
	for _, task := range ready {
		if task.Sequential() {
			sequential = append(sequential, task)
			continue
		}
		if _, seen := groups[task.ParallelGroup]; !seen {
			order = append(order, task.ParallelGroup)
		}
		groups[task.ParallelGroup] = append(groups[task.ParallelGroup], task)
	}
	return order, groups, sequential
}

// runGroup starts every member of a parallel group and waits for all of
// them to settle. Outcomes are applied one at a time on this goroutine in
// the order they arrive; a failing member never cancels its siblings.
func (r *Run) runGroup(ctx context.Context, group int, tasks []*dag.Task) {
	logger.Op.WithFields(map[string]interface{}{
		"run_id": r.id,
		"group":  group,
		"tasks":  len(tasks),
	}).Debug("Dispatching parallel group")

	results := make(chan settled, len(tasks))

	var g errgroup.Group
	for _, task := range tasks {
		a := r.begin(task)
		g.Go(func() error {
			output, err := r.execute(ctx, a)
			results <- settled{id: a.task.ID, output: output, err: err, interrupted: err != nil && ctx.Err() != nil}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		r.settle(res)
	}
}

// runTask executes one task to settlement.
func (r *Run) runTask(ctx context.Context, task *dag.Task) {
	a := r.begin(task)
	output, err := r.execute(ctx, a)
	r.settle(settled{id: a.task.ID, output: output, err: err, interrupted: err != nil && ctx.Err() != nil})
}

// begin marks the task running and captures its prompt inputs.
func (r *Run) begin(task *dag.Task) attempt {
	r.setStatus(task.ID, dag.StatusRunning, nil)

	agentID := ""
	if agent, ok := r.agents[task.ID]; ok {
		agentID = agent.ID
	}
	r.emit(events.Event{
		Name:        events.TaskStart,
		TaskID:      task.ID,
		Status:      dag.StatusRunning,
		Description: task.Description,
		Agent:       agentID,
		Attempt:     task.Attempts + 1,
	})

	var deps []executor.DependencyOutput
	for _, depID := range task.Dependencies {
		output, ok := r.outputs[depID]
		if !ok {
			continue
		}
		dep, _ := r.graph.Task(depID)
		deps = append(deps, executor.DependencyOutput{
			ID:          depID,
			Description: dep.Description,
			Output:      output,
		})
	}

	return attempt{task: task.Snapshot(), deps: deps}
}

// execute performs the generation call. It runs off the scheduler
// goroutine and must not touch run state.
func (r *Run) execute(ctx context.Context, a attempt) (string, error) {
	ctx, span := r.tracer.Start(ctx, "workflow.Task",
		trace.WithAttributes(
			attribute.String("subflow.run_id", r.id),
			attribute.String("subflow.task_id", string(a.task.ID)),
			attribute.Int("subflow.parallel_group", a.task.ParallelGroup),
			attribute.Int("subflow.attempt", a.task.Attempts+1),
		))
	defer span.End()

	output, err := r.unit.Execute(ctx, a.task, a.deps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errorMessage(err))
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return output, nil
}

// settle applies an attempt's outcome to the run.
func (r *Run) settle(res settled) {
	task, _ := r.graph.Task(res.id)
	if res.interrupted {
		r.handleInterrupt(task, res.err)
		return
	}
	if res.err != nil {
		r.handleFailure(task, res.err)
		return
	}

	r.outputs[task.ID] = res.output
	r.setStatus(task.ID, dag.StatusCompleted, res.output)
	r.emit(events.Event{
		Name:        events.TaskSuccess,
		TaskID:      task.ID,
		Status:      dag.StatusCompleted,
		Output:      res.output,
		Description: task.Description,
		Attempt:     task.Attempts + 1,
	})
}

// handleInterrupt sends a task whose attempt was cut short by
// cancellation back to pending without counting the attempt.
func (r *Run) handleInterrupt(task *dag.Task, err error) {
	logger.Op.WithFields(map[string]interface{}{
		"run_id":   r.id,
		"task_id":  string(task.ID),
		"attempts": task.Attempts,
	}).Warnf("Task attempt interrupted: %v", err)

	r.setStatus(task.ID, dag.StatusPending, nil)
}

// handleFailure counts the failed attempt and either sends the task back
// to pending or fails it for good.
func (r *Run) handleFailure(task *dag.Task, err error) {
	task.Attempts++
	msg := errorMessage(err)

	if r.policy.Decide(task, task.Attempts) == retry.DecisionRetry {
		logger.Op.WithFields(map[string]interface{}{
			"run_id":   r.id,
			"task_id":  string(task.ID),
			"attempts": task.Attempts,
			"limit":    r.policy.Limit(task),
		}).Warnf("Task attempt failed: %s", msg)

		r.setStatus(task.ID, dag.StatusPending, nil)
		r.emit(events.Event{
			Name:        events.TaskRetry,
			TaskID:      task.ID,
			Status:      dag.StatusPending,
			Description: task.Description,
			Attempt:     task.Attempts,
			Error:       msg,
		})
		return
	}

	r.setStatus(task.ID, dag.StatusFailed, map[string]string{"error": msg})
	r.emit(events.Event{
		Name:        events.TaskFailure,
		TaskID:      task.ID,
		Status:      dag.StatusFailed,
		Description: task.Description,
		Attempt:     task.Attempts,
		Error:       msg,
	})

	exhausted := wferrors.NewRetryExhaustedError(string(task.ID), task.Attempts, rootCause(err))
	r.dlq.Add(task, exhausted)
	r.emit(events.Event{
		Name:        events.CriticalError,
		TaskID:      task.ID,
		Status:      dag.StatusFailed,
		Description: task.Description,
		Attempt:     task.Attempts,
		Error:       exhausted.Message,
	})
}

// setStatus is the only place task status changes. It keeps the agent in
// step and emits the status-change event.
func (r *Run) setStatus(id dag.ID, status dag.Status, output any) {
	if err := r.graph.SetStatus(id, status); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"run_id":  r.id,
			"task_id": string(id),
		}).Errorf("Rejected status change: %v", err)
		return
	}

	task, _ := r.graph.Task(id)
	if output != nil {
		task.Output = output
	}
	if agent, ok := r.agents[id]; ok {
		agent.Status = status.String()
	}

	logger.Op.WithFields(map[string]interface{}{
		"run_id":  r.id,
		"task_id": string(id),
		"status":  status.String(),
	}).Debug("Task status changed")

	r.emit(events.Event{
		Name:        events.StatusChange,
		TaskID:      id,
		Status:      status,
		Output:      events.FormatOutput(output),
		Description: task.Description,
	})
}

func (r *Run) emit(e events.Event) {
	e.RunID = r.id
	e.Time = r.now()
	r.bus.Emit(e)
}

// errorMessage returns the short message of a workflow error, or the plain
// error text.
func errorMessage(err error) string {
	if wfErr, ok := wferrors.AsWorkflowError(err); ok {
		return wfErr.Message
	}
	return err.Error()
}

func rootCause(err error) error {
	if wfErr, ok := wferrors.AsWorkflowError(err); ok && wfErr.OriginalError != nil {
		return wfErr.OriginalError
	}
	return err
}
