package dag

// IsReady reports whether every dependency of the task is completed. A task
// with no dependencies is always ready. Failed dependencies never satisfy it.
func (g *Graph) IsReady(id ID) bool {
	task, ok := g.tasks[id]
	if !ok {
		return false
	}
	for _, depID := range task.Dependencies {
		dep, exists := g.tasks[depID]
		if !exists || dep.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// ReadyCandidates returns the pending tasks whose dependencies are all
// completed, in discovery order. It does not change any status.
func (g *Graph) ReadyCandidates() []ID {
	var candidates []ID
	for _, id := range g.order {
		if g.tasks[id].Status == StatusPending && g.IsReady(id) {
			candidates = append(candidates, id)
		}
	}
	return candidates
}
