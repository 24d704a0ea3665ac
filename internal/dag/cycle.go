package dag

// CycleMembers returns the tasks that can never become ready because they sit
// on, or downstream of, a dependency cycle. It is a lint used before a run and
// has no effect on scheduling. The result is in discovery order and empty for
// an acyclic graph.
func (g *Graph) CycleMembers() []ID {
	inDegree := make(map[ID]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.tasks[id].Dependencies)
	}

	var queue []ID
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make(map[ID]bool, len(g.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted[current] = true

		for _, dependent := range g.tasks[current].Dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	var stuck []ID
	for _, id := range g.order {
		if !sorted[id] {
			stuck = append(stuck, id)
		}
	}
	return stuck
}
