package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/events"
)

// diamond is 1 -> {2, 3} (parallel group 1) -> 4.
func diamond() []dag.Descriptor {
	return []dag.Descriptor{
		{ID: "1", Description: "d1", Context: "ctx"},
		{ID: "2", Description: "d2", Context: "ctx", Dependencies: []dag.ID{"1"}, ParallelGroup: 1},
		{ID: "3", Description: "d3", Context: "ctx", Dependencies: []dag.ID{"1"}, ParallelGroup: 1},
		{ID: "4", Description: "d4", Context: "ctx", Dependencies: []dag.ID{"2", "3"}},
	}
}

// scriptedGenerator answers "out:<description>" unless fail says otherwise.
// It is called from several goroutines at once.
type scriptedGenerator struct {
	mu      sync.Mutex
	calls   map[string]int
	prompts map[string]string
	fail    func(description string, call int) error
	hook    func(description string)
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		calls:   make(map[string]int),
		prompts: make(map[string]string),
	}
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	description := taskLine(prompt)

	g.mu.Lock()
	g.calls[description]++
	call := g.calls[description]
	g.prompts[description] = prompt
	g.mu.Unlock()

	if g.hook != nil {
		g.hook(description)
	}
	if g.fail != nil {
		if err := g.fail(description, call); err != nil {
			return "", err
		}
	}
	return "out:" + description, nil
}

func (g *scriptedGenerator) Calls(description string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[description]
}

func (g *scriptedGenerator) Prompt(description string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[description]
}

func taskLine(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Task: ") {
			return strings.TrimPrefix(line, "Task: ")
		}
	}
	return ""
}

// recorder collects every event. Listeners run on the scheduler goroutine.
type recorder struct {
	events []events.Event
}

func record(bus *events.Bus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(e events.Event) { r.events = append(r.events, e) })
	return r
}

func (r *recorder) named(name events.Name) []events.Event {
	var out []events.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) startOrder() []dag.ID {
	var ids []dag.ID
	for _, e := range r.named(events.TaskStart) {
		ids = append(ids, e.TaskID)
	}
	return ids
}
