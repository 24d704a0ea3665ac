package events

import "sync"

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

// Broadcaster forwards events to remote observers. Publish is fire and
// forget.
type Broadcaster interface {
	Publish(event string, payload any)
}

// NopBroadcaster discards everything.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, any) {}

// Bus fans events out to registered listeners and forwards status changes
// to a Broadcaster.
type Bus struct {
	mu          sync.RWMutex
	listeners   map[Name][]Listener
	wildcards   []Listener
	broadcaster Broadcaster
}

// NewBus returns a bus forwarding to b. A nil b disables broadcasting.
func NewBus(b Broadcaster) *Bus {
	if b == nil {
		b = NopBroadcaster{}
	}
	return &Bus{
		listeners:   make(map[Name][]Listener),
		broadcaster: b,
	}
}

// Subscribe registers l for events named name.
func (b *Bus) Subscribe(name Name, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], l)
}

// SubscribeAll registers l for every event.
func (b *Bus) SubscribeAll(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcards = append(b.wildcards, l)
}

// Emit delivers e to the listeners for e.Name, then to wildcard listeners,
// in registration order. Only status changes reach the broadcaster.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	named := append([]Listener(nil), b.listeners[e.Name]...)
	wildcards := append([]Listener(nil), b.wildcards...)
	broadcaster := b.broadcaster
	b.mu.RUnlock()

	for _, l := range named {
		l(e)
	}
	for _, l := range wildcards {
		l(e)
	}

	if e.Name == StatusChange {
		broadcaster.Publish(string(StatusChange), e)
	}
}
