package dom

import "sync"

// Event types dispatched to anchors.
const (
	EventDragOver  = "dragover"
	EventDragLeave = "dragleave"
	EventDrop      = "drop"
	EventChange    = "change"
	EventClick     = "click"
)

// Event is a page event delivered to a listener.
type Event struct {
	Type   string
	Target string
	Files  []File
}

// Handler handles an event.
type Handler func(Event)

// Listeners is a registry of handlers keyed by event type. It is safe for
// concurrent use and is embedded by anchor implementations.
type Listeners struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]Handler
	order    map[string][]int
}

// Listen registers h for event and returns its removal function.
func (l *Listeners) Listen(event string, h Handler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handlers == nil {
		l.handlers = make(map[string]map[int]Handler)
		l.order = make(map[string][]int)
	}
	if l.handlers[event] == nil {
		l.handlers[event] = make(map[int]Handler)
	}

	l.nextID++
	id := l.nextID
	l.handlers[event][id] = h
	l.order[event] = append(l.order[event], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.handlers[event], id)
			ids := l.order[event]
			for i, v := range ids {
				if v == id {
					l.order[event] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Dispatch calls every handler registered for ev.Type in registration
// order. Handlers run outside the registry lock.
func (l *Listeners) Dispatch(ev Event) {
	l.mu.Lock()
	var hs []Handler
	for _, id := range l.order[ev.Type] {
		if h, ok := l.handlers[ev.Type][id]; ok {
			hs = append(hs, h)
		}
	}
	l.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

// Count returns the number of handlers registered for event.
func (l *Listeners) Count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handlers[event])
}
