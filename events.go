package flipbook

import (
	"sync"
)

// EventType identifies a player lifecycle event.
type EventType int

const (
	// EventLoading is emitted once per completed image load.
	EventLoading EventType = iota
	// EventReady is emitted once all images are loaded.
	EventReady
	// EventPlay is emitted when Play starts playback.
	EventPlay
	// EventUpdate is emitted once per drawn frame.
	EventUpdate
	// EventStop is emitted once per Stop call.
	EventStop
	// EventError is emitted when an image fails to load or a frame
	// fails to render.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventLoading:
		return "loading"
	case EventReady:
		return "ready"
	case EventPlay:
		return "play"
	case EventUpdate:
		return "update"
	case EventStop:
		return "stop"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a player lifecycle event. Only the fields relevant to Type
// are set.
type Event struct {
	Type EventType

	// EventLoading
	Count int
	Total int

	// EventUpdate
	Frame      int
	Times      int
	Descending bool

	// EventError
	Locator string
	Err     error
}

// Listener receives events.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Emitter dispatches events to listeners registered per event type.
// Listeners are called synchronously in registration order.
type Emitter struct {
	mutex     sync.Mutex
	nextID    uint64
	listeners map[EventType][]subscription
}

// NewEmitter creates an Emitter without listeners.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[EventType][]subscription)}
}

// On registers listener for events of type t. The returned function
// removes the registration.
func (e *Emitter) On(t EventType, listener Listener) func() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[t] = append(e.listeners[t], subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { e.off(t, id) })
	}
}

func (e *Emitter) off(t EventType, id uint64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	subs := e.listeners[t]
	for i, sub := range subs {
		if sub.id == id {
			e.listeners[t] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers event to the listeners registered for its type.
func (e *Emitter) Emit(event Event) {
	e.mutex.Lock()
	subs := e.listeners[event.Type]
	e.mutex.Unlock()

	for _, sub := range subs {
		sub.listener(event)
	}
}
