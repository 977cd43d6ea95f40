// Package notify fans out change notifications after a successful store
// commit.
//
// Delivery is fire-and-forget: a listener that fails or panics is logged
// and isolated, and can never affect the outcome of the commit that
// triggered it.
package notify

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of change being announced.
type Kind string

const (
	// KindTasksUpdated signals that the task document was rewritten.
	KindTasksUpdated Kind = "TASKS_UPDATED"

	// KindTaskFileAdded signals that a derived task file was generated.
	KindTaskFileAdded Kind = "TASK_FILE_ADDED"

	// KindTaskFileDeleted signals that a derived task file was removed.
	KindTaskFileDeleted Kind = "TASK_FILE_DELETED"
)

// Event is one change notification.
type Event struct {
	// ID uniquely identifies the emitting operation, shared by every
	// event of one commit.
	ID string `json:"id"`

	Kind Kind   `json:"kind"`
	Path string `json:"path"`

	// Tag is the affected partition, when the change is tag-scoped.
	Tag string `json:"tag,omitempty"`

	// Op describes the operation that caused the change (e.g. "move").
	Op string `json:"op,omitempty"`

	// TaskIDs are the affected task IDs in the partition named by Tag.
	TaskIDs []int `json:"taskIds,omitempty"`

	Time time.Time `json:"time"`
}

// NewEventID returns a fresh operation identifier for a batch of events.
func NewEventID() string {
	return uuid.NewString()
}

// Listener receives change events.
type Listener interface {
	Notify(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// Notify implements Listener.
func (f ListenerFunc) Notify(ev Event) { f(ev) }

// Registry holds zero or more listeners and delivers events to all of
// them.
type Registry struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *log.Logger
}

// NewRegistry creates an empty registry. If logger is nil, a default
// stderr logger is used.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(os.Stderr, "[notify] ", log.LstdFlags)
	}
	return &Registry{logger: logger}
}

// Register adds a listener. Registration order is delivery order.
func (r *Registry) Register(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Emit delivers the event to every listener. A panicking listener is
// recovered and logged; remaining listeners still receive the event.
func (r *Registry) Emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	r.mu.RLock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.RUnlock()

	for _, l := range listeners {
		r.deliver(l, ev)
	}
}

func (r *Registry) deliver(l Listener, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("listener panicked on %s event: %v", ev.Kind, rec)
		}
	}()
	l.Notify(ev)
}
