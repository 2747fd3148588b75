// Package notificationstest provides an Emitter that records events
// synchronously for assertions.
package notificationstest

import (
	"context"
	"sync"

	"github.com/linesmerrill/lost-found-api/notifications"
)

// Recorder keeps every emitted event in order
type Recorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

// Emit records e
func (r *Recorder) Emit(ctx context.Context, e notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Event(nil), r.events...)
}

// Reset forgets the recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
