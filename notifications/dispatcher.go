package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/models"
)

const defaultDeliveryTimeout = 10 * time.Second

// Dispatcher queues events and delivers them to its sinks from a pool of
// workers. Emit never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sinks   []Sink
	events  chan Event
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a queue of the given size. Sinks
// are called in order for every event.
func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		sinks:   sinks,
		events:  make(chan Event, buffer),
		timeout: defaultDeliveryTimeout,
		now:     time.Now,
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (d *Dispatcher) Start(workers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	zap.S().Infow("notification dispatcher started", "workers", workers, "buffer", cap(d.events))
}

// Emit queues the event. Self-targeted events and events without a
// recipient are dropped here.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if e.RecipientID == "" || e.SelfTargeted() {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		zap.S().Warnw("notification dispatcher stopped, dropping event",
			"type", e.Type,
			"recipient", e.RecipientID)
		return
	}
	select {
	case d.events <- e:
	default:
		zap.S().Warnw("notification queue full, dropping event",
			"type", e.Type,
			"recipient", e.RecipientID)
	}
}

// Stop closes the queue and waits for queued events to be delivered or for
// ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for e := range d.events {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	n := e.Notification(d.now())
	for _, s := range d.sinks {
		if err := deliverTo(ctx, s, n); err != nil {
			zap.S().Errorw("failed to deliver notification",
				"type", n.Type,
				"recipient", n.UserID,
				"relatedId", n.RelatedID,
				"error", err)
		}
	}
}

// deliverTo turns a sink panic into an error so the remaining sinks still run
func deliverTo(ctx context.Context, s Sink, n *models.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification sink panicked: %v", r)
		}
	}()
	return s.Deliver(ctx, n)
}
