// Package notifications turns moderation and engagement events into
// user-facing notifications. Delivery is best effort: events are queued and
// processed by background workers, a failed delivery is logged and dropped.
package notifications

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

// Event is emitted by a service after a successful state change
type Event struct {
	RecipientID string
	ActorID     string
	Title       string
	Message     string
	Type        string
	RelatedID   string
}

// SelfTargeted reports whether the actor would notify themselves
func (e Event) SelfTargeted() bool {
	return e.RecipientID == e.ActorID
}

// Notification builds the stored notification for the event
func (e Event) Notification(now time.Time) *models.Notification {
	return &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    e.RecipientID,
		Title:     e.Title,
		Message:   e.Message,
		Type:      e.Type,
		RelatedID: e.RelatedID,
		Read:      false,
		CreatedAt: primitive.NewDateTimeFromTime(now),
	}
}

// Emitter accepts events without ever failing or blocking the caller
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Sink is one delivery channel for notifications
type Sink interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, n *models.Notification) error

// Deliver calls f(ctx, n)
func (f SinkFunc) Deliver(ctx context.Context, n *models.Notification) error {
	return f(ctx, n)
}

// Discard drops every event, used when notifications are disabled
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}
