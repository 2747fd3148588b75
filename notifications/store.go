package notifications

import (
	"context"

	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
)

// StoreSink persists notifications in the notifications collection
type StoreSink struct {
	DB databases.NotificationDatabase
}

// Deliver inserts the notification
func (s StoreSink) Deliver(ctx context.Context, n *models.Notification) error {
	return s.DB.InsertOne(ctx, n)
}
