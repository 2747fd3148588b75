package notifications

import (
	"context"
	"time"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
)

// Inbox serves the notifications of the calling user
type Inbox struct {
	DB databases.NotificationDatabase
}

// NewInbox creates an inbox over the notification database
func NewInbox(db databases.NotificationDatabase) *Inbox {
	return &Inbox{DB: db}
}

// List returns one page of the principal's notifications, newest first
func (i *Inbox) List(ctx context.Context, p *access.Principal, unreadOnly bool, page models.Page) (models.PageResult[models.Notification], error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return models.PageResult[models.Notification]{}, err
	}
	data, err := i.DB.Find(ctx, p.ID, unreadOnly, page)
	if err != nil {
		return models.PageResult[models.Notification]{}, err
	}
	total, err := i.DB.CountDocuments(ctx, p.ID, unreadOnly)
	if err != nil {
		return models.PageResult[models.Notification]{}, err
	}
	return models.NewPageResult(data, page, total), nil
}

// UnreadCount returns the number of unread notifications
func (i *Inbox) UnreadCount(ctx context.Context, p *access.Principal) (int64, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	return i.DB.CountDocuments(ctx, p.ID, true)
}

// MarkRead flags one notification as read. Another user's notification
// resolves as not found.
func (i *Inbox) MarkRead(ctx context.Context, p *access.Principal, id string) (*models.Notification, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return i.DB.MarkRead(ctx, id, p.ID)
}

// MarkAllRead flags every unread notification of the principal as read
func (i *Inbox) MarkAllRead(ctx context.Context, p *access.Principal) (int64, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	return i.DB.MarkAllRead(ctx, p.ID)
}

// Delete removes one notification of the principal
func (i *Inbox) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	return i.DB.DeleteOne(ctx, id, p.ID)
}

// PurgeRead removes read notifications older than the retention window
func (i *Inbox) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return i.DB.DeleteReadBefore(ctx, time.Now().Add(-olderThan))
}
