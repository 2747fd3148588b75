package memdb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

type notificationCollection struct {
	s *Store
}

func (c *notificationCollection) InsertOne(ctx context.Context, notification *models.Notification) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.notifications[notification.ID] = *notification
	return nil
}

func (c *notificationCollection) matching(userID string, unreadOnly bool) []models.Notification {
	var out []models.Notification
	for _, n := range c.s.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (c *notificationCollection) Find(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return paginate(c.matching(userID, unreadOnly), func(n models.Notification) (primitive.DateTime, primitive.ObjectID) {
		return n.CreatedAt, n.ID
	}, page), nil
}

func (c *notificationCollection) CountDocuments(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return int64(len(c.matching(userID, unreadOnly))), nil
}

func (c *notificationCollection) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	oID, err := lookup(id, "notification")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	n, ok := c.s.notifications[oID]
	if !ok || n.UserID != userID {
		return nil, models.NotFoundf("notification %s", id)
	}
	n.Read = true
	c.s.notifications[oID] = n
	return &n, nil
}

func (c *notificationCollection) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var count int64
	for id, n := range c.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			c.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (c *notificationCollection) DeleteOne(ctx context.Context, id, userID string) error {
	oID, err := lookup(id, "notification")
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	n, ok := c.s.notifications[oID]
	if !ok || n.UserID != userID {
		return models.NotFoundf("notification %s", id)
	}
	delete(c.s.notifications, oID)
	return nil
}

func (c *notificationCollection) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	limit := primitive.NewDateTimeFromTime(cutoff)
	var count int64
	for id, n := range c.s.notifications {
		if n.Read && n.CreatedAt < limit {
			delete(c.s.notifications, id)
			count++
		}
	}
	return count, nil
}
