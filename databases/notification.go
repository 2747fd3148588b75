package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database.
// Every lookup except the retention purge is scoped to the recipient.
type NotificationDatabase interface {
	InsertOne(ctx context.Context, notification *models.Notification) error
	Find(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error)
	CountDocuments(ctx context.Context, userID string, unreadOnly bool) (int64, error)
	MarkRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteOne(ctx context.Context, id, userID string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification *models.Notification) error {
	_, err := n.db.Collection(notificationName).InsertOne(ctx, notification)
	return err
}

func (n *notificationDatabase) Find(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error) {
	var notifications []models.Notification
	curr, err := n.db.Collection(notificationName).Find(ctx, recipientQuery(userID, unreadOnly), newestFirst(page))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) CountDocuments(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, recipientQuery(userID, unreadOnly))
}

func (n *notificationDatabase) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	oID, err := objectID(id, "notification")
	if err != nil {
		return nil, err
	}
	notification := &models.Notification{}
	err = n.db.Collection(notificationName).FindOneAndUpdate(ctx,
		bson.M{"_id": oID, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
		returnUpdated(),
	).Decode(&notification)
	if err != nil {
		return nil, translateError(err, "notification "+id)
	}
	return notification, nil
}

func (n *notificationDatabase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := n.db.Collection(notificationName).UpdateMany(ctx, recipientQuery(userID, true), bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (n *notificationDatabase) DeleteOne(ctx context.Context, id, userID string) error {
	oID, err := objectID(id, "notification")
	if err != nil {
		return err
	}
	deleted, err := n.db.Collection(notificationName).DeleteOne(ctx, bson.M{"_id": oID, "userId": userID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return models.NotFoundf("notification %s", id)
	}
	return nil
}

func (n *notificationDatabase) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return n.db.Collection(notificationName).DeleteMany(ctx, bson.M{
		"read":      true,
		"createdAt": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	})
}

func recipientQuery(userID string, unreadOnly bool) bson.M {
	query := bson.M{"userId": userID}
	if unreadOnly {
		query["read"] = false
	}
	return query
}
