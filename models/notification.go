package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification types
const (
	NotificationComment         = "comment"
	NotificationLike            = "like"
	NotificationPostApproved    = "post_approved"
	NotificationPostRejected    = "post_rejected"
	NotificationItemFound       = "item_found"
	NotificationItemNotFound    = "item_not_found"
	NotificationPostBanned      = "post_banned"
	NotificationMessageReceived = "message_received"
)

// Notification holds the structure for the notifications collection in mongo.
// It is owned by the recipient in UserID.
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    string             `json:"userId" bson:"userId"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"`
	RelatedID string             `json:"relatedId" bson:"relatedId"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
