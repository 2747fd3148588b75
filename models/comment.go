package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment holds the structure for the comments collection in mongo.
// A comment with ParentID set is a reply to a top-level comment.
type Comment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	PostID         string             `json:"postId" bson:"postId"`
	ParentID       string             `json:"parentId,omitempty" bson:"parentId,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	AuthorFullname string             `json:"authorFullname" bson:"authorFullname"`
	AuthorAvatar   string             `json:"authorAvatar" bson:"authorAvatar"`
	Content        string             `json:"content" bson:"content"`
	Image          string             `json:"image,omitempty" bson:"image,omitempty"`
	Likes          []string           `json:"likes" bson:"likes"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// LikedBy reports whether userID is in the comment likes
func (c *Comment) LikedBy(userID string) bool {
	return containsString(c.Likes, userID)
}

// CommentFilter narrows comment lookups
type CommentFilter struct {
	PostID string
	// TopLevel restricts results to comments without a parent
	TopLevel bool
	// ParentIDs restricts results to replies of the given comments
	ParentIDs []string
}

// Matches is the in-process equivalent of the mongo query built from the filter
func (f CommentFilter) Matches(c *Comment) bool {
	if f.PostID != "" && c.PostID != f.PostID {
		return false
	}
	if f.TopLevel && c.IsReply() {
		return false
	}
	if len(f.ParentIDs) > 0 && !containsString(f.ParentIDs, c.ParentID) {
		return false
	}
	return true
}

// CommentThread is a top-level comment with its replies
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies"`
}
