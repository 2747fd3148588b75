package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post categories
const (
	CategoryLost  = "lost"
	CategoryFound = "found"
)

// Post statuses. Status drives public visibility, banned is tracked separately.
const (
	PostStatusPending   = "pending"
	PostStatusApproved  = "approved"
	PostStatusRejected  = "rejected"
	PostStatusCompleted = "completed"
)

// Return statuses set by an admin once an item has been handled
const (
	ReturnStatusNone     = ""
	ReturnStatusReturned = "gửi trả"
	ReturnStatusNotFound = "chưa tìm thấy"
)

// Post holds the structure for the posts collection in mongo
type Post struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	ItemType    string             `json:"itemType" bson:"itemType"`
	Location    string             `json:"location" bson:"location"`
	Images      []string           `json:"images" bson:"images"`

	Status       string `json:"status" bson:"status"`
	ReturnStatus string `json:"returnStatus" bson:"returnStatus"`

	Banned       bool                `json:"banned" bson:"banned"`
	BannedReason *string             `json:"bannedReason" bson:"bannedReason"`
	BannedAt     *primitive.DateTime `json:"bannedAt" bson:"bannedAt"`

	Likes []string `json:"likes" bson:"likes"`

	// author snapshot, copied at write time
	UserID         string `json:"userId" bson:"userId"`
	AuthorFullname string `json:"authorFullname" bson:"authorFullname"`
	AuthorAvatar   string `json:"authorAvatar" bson:"authorAvatar"`

	IsAdminPost bool               `json:"isAdminPost" bson:"isAdminPost"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt   primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// LikedBy reports whether userID is in the post likes
func (p *Post) LikedBy(userID string) bool {
	return containsString(p.Likes, userID)
}

// PostFilter narrows post listings. The zero value matches every post.
type PostFilter struct {
	Status string
	// Statuses restricts the listing to any of the given statuses, it is
	// ignored when Status is set
	Statuses []string
	Category string
	ItemType string
	UserID   string
	Search   string
	// Banned restricts the listing to banned (true) or visible (false) posts,
	// nil matches both
	Banned *bool
}

// Matches is the in-process equivalent of the mongo query built from the filter
func (f PostFilter) Matches(p *Post) bool {
	if f.Status != "" {
		if p.Status != f.Status {
			return false
		}
	} else if len(f.Statuses) > 0 && !containsString(f.Statuses, p.Status) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.ItemType != "" && p.ItemType != f.ItemType {
		return false
	}
	if f.UserID != "" && p.UserID != f.UserID {
		return false
	}
	if f.Banned != nil && p.Banned != *f.Banned {
		return false
	}
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), s) && !strings.Contains(strings.ToLower(p.Location), s) {
			return false
		}
	}
	return true
}

// PostStats holds the moderation dashboard counters
type PostStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
	Banned    int64 `json:"banned"`
}

// ValidCategory reports whether c is a known post category
func ValidCategory(c string) bool {
	return c == CategoryLost || c == CategoryFound
}

// ValidPostStatus reports whether s is a known post status
func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected, PostStatusCompleted:
		return true
	}
	return false
}

// PublicPostStatuses are the statuses anyone may read. Resolved items stay
// searchable.
func PublicPostStatuses() []string {
	return []string{PostStatusApproved, PostStatusCompleted}
}

// IsPublicStatus reports whether posts with status s are publicly readable
func IsPublicStatus(s string) bool {
	return containsString(PublicPostStatuses(), s)
}

// Public reports whether anyone may read the post
func (p *Post) Public() bool {
	return IsPublicStatus(p.Status) && !p.Banned
}

// ValidReturnStatus reports whether s can be set through the return status transition
func ValidReturnStatus(s string) bool {
	return s == ReturnStatusReturned || s == ReturnStatusNotFound
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
