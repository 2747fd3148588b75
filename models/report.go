package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Report statuses. Any status may be set from any other.
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
)

// Report represents a user submitted abuse report against a post
type Report struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	PostID       string             `json:"postId" bson:"postId"`
	PostTitle    string             `json:"postTitle" bson:"postTitle"`
	ReporterID   string             `json:"reporterId" bson:"reporterId"`
	ReporterName string             `json:"reporterName" bson:"reporterName"`
	Reason       string             `json:"reason" bson:"reason"`
	Status       string             `json:"status" bson:"status"`
	AdminNote    string             `json:"adminNote" bson:"adminNote"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ReportFilter narrows report listings
type ReportFilter struct {
	Status string
	PostID string
}

// Matches is the in-process equivalent of the mongo query built from the filter
func (f ReportFilter) Matches(r *Report) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.PostID != "" && r.PostID != f.PostID {
		return false
	}
	return true
}

// ValidReportStatus reports whether s is a known report status
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved:
		return true
	}
	return false
}
