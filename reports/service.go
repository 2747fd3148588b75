// Package reports accepts abuse reports against posts and lets admins
// triage them. Reports never change the reported post.
package reports

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
)

// Service exposes the report operations
type Service struct {
	reports databases.ReportDatabase
	posts   databases.PostDatabase
	now     func() time.Time
}

// NewService wires the report service
func NewService(reports databases.ReportDatabase, posts databases.PostDatabase) *Service {
	return &Service{reports: reports, posts: posts, now: time.Now}
}

// CreateReportInput is the client payload of a report. The reporter comes
// from the authenticated principal.
type CreateReportInput struct {
	PostID string `json:"postId"`
	Reason string `json:"reason"`
}

// ReportQuery filters the admin report listing
type ReportQuery struct {
	Status string
	Page   models.Page
}

// Create files a pending report against an existing post
func (s *Service) Create(ctx context.Context, p *access.Principal, in CreateReportInput) (*models.Report, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PostID) == "" {
		return nil, models.Validationf("postId is required")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, models.Validationf("reason is required")
	}
	post, err := s.posts.FindByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	now := primitive.NewDateTimeFromTime(s.now())
	report := &models.Report{
		ID:           primitive.NewObjectID(),
		PostID:       post.ID.Hex(),
		PostTitle:    post.Title,
		ReporterID:   p.ID,
		ReporterName: p.Fullname,
		Reason:       reason,
		Status:       models.ReportStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.reports.InsertOne(ctx, report); err != nil {
		return nil, err
	}
	zap.S().Infow("report filed", "reportId", report.ID.Hex(), "postId", report.PostID, "reporterId", p.ID)
	return report, nil
}

// List returns one page of reports, newest first
func (s *Service) List(ctx context.Context, p *access.Principal, q ReportQuery) (models.PageResult[models.Report], error) {
	if err := access.RequireAdmin(p); err != nil {
		return models.PageResult[models.Report]{}, err
	}
	if q.Status != "" && !models.ValidReportStatus(q.Status) {
		return models.PageResult[models.Report]{}, models.Validationf("unknown report status %q", q.Status)
	}
	filter := models.ReportFilter{Status: q.Status}
	page := models.NewPage(q.Page.Page, q.Page.Limit)
	data, err := s.reports.Find(ctx, filter, page)
	if err != nil {
		return models.PageResult[models.Report]{}, err
	}
	total, err := s.reports.CountDocuments(ctx, filter)
	if err != nil {
		return models.PageResult[models.Report]{}, err
	}
	return models.NewPageResult(data, page, total), nil
}

// Get returns a single report
func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*models.Report, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.reports.FindByID(ctx, id)
}

// UpdateStatus moves the report to any status and records the admin note
func (s *Service) UpdateStatus(ctx context.Context, p *access.Principal, id, status, adminNote string) (*models.Report, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !models.ValidReportStatus(status) {
		return nil, models.Validationf("unknown report status %q", status)
	}
	return s.reports.SetStatus(ctx, id, status, strings.TrimSpace(adminNote))
}

// Delete removes a report
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.RequireAdmin(p); err != nil {
		return err
	}
	return s.reports.DeleteOne(ctx, id)
}
