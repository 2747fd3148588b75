package databases

// go generate: mockery --name ReportDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

const reportName = "reports"

// ReportDatabase contains the methods to use with the report database
type ReportDatabase interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
	Find(ctx context.Context, filter models.ReportFilter, page models.Page) ([]models.Report, error)
	CountDocuments(ctx context.Context, filter models.ReportFilter) (int64, error)
	InsertOne(ctx context.Context, report *models.Report) error
	SetStatus(ctx context.Context, id, status, adminNote string) (*models.Report, error)
	DeleteOne(ctx context.Context, id string) error
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (c *reportDatabase) FindByID(ctx context.Context, id string) (*models.Report, error) {
	oID, err := objectID(id, "report")
	if err != nil {
		return nil, err
	}
	report := &models.Report{}
	err = c.db.Collection(reportName).FindOne(ctx, bson.M{"_id": oID}).Decode(&report)
	if err != nil {
		return nil, translateError(err, "report "+id)
	}
	return report, nil
}

func (c *reportDatabase) Find(ctx context.Context, filter models.ReportFilter, page models.Page) ([]models.Report, error) {
	var reports []models.Report
	curr, err := c.db.Collection(reportName).Find(ctx, reportQuery(filter), newestFirst(page))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &reports)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *reportDatabase) CountDocuments(ctx context.Context, filter models.ReportFilter) (int64, error) {
	return c.db.Collection(reportName).CountDocuments(ctx, reportQuery(filter))
}

func (c *reportDatabase) InsertOne(ctx context.Context, report *models.Report) error {
	_, err := c.db.Collection(reportName).InsertOne(ctx, report)
	return err
}

func (c *reportDatabase) SetStatus(ctx context.Context, id, status, adminNote string) (*models.Report, error) {
	oID, err := objectID(id, "report")
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"adminNote": adminNote,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}
	report := &models.Report{}
	err = c.db.Collection(reportName).FindOneAndUpdate(ctx, bson.M{"_id": oID}, update, returnUpdated()).Decode(&report)
	if err != nil {
		return nil, translateError(err, "report "+id)
	}
	return report, nil
}

func (c *reportDatabase) DeleteOne(ctx context.Context, id string) error {
	oID, err := objectID(id, "report")
	if err != nil {
		return err
	}
	n, err := c.db.Collection(reportName).DeleteOne(ctx, bson.M{"_id": oID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NotFoundf("report %s", id)
	}
	return nil
}

func reportQuery(f models.ReportFilter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.PostID != "" {
		query["postId"] = f.PostID
	}
	return query
}
