package memdb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

type reportCollection struct {
	s *Store
}

func (c *reportCollection) FindByID(ctx context.Context, id string) (*models.Report, error) {
	oID, err := lookup(id, "report")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	r, ok := c.s.reports[oID]
	if !ok {
		return nil, models.NotFoundf("report %s", id)
	}
	return &r, nil
}

func (c *reportCollection) matching(filter models.ReportFilter) []models.Report {
	var out []models.Report
	for _, r := range c.s.reports {
		if filter.Matches(&r) {
			out = append(out, r)
		}
	}
	return out
}

func (c *reportCollection) Find(ctx context.Context, filter models.ReportFilter, page models.Page) ([]models.Report, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return paginate(c.matching(filter), func(r models.Report) (primitive.DateTime, primitive.ObjectID) {
		return r.CreatedAt, r.ID
	}, page), nil
}

func (c *reportCollection) CountDocuments(ctx context.Context, filter models.ReportFilter) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return int64(len(c.matching(filter))), nil
}

func (c *reportCollection) InsertOne(ctx context.Context, report *models.Report) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.reports[report.ID] = *report
	return nil
}

func (c *reportCollection) SetStatus(ctx context.Context, id, status, adminNote string) (*models.Report, error) {
	oID, err := lookup(id, "report")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	r, ok := c.s.reports[oID]
	if !ok {
		return nil, models.NotFoundf("report %s", id)
	}
	r.Status = status
	r.AdminNote = adminNote
	r.UpdatedAt = c.s.timestamp()
	c.s.reports[oID] = r
	return &r, nil
}

func (c *reportCollection) DeleteOne(ctx context.Context, id string) error {
	oID, err := lookup(id, "report")
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.reports[oID]; !ok {
		return models.NotFoundf("report %s", id)
	}
	delete(c.s.reports, oID)
	return nil
}
