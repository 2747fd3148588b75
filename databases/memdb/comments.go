package memdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

type commentCollection struct {
	s *Store
}

func cloneComment(c models.Comment) models.Comment {
	c.Likes = cloneStrings(c.Likes)
	return c
}

func commentKey(c models.Comment) (primitive.DateTime, primitive.ObjectID) {
	return c.CreatedAt, c.ID
}

func (c *commentCollection) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	oID, err := lookup(id, "comment")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cm, ok := c.s.comments[oID]
	if !ok {
		return nil, models.NotFoundf("comment %s", id)
	}
	cm = cloneComment(cm)
	return &cm, nil
}

func (c *commentCollection) matching(filter models.CommentFilter) []models.Comment {
	var out []models.Comment
	for _, cm := range c.s.comments {
		if filter.Matches(&cm) {
			out = append(out, cloneComment(cm))
		}
	}
	return out
}

func (c *commentCollection) Find(ctx context.Context, filter models.CommentFilter, page models.Page) ([]models.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return paginate(c.matching(filter), commentKey, page), nil
}

func (c *commentCollection) FindAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := c.matching(filter)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (c *commentCollection) CountDocuments(ctx context.Context, filter models.CommentFilter) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return int64(len(c.matching(filter))), nil
}

func (c *commentCollection) InsertOne(ctx context.Context, comment *models.Comment) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.comments[comment.ID] = cloneComment(*comment)
	return nil
}

func (c *commentCollection) SetContent(ctx context.Context, id, content string) (*models.Comment, error) {
	return c.update(id, func(cm *models.Comment) {
		cm.Content = content
		cm.UpdatedAt = c.s.timestamp()
	})
}

func (c *commentCollection) AddLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return c.update(id, func(cm *models.Comment) {
		cm.Likes = addToSet(cm.Likes, userID)
		cm.UpdatedAt = c.s.timestamp()
	})
}

func (c *commentCollection) RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return c.update(id, func(cm *models.Comment) {
		cm.Likes = pull(cm.Likes, userID)
		cm.UpdatedAt = c.s.timestamp()
	})
}

func (c *commentCollection) DeleteOne(ctx context.Context, id string) error {
	oID, err := lookup(id, "comment")
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.comments[oID]; !ok {
		return models.NotFoundf("comment %s", id)
	}
	delete(c.s.comments, oID)
	return nil
}

func (c *commentCollection) DeleteMany(ctx context.Context, filter models.CommentFilter) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for id, cm := range c.s.comments {
		if filter.Matches(&cm) {
			delete(c.s.comments, id)
			n++
		}
	}
	return n, nil
}

func (c *commentCollection) update(id string, fn func(*models.Comment)) (*models.Comment, error) {
	oID, err := lookup(id, "comment")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cm, ok := c.s.comments[oID]
	if !ok {
		return nil, models.NotFoundf("comment %s", id)
	}
	cm = cloneComment(cm)
	fn(&cm)
	c.s.comments[oID] = cm
	cm = cloneComment(cm)
	return &cm, nil
}
