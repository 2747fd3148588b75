package memdb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

type postCollection struct {
	s *Store
}

func clonePost(p models.Post) models.Post {
	p.Images = cloneStrings(p.Images)
	p.Likes = cloneStrings(p.Likes)
	if p.BannedReason != nil {
		r := *p.BannedReason
		p.BannedReason = &r
	}
	if p.BannedAt != nil {
		at := *p.BannedAt
		p.BannedAt = &at
	}
	return p
}

func (c *postCollection) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oID, err := lookup(id, "post")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p, ok := c.s.posts[oID]
	if !ok {
		return nil, models.NotFoundf("post %s", id)
	}
	p = clonePost(p)
	return &p, nil
}

func (c *postCollection) matching(filter models.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range c.s.posts {
		if filter.Matches(&p) {
			out = append(out, clonePost(p))
		}
	}
	return out
}

func (c *postCollection) Find(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return paginate(c.matching(filter), func(p models.Post) (primitive.DateTime, primitive.ObjectID) {
		return p.CreatedAt, p.ID
	}, page), nil
}

func (c *postCollection) CountDocuments(ctx context.Context, filter models.PostFilter) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return int64(len(c.matching(filter))), nil
}

func (c *postCollection) InsertOne(ctx context.Context, post *models.Post) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (c *postCollection) SetFields(ctx context.Context, id string, fields bson.M) (*models.Post, error) {
	set := bson.M{"updatedAt": c.s.timestamp()}
	for k, v := range fields {
		set[k] = v
	}
	return c.update(id, func(p models.Post) (models.Post, error) {
		return applySet(p, set)
	})
}

func (c *postCollection) AddLike(ctx context.Context, id, userID string) (*models.Post, error) {
	return c.update(id, func(p models.Post) (models.Post, error) {
		p.Likes = addToSet(p.Likes, userID)
		p.UpdatedAt = c.s.timestamp()
		return p, nil
	})
}

func (c *postCollection) RemoveLike(ctx context.Context, id, userID string) (*models.Post, error) {
	return c.update(id, func(p models.Post) (models.Post, error) {
		p.Likes = pull(p.Likes, userID)
		p.UpdatedAt = c.s.timestamp()
		return p, nil
	})
}

func (c *postCollection) SetAuthorSnapshot(ctx context.Context, userID string, author models.AuthorSnapshot) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for id, p := range c.s.posts {
		if p.UserID != userID {
			continue
		}
		if p.AuthorFullname == author.Fullname && p.AuthorAvatar == author.Avatar {
			continue
		}
		p.AuthorFullname = author.Fullname
		p.AuthorAvatar = author.Avatar
		p.UpdatedAt = c.s.timestamp()
		c.s.posts[id] = p
		n++
	}
	return n, nil
}

func (c *postCollection) DeleteOne(ctx context.Context, id string) error {
	oID, err := lookup(id, "post")
	if err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.posts[oID]; !ok {
		return models.NotFoundf("post %s", id)
	}
	delete(c.s.posts, oID)
	return nil
}

func (c *postCollection) update(id string, fn func(models.Post) (models.Post, error)) (*models.Post, error) {
	oID, err := lookup(id, "post")
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p, ok := c.s.posts[oID]
	if !ok {
		return nil, models.NotFoundf("post %s", id)
	}
	p, err = fn(clonePost(p))
	if err != nil {
		return nil, err
	}
	c.s.posts[oID] = p
	p = clonePost(p)
	return &p, nil
}
