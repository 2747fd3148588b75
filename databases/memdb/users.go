package memdb

import (
	"context"

	"github.com/linesmerrill/lost-found-api/models"
)

type userCollection struct {
	s *Store
}

func (c *userCollection) FindProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.s.users[userID]
	if !ok {
		return nil, models.NotFoundf("user %s", userID)
	}
	return &u, nil
}
