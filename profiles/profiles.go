// Package profiles resolves the author snapshot stamped on posts and comments.
package profiles

import (
	"context"

	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
)

// Provider looks up the current display data of a user
type Provider interface {
	Profile(ctx context.Context, userID string) (models.AuthorSnapshot, error)
}

// Directory reads profiles from the users collection
type Directory struct {
	DB databases.UserDatabase
}

// NewDirectory creates a provider backed by the users collection
func NewDirectory(db databases.UserDatabase) *Directory {
	return &Directory{DB: db}
}

// Profile returns the fullname and avatar of userID
func (d *Directory) Profile(ctx context.Context, userID string) (models.AuthorSnapshot, error) {
	u, err := d.DB.FindProfile(ctx, userID)
	if err != nil {
		return models.AuthorSnapshot{}, err
	}
	return u.Snapshot(), nil
}

// Author returns the snapshot to stamp for p. When the lookup fails the
// principal's own fullname is used with an empty avatar.
func Author(ctx context.Context, provider Provider, p *access.Principal) models.AuthorSnapshot {
	fallback := models.AuthorSnapshot{Fullname: p.Fullname}
	if provider == nil {
		return fallback
	}
	author, err := provider.Profile(ctx, p.ID)
	if err != nil {
		zap.S().Warnw("failed to load author profile, using token name",
			"userId", p.ID,
			"error", err)
		return fallback
	}
	if author.Fullname == "" {
		author.Fullname = p.Fullname
	}
	return author
}
