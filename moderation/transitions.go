package moderation

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/notifications"
)

type eventFunc func(post *models.Post, actorID string) notifications.Event

// transition applies an admin-only field group update and notifies the owner
func (s *Service) transition(ctx context.Context, p *access.Principal, id string, set bson.M, event eventFunc) (*models.Post, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	post, err := s.posts.SetFields(ctx, id, set)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("post moderated", "postId", id, "by", p.ID, "fields", set)
	s.emit(ctx, event(post, p.ID))
	return post, nil
}

func statusGroup(status string) bson.M {
	return bson.M{"status": status}
}

// Approve publishes a post
func (s *Service) Approve(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	return s.transition(ctx, p, id, statusGroup(models.PostStatusApproved), notifications.PostApproved)
}

// Reject refuses a post
func (s *Service) Reject(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	return s.transition(ctx, p, id, statusGroup(models.PostStatusRejected), notifications.PostRejected)
}

// MarkFound closes the post, its item was found
func (s *Service) MarkFound(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	return s.transition(ctx, p, id, statusGroup(models.PostStatusCompleted), notifications.ItemFound)
}

// MarkNotFound puts the post back in the public listing as approved
func (s *Service) MarkNotFound(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	return s.transition(ctx, p, id, statusGroup(models.PostStatusApproved), notifications.ItemNotFound)
}

// UpdateReturnStatus records whether the item was handed back
func (s *Service) UpdateReturnStatus(ctx context.Context, p *access.Principal, id, returnStatus string) (*models.Post, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !models.ValidReturnStatus(returnStatus) {
		return nil, models.Validationf("returnStatus must be %q or %q", models.ReturnStatusReturned, models.ReturnStatusNotFound)
	}
	return s.transition(ctx, p, id, bson.M{"returnStatus": returnStatus}, notifications.ReturnStatusChanged)
}

// Ban hides the post from public listings regardless of its status
func (s *Service) Ban(ctx context.Context, p *access.Principal, id, reason string) (*models.Post, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.Validationf("a ban reason is required")
	}
	bannedAt := primitive.NewDateTimeFromTime(s.now())
	set := bson.M{
		"banned":       true,
		"bannedReason": reason,
		"bannedAt":     bannedAt,
	}
	return s.transition(ctx, p, id, set, notifications.PostBanned)
}

// Unban clears the ban overlay
func (s *Service) Unban(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	set := bson.M{
		"banned":       false,
		"bannedReason": nil,
		"bannedAt":     nil,
	}
	return s.transition(ctx, p, id, set, notifications.PostUnbanned)
}

// ToggleLike flips the caller's like. Only a new like on someone else's
// post notifies the owner.
func (s *Service) ToggleLike(ctx context.Context, p *access.Principal, id string) (*models.Post, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(p.ID) {
		return s.posts.RemoveLike(ctx, id, p.ID)
	}
	post, err = s.posts.AddLike(ctx, id, p.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, notifications.PostLiked(post, p.ID, p.Fullname))
	return post, nil
}
