// Package comments implements comments and one level of replies on posts.
package comments

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/notifications"
	"github.com/linesmerrill/lost-found-api/profiles"
)

// Service exposes the comment operations
type Service struct {
	posts    databases.PostDatabase
	comments databases.CommentDatabase
	profiles profiles.Provider
	events   notifications.Emitter
	now      func() time.Time
}

// NewService wires the comment service. A nil emitter discards notifications.
func NewService(posts databases.PostDatabase, comments databases.CommentDatabase, provider profiles.Provider, events notifications.Emitter) *Service {
	if events == nil {
		events = notifications.Discard
	}
	return &Service{
		posts:    posts,
		comments: comments,
		profiles: provider,
		events:   events,
		now:      time.Now,
	}
}

// CreateCommentInput holds a new comment. ParentID makes it a reply, the
// reply always lands on the parent's post.
type CreateCommentInput struct {
	PostID   string `json:"postId"`
	ParentID string `json:"parentId"`
	Content  string `json:"content"`
	Image    string `json:"image"`
}

// Create adds a comment or a reply and notifies the post owner or the
// parent comment author
func (s *Service) Create(ctx context.Context, p *access.Principal, in CreateCommentInput) (*models.Comment, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.Validationf("content is required")
	}

	comment := &models.Comment{
		ID:      primitive.NewObjectID(),
		UserID:  p.ID,
		Content: content,
		Image:   in.Image,
		Likes:   []string{},
	}

	var event notifications.Event
	if in.ParentID != "" {
		parent, err := s.comments.FindByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.IsReply() {
			return nil, models.Validationf("cannot reply to a reply")
		}
		comment.PostID = parent.PostID
		comment.ParentID = parent.ID.Hex()
		event = notifications.CommentReplied(parent, p.ID, p.Fullname)
	} else {
		if in.PostID == "" {
			return nil, models.Validationf("postId is required")
		}
		post, err := s.posts.FindByID(ctx, in.PostID)
		if err != nil {
			return nil, err
		}
		comment.PostID = post.ID.Hex()
		event = notifications.PostCommented(post, p.ID, p.Fullname)
	}

	author := profiles.Author(ctx, s.profiles, p)
	comment.AuthorFullname = author.Fullname
	comment.AuthorAvatar = author.Avatar
	now := primitive.NewDateTimeFromTime(s.now())
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if err := s.comments.InsertOne(ctx, comment); err != nil {
		return nil, err
	}
	if !event.SelfTargeted() {
		s.events.Emit(ctx, event)
	}
	return comment, nil
}

// ListByPost returns a page of top-level comments, newest first, each with
// its replies oldest first
func (s *Service) ListByPost(ctx context.Context, postID string, page models.Page) (models.PageResult[models.CommentThread], error) {
	page = models.NewPage(page.Page, page.Limit)
	filter := models.CommentFilter{PostID: postID, TopLevel: true}
	top, err := s.comments.Find(ctx, filter, page)
	if err != nil {
		return models.PageResult[models.CommentThread]{}, err
	}
	total, err := s.comments.CountDocuments(ctx, filter)
	if err != nil {
		return models.PageResult[models.CommentThread]{}, err
	}

	threads := make([]models.CommentThread, 0, len(top))
	if len(top) == 0 {
		return models.NewPageResult(threads, page, total), nil
	}

	parentIDs := make([]string, 0, len(top))
	for _, c := range top {
		parentIDs = append(parentIDs, c.ID.Hex())
	}
	replies, err := s.comments.FindAll(ctx, models.CommentFilter{ParentIDs: parentIDs})
	if err != nil {
		return models.PageResult[models.CommentThread]{}, err
	}
	byParent := map[string][]models.Comment{}
	for _, r := range replies {
		byParent[r.ParentID] = append(byParent[r.ParentID], r)
	}
	for _, c := range top {
		r := byParent[c.ID.Hex()]
		if r == nil {
			r = []models.Comment{}
		}
		threads = append(threads, models.CommentThread{Comment: c, Replies: r})
	}
	return models.NewPageResult(threads, page, total), nil
}

// Update replaces the content of a comment
func (s *Service) Update(ctx context.Context, p *access.Principal, id, content string) (*models.Comment, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(p, comment.UserID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.Validationf("content is required")
	}
	return s.comments.SetContent(ctx, id, content)
}

// Delete removes a comment, a top-level comment takes its replies with it
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwnerOrAdmin(p, comment.UserID); err != nil {
		return err
	}
	if err := s.comments.DeleteOne(ctx, id); err != nil {
		return err
	}
	if comment.IsReply() {
		return nil
	}
	removed, err := s.comments.DeleteMany(ctx, models.CommentFilter{ParentIDs: []string{id}})
	if err != nil {
		return err
	}
	zap.S().Debugw("comment deleted", "commentId", id, "by", p.ID, "replies", removed)
	return nil
}

// ToggleLike flips the caller's like on a comment. Comment likes do not
// notify.
func (s *Service) ToggleLike(ctx context.Context, p *access.Principal, id string) (*models.Comment, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.LikedBy(p.ID) {
		return s.comments.RemoveLike(ctx, id, p.ID)
	}
	return s.comments.AddLike(ctx, id, p.ID)
}
