// Package moderation implements the post lifecycle: creation, the admin
// status transitions, the ban overlay and likes. Every transition writes its
// own field group with a single atomic update and emits the owner
// notification once the write succeeded.
package moderation

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/notifications"
	"github.com/linesmerrill/lost-found-api/profiles"
)

// Service exposes the post operations
type Service struct {
	posts    databases.PostDatabase
	comments databases.CommentDatabase
	profiles profiles.Provider
	events   notifications.Emitter
	now      func() time.Time
}

// NewService wires the post service. A nil emitter discards notifications.
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

// CreatePostInput holds the client supplied fields of a new post
type CreatePostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ItemType    string   `json:"itemType"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

func (in CreatePostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.Validationf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.Validationf("description is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		return models.Validationf("location is required")
	}
	if !models.ValidCategory(in.Category) {
		return models.Validationf("category must be %q or %q", models.CategoryLost, models.CategoryFound)
	}
	return nil
}

// UpdatePostInput is a partial update, nil fields are left untouched
type UpdatePostInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	ItemType    *string   `json:"itemType"`
	Location    *string   `json:"location"`
	Images      *[]string `json:"images"`
}

func (in UpdatePostInput) fields() (bson.M, error) {
	set := bson.M{}
	required := map[string]*string{"title": in.Title, "description": in.Description, "location": in.Location}
	for name, v := range required {
		if v == nil {
			continue
		}
		if strings.TrimSpace(*v) == "" {
			return nil, models.Validationf("%s cannot be empty", name)
		}
		set[name] = *v
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return nil, models.Validationf("category must be %q or %q", models.CategoryLost, models.CategoryFound)
		}
		set["category"] = *in.Category
	}
	if in.ItemType != nil {
		set["itemType"] = *in.ItemType
	}
	if in.Images != nil {
		images := *in.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	return set, nil
}

// ListQuery filters a post listing
type ListQuery struct {
	Status   string
	Category string
	ItemType string
	UserID   string
	Search   string
	Banned   *bool
	Page     models.Page
}

// Create stores a new post. Admin posts are published directly, user posts
// wait for review.
func (s *Service) Create(ctx context.Context, p *access.Principal, in CreatePostInput) (*models.Post, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	author := profiles.Author(ctx, s.profiles, p)
	now := primitive.NewDateTimeFromTime(s.now())
	images := in.Images
	if images == nil {
		images = []string{}
	}
	post := &models.Post{
		ID:             primitive.NewObjectID(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		ItemType:       in.ItemType,
		Location:       in.Location,
		Images:         images,
		Status:         models.PostStatusPending,
		Likes:          []string{},
		UserID:         p.ID,
		AuthorFullname: author.Fullname,
		AuthorAvatar:   author.Avatar,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.IsAdmin() {
		post.Status = models.PostStatusApproved
		post.IsAdminPost = true
	}

	if err := s.posts.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	zap.S().Debugw("post created", "postId", post.ID.Hex(), "userId", p.ID, "status", post.Status)
	return post, nil
}

// Get returns a single post. Posts that are not public resolve as missing
// for everyone but their owner and admins.
func (s *Service) Get(ctx context.Context, viewer *access.Principal, id string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Public() && !access.Authorized(viewer, post.UserID) {
		return nil, models.NotFoundf("post %s", id)
	}
	return post, nil
}

// List returns one page of posts. Banned posts are hidden unless the query
// targets one user's posts or an admin asks for them explicitly. Only admins
// and owners listing their own posts see statuses that are not public.
func (s *Service) List(ctx context.Context, viewer *access.Principal, q ListQuery) (models.PageResult[models.Post], error) {
	if q.Banned != nil {
		if err := access.RequireAdmin(viewer); err != nil {
			return models.PageResult[models.Post]{}, err
		}
	}
	if q.Status != "" && !models.ValidPostStatus(q.Status) {
		return models.PageResult[models.Post]{}, models.Validationf("unknown status %q", q.Status)
	}
	if q.Category != "" && !models.ValidCategory(q.Category) {
		return models.PageResult[models.Post]{}, models.Validationf("unknown category %q", q.Category)
	}

	filter := models.PostFilter{
		Status:   q.Status,
		Category: q.Category,
		ItemType: q.ItemType,
		UserID:   q.UserID,
		Search:   strings.TrimSpace(q.Search),
		Banned:   q.Banned,
	}
	if filter.Banned == nil && filter.UserID == "" {
		visible := false
		filter.Banned = &visible
	}
	if !viewer.IsAdmin() && !(viewer.Authenticated() && viewer.ID == q.UserID) {
		if q.Status != "" && !models.IsPublicStatus(q.Status) {
			return models.PageResult[models.Post]{}, models.Forbiddenf("status %q is only visible to admins and owners", q.Status)
		}
		if q.Status == "" {
			filter.Statuses = models.PublicPostStatuses()
		}
	}

	page := models.NewPage(q.Page.Page, q.Page.Limit)
	posts, err := s.posts.Find(ctx, filter, page)
	if err != nil {
		return models.PageResult[models.Post]{}, err
	}
	total, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return models.PageResult[models.Post]{}, err
	}
	return models.NewPageResult(posts, page, total), nil
}

// Update merges the given content fields. The author snapshot is refreshed
// when the owner edits, an admin edit keeps it.
func (s *Service) Update(ctx context.Context, p *access.Principal, id string, in UpdatePostInput) (*models.Post, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(p, post.UserID); err != nil {
		return nil, err
	}
	set, err := in.fields()
	if err != nil {
		return nil, err
	}
	if p.ID == post.UserID {
		author := profiles.Author(ctx, s.profiles, p)
		set["authorFullname"] = author.Fullname
		set["authorAvatar"] = author.Avatar
	}
	return s.posts.SetFields(ctx, id, set)
}

// Delete removes the post and its comments
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.RequireAuthenticated(p); err != nil {
		return err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwnerOrAdmin(p, post.UserID); err != nil {
		return err
	}
	// comments go first so a failed cascade leaves the post in place for a retry
	removed, err := s.comments.DeleteMany(ctx, models.CommentFilter{PostID: id})
	if err != nil {
		return err
	}
	if err := s.posts.DeleteOne(ctx, id); err != nil {
		return err
	}
	zap.S().Debugw("post deleted", "postId", id, "by", p.ID, "comments", removed)
	return nil
}

// RefreshAuthor re-stamps the caller's current profile on all of their posts
func (s *Service) RefreshAuthor(ctx context.Context, p *access.Principal) (int64, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	return s.posts.SetAuthorSnapshot(ctx, p.ID, profiles.Author(ctx, s.profiles, p))
}

// Stats returns the moderation counters
func (s *Service) Stats(ctx context.Context, p *access.Principal) (*models.PostStats, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	banned := true
	stats := &models.PostStats{}
	counters := []struct {
		filter models.PostFilter
		dst    *int64
	}{
		{models.PostFilter{}, &stats.Total},
		{models.PostFilter{Status: models.PostStatusPending}, &stats.Pending},
		{models.PostFilter{Status: models.PostStatusApproved}, &stats.Approved},
		{models.PostFilter{Status: models.PostStatusRejected}, &stats.Rejected},
		{models.PostFilter{Status: models.PostStatusCompleted}, &stats.Completed},
		{models.PostFilter{Banned: &banned}, &stats.Banned},
	}
	for _, c := range counters {
		n, err := s.posts.CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}

// emit queues the notification unless the actor owns the post
func (s *Service) emit(ctx context.Context, e notifications.Event) {
	if e.SelfTargeted() {
		return
	}
	s.events.Emit(ctx, e)
}
