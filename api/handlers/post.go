package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/api"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/moderation"
)

// Post exported for testing purposes
type Post struct {
	Service *moderation.Service
}

type returnStatusRequest struct {
	ReturnStatus string `json:"returnStatus"`
}

type banRequest struct {
	Reason string `json:"reason"`
}

type refreshAuthorResponse struct {
	Updated int64 `json:"updated"`
}

// PostsHandler returns a page of posts matching the query filters
func (p Post) PostsHandler(w http.ResponseWriter, r *http.Request) {
	banned, err := boolQuery(r, "banned")
	if err != nil {
		api.WriteError(w, "invalid banned filter", err)
		return
	}
	q := r.URL.Query()
	query := moderation.ListQuery{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		ItemType: q.Get("itemType"),
		UserID:   q.Get("userId"),
		Search:   q.Get("search"),
		Banned:   banned,
		Page:     pageFromQuery(r),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := p.Service.List(ctx, access.FromContext(r.Context()), query)
	if err != nil {
		api.WriteError(w, "failed to get posts", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// PostByIDHandler returns a post by ID
func (p Post) PostByIDHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]
	zap.S().Debugf("post_id: %v", postID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := p.Service.Get(ctx, access.FromContext(r.Context()), postID)
	if err != nil {
		api.WriteError(w, "failed to get post by ID", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, post)
}

// CreatePostHandler creates a post, pending unless the author is an admin
func (p Post) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	var in moderation.CreatePostInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := p.Service.Create(ctx, access.FromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, "failed to create post", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, post)
}

// UpdatePostHandler merges the content fields of a post
func (p Post) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	var in moderation.UpdatePostInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := p.Service.Update(ctx, access.FromContext(r.Context()), mux.Vars(r)["post_id"], in)
	if err != nil {
		api.WriteError(w, "failed to update post", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, post)
}

// DeletePostHandler deletes a post and its comments
func (p Post) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.Service.Delete(ctx, access.FromContext(r.Context()), mux.Vars(r)["post_id"]); err != nil {
		api.WriteError(w, "failed to delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, p *access.Principal, id string) (*models.Post, error)

// transition runs one of the post transitions and writes the updated post
func (p Post) transition(w http.ResponseWriter, r *http.Request, message string, fn transitionFunc) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := fn(ctx, access.FromContext(r.Context()), mux.Vars(r)["post_id"])
	if err != nil {
		api.WriteError(w, message, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, post)
}

// ApprovePostHandler publishes a pending post
func (p Post) ApprovePostHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to approve post", p.Service.Approve)
}

// RejectPostHandler refuses a post
func (p Post) RejectPostHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to reject post", p.Service.Reject)
}

// MarkFoundHandler completes a post
func (p Post) MarkFoundHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to mark post as found", p.Service.MarkFound)
}

// MarkNotFoundHandler puts a post back into the listing
func (p Post) MarkNotFoundHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to mark post as not found", p.Service.MarkNotFound)
}

// ReturnStatusHandler sets the return status of a post
func (p Post) ReturnStatusHandler(w http.ResponseWriter, r *http.Request) {
	var body returnStatusRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}
	p.transition(w, r, "failed to update return status", func(ctx context.Context, pr *access.Principal, id string) (*models.Post, error) {
		return p.Service.UpdateReturnStatus(ctx, pr, id, body.ReturnStatus)
	})
}

// BanPostHandler hides a post with a reason
func (p Post) BanPostHandler(w http.ResponseWriter, r *http.Request) {
	var body banRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}
	p.transition(w, r, "failed to ban post", func(ctx context.Context, pr *access.Principal, id string) (*models.Post, error) {
		return p.Service.Ban(ctx, pr, id, body.Reason)
	})
}

// UnbanPostHandler lifts a ban
func (p Post) UnbanPostHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to unban post", p.Service.Unban)
}

// LikePostHandler toggles the caller's like
func (p Post) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, "failed to like post", p.Service.ToggleLike)
}

// PostStatsHandler returns the moderation counters
func (p Post) PostStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := p.Service.Stats(ctx, access.FromContext(r.Context()))
	if err != nil {
		api.WriteError(w, "failed to get post stats", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, stats)
}

// RefreshAuthorHandler re-stamps the caller's profile on their posts
func (p Post) RefreshAuthorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := p.Service.RefreshAuthor(ctx, access.FromContext(r.Context()))
	if err != nil {
		api.WriteError(w, "failed to refresh author", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, refreshAuthorResponse{Updated: n})
}
