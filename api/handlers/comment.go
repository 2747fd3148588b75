package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/api"
	"github.com/linesmerrill/lost-found-api/comments"
)

// Comment exported for testing purposes
type Comment struct {
	Service *comments.Service
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// CommentsByPostHandler returns the comment threads of a post
func (c Comment) CommentsByPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.Service.ListByPost(ctx, mux.Vars(r)["post_id"], pageFromQuery(r))
	if err != nil {
		api.WriteError(w, "failed to get comments", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// CreateCommentHandler adds a comment or a reply
func (c Comment) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	var in comments.CreateCommentInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	comment, err := c.Service.Create(ctx, access.FromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, "failed to create comment", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, comment)
}

// UpdateCommentHandler edits the content of a comment
func (c Comment) UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	var body updateCommentRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	comment, err := c.Service.Update(ctx, access.FromContext(r.Context()), mux.Vars(r)["comment_id"], body.Content)
	if err != nil {
		api.WriteError(w, "failed to update comment", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, comment)
}

// DeleteCommentHandler removes a comment and, for top-level ones, its replies
func (c Comment) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Service.Delete(ctx, access.FromContext(r.Context()), mux.Vars(r)["comment_id"]); err != nil {
		api.WriteError(w, "failed to delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LikeCommentHandler toggles the caller's like on a comment
func (c Comment) LikeCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	comment, err := c.Service.ToggleLike(ctx, access.FromContext(r.Context()), mux.Vars(r)["comment_id"])
	if err != nil {
		api.WriteError(w, "failed to like comment", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, comment)
}
