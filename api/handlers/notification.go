package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/api"
	"github.com/linesmerrill/lost-found-api/notifications"
)

// Notification exported for testing purposes
type Notification struct {
	Inbox *notifications.Inbox
	Hub   *notifications.Hub
}

type countResponse struct {
	Count int64 `json:"count"`
}

// NotificationsHandler returns the caller's notifications, ?unreadOnly=true
// restricts to unread ones
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	unread, err := boolQuery(r, "unreadOnly")
	if err != nil {
		api.WriteError(w, "invalid unreadOnly filter", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := n.Inbox.List(ctx, access.FromContext(r.Context()), unread != nil && *unread, pageFromQuery(r))
	if err != nil {
		api.WriteError(w, "failed to get notifications", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// UnreadCountHandler returns the number of unread notifications
func (n Notification) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.Inbox.UnreadCount(ctx, access.FromContext(r.Context()))
	if err != nil {
		api.WriteError(w, "failed to count notifications", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

// MarkReadHandler marks one notification as read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notification, err := n.Inbox.MarkRead(ctx, access.FromContext(r.Context()), mux.Vars(r)["notification_id"])
	if err != nil {
		api.WriteError(w, "failed to mark notification as read", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, notification)
}

// MarkAllReadHandler marks every notification of the caller as read
func (n Notification) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.Inbox.MarkAllRead(ctx, access.FromContext(r.Context()))
	if err != nil {
		api.WriteError(w, "failed to mark notifications as read", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, countResponse{Count: count})
}

// DeleteNotificationHandler removes one notification
func (n Notification) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.Inbox.Delete(ctx, access.FromContext(r.Context()), mux.Vars(r)["notification_id"]); err != nil {
		api.WriteError(w, "failed to delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotificationsWebSocketHandler streams new notifications of the caller
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	if err := access.RequireAuthenticated(p); err != nil {
		api.WriteError(w, "unauthorized", err)
		return
	}
	n.Hub.ServeWS(w, r, p.ID)
}
