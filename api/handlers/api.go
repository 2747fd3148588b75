package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/api"
	"github.com/linesmerrill/lost-found-api/comments"
	"github.com/linesmerrill/lost-found-api/config"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/databases/memdb"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/moderation"
	"github.com/linesmerrill/lost-found-api/notifications"
	"github.com/linesmerrill/lost-found-api/profiles"
	"github.com/linesmerrill/lost-found-api/reports"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router     *mux.Router
	Config     config.Config
	Dispatcher *notifications.Dispatcher
	Hub        *notifications.Hub
	Inbox      *notifications.Inbox

	client databases.ClientHelper
	stores stores
}

// stores groups the collection handles of one backend
type stores struct {
	posts         databases.PostDatabase
	comments      databases.CommentDatabase
	reports       databases.ReportDatabase
	notifications databases.NotificationDatabase
	users         databases.UserDatabase
}

func mongoStores(db databases.DatabaseHelper) stores {
	return stores{
		posts:         databases.NewPostDatabase(db),
		comments:      databases.NewCommentDatabase(db),
		reports:       databases.NewReportDatabase(db),
		notifications: databases.NewNotificationDatabase(db),
		users:         databases.NewUserDatabase(db),
	}
}

func memoryStores(s *memdb.Store) stores {
	return stores{
		posts:         s.Posts(),
		comments:      s.Comments(),
		reports:       s.Reports(),
		notifications: s.Notifications(),
		users:         s.Users(),
	}
}

// Initialize is invoked by main to connect with the database, start the
// notification workers and create a router
func (a *App) Initialize() error {
	if err := a.Config.Validate(); err != nil {
		zap.S().With(err).Error("invalid configuration")
		return err
	}
	if a.Config.RequestTimeout > 0 {
		api.QueryTimeout = a.Config.RequestTimeout
	}

	if a.Config.InMemory() {
		zap.S().Warn("DB_URI is not set, using the in-memory store")
		a.stores = memoryStores(memdb.New())
	} else {
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			// if we fail to create a new database client, then kill the pod
			zap.S().With(err).Error("failed to create new client")
			return err
		}
		ctx, cancel := api.WithQueryTimeout(context.Background())
		defer cancel()
		if err := client.Connect(ctx); err != nil {
			// if we fail to connect to the database, then kill the pod
			zap.S().With(err).Error("failed to connect to database")
			return err
		}
		a.client = client
		a.stores = mongoStores(databases.NewDatabase(&a.Config, client))
		zap.S().Info("lost-found-api has connected to the database")
	}

	a.Hub = notifications.NewHub()
	a.Dispatcher = notifications.NewDispatcher(a.Config.NotificationBuffer,
		notifications.StoreSink{DB: a.stores.notifications},
		a.Hub,
	)
	a.Dispatcher.Start(a.Config.NotificationWorkers)
	a.Inbox = notifications.NewInbox(a.stores.notifications)

	a.Router = a.New()
	return nil
}

// Close drains the notification queue and disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Stop(ctx); err != nil {
			zap.S().Warnw("notification queue not drained", "error", err)
		}
	}
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	authn := api.NewAuthenticator(a.Config.JWTSecret)
	required := authn.Required
	optional := authn.Optional

	var events notifications.Emitter = notifications.Discard
	if a.Dispatcher != nil {
		events = a.Dispatcher
	}
	provider := profiles.NewDirectory(a.stores.users)
	p := Post{Service: moderation.NewService(a.stores.posts, a.stores.comments, provider, events)}
	c := Comment{Service: comments.NewService(a.stores.posts, a.stores.comments, provider, events)}
	rep := Report{Service: reports.NewService(a.stores.reports, a.stores.posts)}
	n := Notification{Inbox: a.Inbox, Hub: a.Hub}

	r := mux.NewRouter()
	r.Use(api.LoggingMiddleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.Handle("/ws/notifications", api.QueryTokenMiddleware(required(http.HandlerFunc(n.NotificationsWebSocketHandler))))

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))

	apiCreate.Handle("/posts", optional(http.HandlerFunc(p.PostsHandler))).Methods("GET")
	apiCreate.Handle("/posts", required(http.HandlerFunc(p.CreatePostHandler))).Methods("POST")
	apiCreate.Handle("/posts/stats", required(http.HandlerFunc(p.PostStatsHandler))).Methods("GET")
	apiCreate.Handle("/posts/refresh-author", required(http.HandlerFunc(p.RefreshAuthorHandler))).Methods("POST")
	apiCreate.Handle("/posts/{post_id}", optional(http.HandlerFunc(p.PostByIDHandler))).Methods("GET")
	apiCreate.Handle("/posts/{post_id}", required(http.HandlerFunc(p.UpdatePostHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}", required(http.HandlerFunc(p.DeletePostHandler))).Methods("DELETE")
	apiCreate.Handle("/posts/{post_id}/approve", required(http.HandlerFunc(p.ApprovePostHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/reject", required(http.HandlerFunc(p.RejectPostHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/found", required(http.HandlerFunc(p.MarkFoundHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/not-found", required(http.HandlerFunc(p.MarkNotFoundHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/return-status", required(http.HandlerFunc(p.ReturnStatusHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/ban", required(http.HandlerFunc(p.BanPostHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/unban", required(http.HandlerFunc(p.UnbanPostHandler))).Methods("PUT")
	apiCreate.Handle("/posts/{post_id}/like", required(http.HandlerFunc(p.LikePostHandler))).Methods("POST")
	apiCreate.Handle("/posts/{post_id}/comments", http.HandlerFunc(c.CommentsByPostHandler)).Methods("GET")

	apiCreate.Handle("/comments", required(http.HandlerFunc(c.CreateCommentHandler))).Methods("POST")
	apiCreate.Handle("/comments/{comment_id}", required(http.HandlerFunc(c.UpdateCommentHandler))).Methods("PUT")
	apiCreate.Handle("/comments/{comment_id}", required(http.HandlerFunc(c.DeleteCommentHandler))).Methods("DELETE")
	apiCreate.Handle("/comments/{comment_id}/like", required(http.HandlerFunc(c.LikeCommentHandler))).Methods("POST")

	apiCreate.Handle("/reports", required(http.HandlerFunc(rep.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/reports", required(http.HandlerFunc(rep.ReportsHandler))).Methods("GET")
	apiCreate.Handle("/reports/{report_id}", required(http.HandlerFunc(rep.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/reports/{report_id}/status", required(http.HandlerFunc(rep.UpdateReportStatusHandler))).Methods("PATCH")
	apiCreate.Handle("/reports/{report_id}", required(http.HandlerFunc(rep.DeleteReportHandler))).Methods("DELETE")

	apiCreate.Handle("/notifications", required(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/unread-count", required(http.HandlerFunc(n.UnreadCountHandler))).Methods("GET")
	apiCreate.Handle("/notifications/read-all", required(http.HandlerFunc(n.MarkAllReadHandler))).Methods("PUT")
	apiCreate.Handle("/notifications/{notification_id}/read", required(http.HandlerFunc(n.MarkReadHandler))).Methods("PUT")
	apiCreate.Handle("/notifications/{notification_id}", required(http.HandlerFunc(n.DeleteNotificationHandler))).Methods("DELETE")

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
