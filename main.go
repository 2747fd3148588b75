package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/api/handlers"
	"github.com/linesmerrill/lost-found-api/api/scheduler"
	"github.com/linesmerrill/lost-found-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize database and router
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	s := scheduler.NewScheduler(a.Inbox, a.Config.RetentionWindow())
	if err := s.Start(); err != nil {
		zap.S().Fatalw("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infow("lost-found-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"inMemory", a.Config.InMemory(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	zap.S().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("failed to shut down http server", "error", err)
	}
	s.Stop()
	if err := a.Close(ctx); err != nil {
		zap.S().Errorw("failed to close app", "error", err)
	}
	_ = zap.L().Sync()
}
