package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/clients"
	"github.com/spacesedan/vidinsight/internal/logging"
	"github.com/spacesedan/vidinsight/internal/monitoring"
	"github.com/spacesedan/vidinsight/internal/pipeline"
	"github.com/spacesedan/vidinsight/internal/server"
	"github.com/spacesedan/vidinsight/internal/storage"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	clients.InitValkey()
	defer clients.CloseValkey()

	store, err := storage.NewStore()
	if err != nil {
		slog.Error("[Main] Failed to open history database, continuing without history",
			slog.String("error", err.Error()))
		store = nil
	} else {
		defer store.Close()
	}

	orchestrator := pipeline.NewOrchestrator()
	api := server.NewServer(orchestrator, store)
	srv := &http.Server{
		Addr:              config.GetString("HTTP_ADDR", ":8080"),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remoteHealthy, summarizerHealthy := api.HealthFlags()
	go monitoring.MonitorRemoteScoringHealth(ctx, remoteHealthy)
	go monitoring.MonitorSummarizerHealth(ctx, summarizerHealthy)

	go func() {
		slog.Info("[Main] API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Shutdown error", slog.String("error", err.Error()))
	}
}
