package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/climatenav/navigator/internal/config"
	"github.com/climatenav/navigator/internal/feeds"
	"github.com/climatenav/navigator/pkg/graph"
	"github.com/climatenav/navigator/pkg/routing"
	"github.com/climatenav/navigator/pkg/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := routing.NewEngine(cfg.EngineOptions())

	graphSource := graph.FileSource{Path: cfg.Data.GraphFile}
	hazardSource := feeds.Source{
		FloodZonesShp: cfg.Data.FloodZonesShp,
		AlertsPath:    cfg.Data.AlertsFile,
		GaugesPath:    cfg.Data.GaugesFile,
	}
	if _, err := engine.LoadSnapshotFrom(ctx, graphSource, hazardSource); err != nil {
		return err
	}

	controller := server.NewController(server.NewRoutingApiService(engine))
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewRouter(controller),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
