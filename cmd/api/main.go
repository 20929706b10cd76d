// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waste-docket-api-server/config"
	"waste-docket-api-server/internal/api/handlers"
	"waste-docket-api-server/internal/api/routes"
	"waste-docket-api-server/internal/app"
	"waste-docket-api-server/internal/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Mongo, secrets and collaborators
	a, err := app.Build(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close(context.Background())

	// 3. Router
	router := routes.SetupRouter(cfg, routes.Dependencies{
		Ops:     a.Resolver,
		Secrets: a.Secrets,
		Hub:     a.Hub,
		DB:      handlers.PingFunc(a.Ping),
		Log:     zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Start server
	go func() {
		zlog.Info("Starting API server", zap.String("port", cfg.Server.Port), zap.Int("operations", len(a.Resolver.Operations())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
