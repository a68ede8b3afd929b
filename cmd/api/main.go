package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/reunite/internal/api"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/recognition"
	"github.com/your-org/reunite/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting reunite API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS (optional event relay)
	var producer *queue.Producer
	if cfg.NATS.URL != "" {
		producer, err = queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureStreams(context.Background()); err != nil {
			slog.Warn("ensure nats streams", "error", err)
		}
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Recognition service client
	recognizer := recognition.NewClient(cfg.Recognition)

	// Sessions + first-run admin account
	sessions := auth.NewSessionManager(cfg.Server.SessionTTL)
	if err := bootstrapAdmin(context.Background(), db, cfg.Server); err != nil {
		slog.Warn("bootstrap admin account", "error", err)
	}

	routerCfg := api.RouterConfig{
		DB:        db,
		Images:    minioStore,
		Hub:       hub,
		Sessions:  sessions,
		Verifier:  recognizer,
		Notifier:  recognizer,
		DBPing:    db,
		MinIOPing: minioStore,
	}
	if producer != nil {
		routerCfg.Events = producer
		routerCfg.NATSPing = producer
	}
	router := api.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

// bootstrapAdmin creates the dashboard admin account on first run.
func bootstrapAdmin(ctx context.Context, db storage.StaffStore, cfg config.ServerConfig) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	_, err := db.GetStaffByStaffID(ctx, cfg.AdminStaffID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.Staff{
		FullName:     "Administrator",
		StaffID:      cfg.AdminStaffID,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		PhoneNumber:  cfg.AdminStaffID,
	}
	if err := db.CreateStaff(ctx, admin); err != nil {
		return err
	}
	slog.Info("admin account created", "staff_id", cfg.AdminStaffID)
	return nil
}
