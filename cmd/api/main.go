package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/persona/internal/api"
	"github.com/your-org/persona/internal/api/ws"
	"github.com/your-org/persona/internal/config"
	"github.com/your-org/persona/internal/fieldconfig"
	"github.com/your-org/persona/internal/observability"
	"github.com/your-org/persona/internal/queue"
	"github.com/your-org/persona/internal/service"
	"github.com/your-org/persona/internal/storage"
	"github.com/your-org/persona/pkg/dto"
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

	slog.Info("starting persona API service", "port", cfg.Server.Port)

	// Field configuration: built-in defaults, optionally replaced from file
	registry := fieldconfig.Default()
	if cfg.FieldConfig.Path != "" {
		if err := registry.LoadFile(cfg.FieldConfig.Path); err != nil {
			observability.FieldConfigReloads.WithLabelValues("error").Inc()
			slog.Error("load field config", "path", cfg.FieldConfig.Path, "error", err)
			os.Exit(1)
		}
		observability.FieldConfigReloads.WithLabelValues("ok").Inc()
		slog.Info("loaded field config", "path", cfg.FieldConfig.Path)
	}

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	svc := service.NewPersonaService(db, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MinIO (optional)
	var avatars *storage.AvatarStore
	if cfg.MinIO.Endpoint != "" {
		avatars, err = storage.NewAvatarStore(cfg.MinIO)
		if err != nil {
			slog.Error("connect to minio", "error", err)
			os.Exit(1)
		}
		if err := avatars.EnsureBucket(context.Background()); err != nil {
			slog.Warn("ensure minio bucket", "error", err)
		}
	} else {
		slog.Warn("minio not configured, avatar endpoints will be unavailable")
	}

	// Connect to NATS (optional)
	var producer *queue.Producer
	var hub *ws.Hub
	if cfg.NATS.URL != "" {
		producer, err = queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureStream(context.Background()); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}
		svc.Events = producer

		// WebSocket hub fed by the persona event stream
		hub = ws.NewHub()
		go hub.Run()

		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		err = consumer.ConsumePersonaEvents(ctx, "api-events", func(ctx context.Context, msg jetstream.Msg) error {
			var event dto.PersonaEvent
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				return err
			}
			hub.BroadcastEvent(&event)
			return nil
		})
		if err != nil {
			slog.Warn("start event consumer", "error", err)
		}
	} else {
		slog.Warn("nats not configured, change events and websocket feed disabled")
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:   cfg.Server.APIKey,
		Service:  svc,
		DB:       db,
		Avatars:  avatars,
		Producer: producer,
		Hub:      hub,
	})

	// Start HTTP server
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
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
