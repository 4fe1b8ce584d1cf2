package main

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/service"
	"ctchen222/Task-Tracker/internal/auth"
	"ctchen222/Task-Tracker/internal/config"
	"ctchen222/Task-Tracker/internal/db"
	"ctchen222/Task-Tracker/internal/events"
	"ctchen222/Task-Tracker/internal/logger"
	"ctchen222/Task-Tracker/internal/realtime"
	"ctchen222/Task-Tracker/internal/server"
	"ctchen222/Task-Tracker/internal/telemetry"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)

	// Initialize the task database
	DB, err := db.Connect(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer DB.Close()
	if err := db.Migrate(ctx, DB); err != nil {
		return err
	}

	// Redis is optional; without it task events are dropped and /ws/tasks is disabled.
	var (
		publisher events.Publisher
		feed      *realtime.Feed
	)
	if cfg.RedisAddr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}(rdb)

		bus := events.NewBus(rdb)
		publisher = bus
		feed = realtime.NewFeed(bus, server.OriginChecker(cfg.CORSAllowedOrigins))
	} else {
		slog.Warn("REDIS_ADDR not set, task feed disabled")
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL, auth.SystemClock{})
	if err != nil {
		return err
	}

	// Create repositories
	userRepo := repository.NewUserRepository(DB)
	taskRepo := repository.NewTaskRepository(DB)

	// Create services
	authService := service.NewAuthService(userRepo, auth.NewHasher(cfg.BcryptCost), tokens)
	taskService := service.NewTaskService(taskRepo, publisher)

	// Create the Gin-based server
	srv := server.NewServer(server.Options{
		DB:             DB,
		AuthService:    authService,
		TaskService:    taskService,
		Feed:           feed,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", httpServer.Addr, "db_driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return err
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exiting")
	return nil
}
