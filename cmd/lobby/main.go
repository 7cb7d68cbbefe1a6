package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boardhall/lobby-service/config"
	"github.com/boardhall/lobby-service/internal/notify"
	"github.com/boardhall/lobby-service/internal/pg"
	"github.com/boardhall/lobby-service/internal/postgres"
	"github.com/boardhall/lobby-service/internal/service"
	httpx "github.com/boardhall/lobby-service/internal/transport/http"
	httpmw "github.com/boardhall/lobby-service/internal/transport/http/middleware"
	"github.com/boardhall/lobby-service/internal/transport/ws"
	"github.com/boardhall/lobby-service/pkg/ids"
	"github.com/boardhall/lobby-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	instanceID := logger.EnsureInstanceID("")
	logger.Init(logger.Config{
		Env:        logger.Env(cfg.Logging.Env),
		Service:    cfg.Logging.Service,
		Version:    cfg.Logging.Version,
		InstanceID: instanceID,
		Backend:    logger.Backend(cfg.Logging.Backend),
		AddSource:  cfg.Logging.AddSource,
		Debug:      cfg.Logging.Debug,
	})
	slog.Info("starting lobby-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, pg.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// --- notifier: hub всегда, redis-мост если настроен ---
	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	var bridge *notify.RedisBridge
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		bridge = notify.NewRedisBridge(hub, rdb, instanceID)
		go bridge.Run(ctx)
		notifier = bridge
		slog.Info("redis bridge enabled", "addr", cfg.Redis.Addr)
	}

	// --- coordinator ---
	coord := service.NewCoordinator(store, notifier, ids.MustNew())

	// --- transport ---
	verifier := httpmw.NewVerifier(cfg.Auth.Secret)
	wsServer := ws.NewServer(hub, coord, verifier)
	handler := httpx.NewHandler(coord)
	router := httpx.NewRouter(handler, verifier, wsServer)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	if bridge != nil {
		bridge.Close()
	}
	slog.Info("stopped")
}
