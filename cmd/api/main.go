package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/config"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/crypto"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/handler"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/repository"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/tokenstore"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerCfg := handler.RouterConfig{
		AuthRPS:           cfg.RateLimitRPS,
		AuthBurst:         cfg.RateLimitBurst,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Production:        cfg.IsProduction(),
	}

	// API routes are only mounted once storage is reachable.
	backends, closeBackends, err := openStores(ctx, cfg)
	if err != nil {
		slog.Warn("storage unavailable, API routes disabled", "driver", cfg.StorageDriver, "error", err)
	} else {
		defer closeBackends()

		hasher := crypto.NewHasher(crypto.DefaultHashParams())
		tokens := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
		routerCfg.Auth = service.NewAuthService(backends.users, hasher, tokens, backends.denylist)
		routerCfg.Todos = service.NewTodoService(backends.todos)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(ctx, routerCfg),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       2 * cfg.ReadTimeout,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

type stores struct {
	users    service.UserStore
	todos    service.TodoStore
	denylist service.TokenDenylist
}

// openStores connects the configured backends. The returned func releases them.
func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		mem := repository.NewMemory()
		return stores{
			users:    mem.Users(),
			todos:    mem.Todos(),
			denylist: tokenstore.NewMemory(),
		}, func() {}, nil
	}

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connecting to mysql: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	rdb, err := tokenstore.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		db.Close()
		return stores{}, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	closeAll := func() {
		closeLogged("redis", rdb)
		closeLogged("mysql", db)
	}
	return stores{
		users:    repository.NewUserRepository(db),
		todos:    repository.NewTodoRepository(db),
		denylist: tokenstore.NewDenylist(rdb),
	}, closeAll, nil
}

func closeLogged(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("closing connection", "backend", name, "error", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
