// Package app opens the service's external handles and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/config"
	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/store"
)

type App struct {
	cfg    *config.Config
	log    *slog.Logger
	server *http.Server
	pool   *pgxpool.Pool
	rdb    *redis.Client
}

// New connects to storage and Redis, seeds the bootstrap admin and builds the server.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"
	a := &App{cfg: cfg, log: log}

	// ── Storage ──────────────────────────────────────────────
	var st Storage
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("%s: postgres connect: %w", op, err)
		}
		a.pool = pool
		if err := pool.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("%s: postgres ping: %w", op, err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("%s: postgres migrate: %w", op, err)
		}
		st = pg
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, store.RedisOptions{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
		Timeout:     cfg.Redis.Timeout,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.rdb = rdb

	// ── Bootstrap admin ──────────────────────────────────────
	seeder := auth.NewService(st, cfg.Security.BcryptCost, log)
	if err := seeder.EnsureAdmin(ctx, auth.AdminSeed{
		FullName: cfg.Admin.FullName,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// ── Metrics ──────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ── Router ───────────────────────────────────────────────
	router := NewRouter(Deps{
		Log:          log,
		Store:        st,
		Sessions:     auth.NewSessionStore(rdb, cfg.Session.TTL),
		Registry:     reg,
		BcryptCost:   cfg.Security.BcryptCost,
		CookieSecure: cfg.Session.CookieSecure,
		LoginLimiter: rate.NewLimiter(rate.Limit(cfg.Security.LoginRPS), cfg.Security.LoginBurst),
		CORSOrigins:  cfg.CORS.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", slog.String("addr", a.server.Addr), slog.String("env", a.cfg.Env))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app.Run: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("app.Run: shutdown: %w", err)
	}
	return nil
}

// Close releases the storage and Redis handles.
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
