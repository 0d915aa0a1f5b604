package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/chartbind/internal/config"
	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/logging"
	"github.com/JonMunkholm/chartbind/internal/render"
	"github.com/JonMunkholm/chartbind/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"audit_db", cfg.Database.Enabled(),
		"max_workspaces", cfg.Workspace.MaxWorkspaces,
		"render_max_concurrent", cfg.Render.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink core.AuditSink
	if cfg.Database.Enabled() {
		pool, err := connectDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg := core.NewPgAuditSink(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = pg
	}

	renderOpts := render.Options{Width: cfg.Render.Width, Height: cfg.Render.Height}
	if cfg.Render.FontPath != "" {
		font, err := render.LoadFont(cfg.Render.FontPath)
		if err != nil {
			return err
		}
		renderOpts.Font = font
		slog.Info("chart font loaded", "path", cfg.Render.FontPath)
	}

	service := core.NewService(core.ServiceConfig{
		MaxWorkspaces:        cfg.Workspace.MaxWorkspaces,
		AuditSink:            sink,
		AuditRingSize:        cfg.Workspace.AuditRingSize,
		MaxConcurrentRenders: cfg.Render.MaxConcurrent,
		MaxRenderWait:        cfg.Render.MaxWaitTime,
	})

	slog.Info("chart kinds registered", "count", len(core.ChartKinds()))

	server := web.NewServer(service, cfg, renderOpts)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		service.StartJanitor(gctx, core.JanitorConfig{
			TTL:           cfg.Workspace.TTL,
			CheckInterval: cfg.Workspace.JanitorInterval,
		})
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active exports to complete (with timeout)
		if status := service.RenderStatus(); status.Active > 0 {
			slog.Info("waiting for exports to complete", "active", status.Active)
			if err := service.DrainRenders(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// connectDB opens and verifies the audit database pool.
func connectDB(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to audit database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to audit database")
	}
	return pool, nil
}
