package core

// scheduler.go runs the idle-workspace janitor.
//
// Workspaces live only in memory, so abandoned browser sessions would
// otherwise accumulate until the process restarts. The janitor runs once at
// start and then every CheckInterval, evicting workspaces that have not
// been touched for TTL. It stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig holds configuration for the idle-workspace janitor.
type JanitorConfig struct {
	TTL           time.Duration // Idle time before eviction (default: 2h)
	CheckInterval time.Duration // How often to sweep (default: 5m)
}

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.TTL <= 0 {
		c.TTL = 2 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Minute
	}
	return c
}

// StartJanitor blocks, evicting idle workspaces until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()
	slog.Info("workspace janitor started",
		"ttl", cfg.TTL.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.runJanitor(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("workspace janitor stopped")
			return
		case <-ticker.C:
			s.runJanitor(ctx, cfg)
		}
	}
}

// runJanitor performs one sweep.
func (s *Service) runJanitor(ctx context.Context, cfg JanitorConfig) {
	start := time.Now()
	evicted := s.EvictIdle(ctx, cfg.TTL)
	if evicted > 0 {
		slog.Info("evicted idle workspaces",
			"evicted", evicted,
			"remaining", s.WorkspaceCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("janitor sweep completed", "remaining", s.WorkspaceCount())
}
