// Package scheduler runs the background goroutine that keeps the odds board
// fresh: it refetches lines from the provider on a fixed interval so the
// cache stays warm and WS clients receive pushes without anyone polling
// /api/lines.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/service"
)

// Scheduler drives the periodic odds feed refresh. Call Start(ctx) once from
// main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	oddsSvc *service.OddsFeedService
	cfg     *config.Config
	logger  *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(oddsSvc *service.OddsFeedService, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{oddsSvc: oddsSvc, cfg: cfg, logger: logger}
}

// Start launches the refresh goroutine. It returns immediately; the loop
// runs until ctx is cancelled. A zero refresh interval disables it.
func (s *Scheduler) Start(ctx context.Context) {
	if s.cfg.OddsFeed.RefreshInterval <= 0 {
		s.logger.Info("scheduler disabled: refresh interval is zero")
		return
	}
	go s.refreshLoop(ctx)
	s.logger.Info("scheduler started", "interval", s.cfg.OddsFeed.RefreshInterval)
}

// refreshLoop refetches the default sport's lines on every tick. GetLines
// broadcasts to the hub and repopulates both cache tiers on success, and
// serves stale data on provider errors, so a failed tick needs no handling
// beyond a log line.
func (s *Scheduler) refreshLoop(ctx context.Context) {
	defer s.recoverAndLog("refreshLoop")

	ticker := time.NewTicker(s.cfg.OddsFeed.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refreshLoop: shutting down")
			return
		case <-ticker.C:
			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.OddsFeed.FetchTimeout)
			_, err := s.oddsSvc.GetLines(fetchCtx, "", "", "")
			cancel()
			if err != nil {
				s.logger.Warn("refreshLoop: lines refresh failed", "err", err)
			}
		}
	}
}

// recoverAndLog is deferred inside the goroutine to catch unexpected panics,
// log them, and keep the process alive.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
