package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// CleanupScheduler runs Service.CleanupOldCache on a cron schedule for as
// long as the process runs. The CLI starts one for every command when a
// cleanup cron is configured; no other CLI path runs cache cleanup.
type CleanupScheduler struct {
	service          *Service
	expr             string
	keepLastNCommits int
}

func NewCleanupScheduler(service *Service, cronExpr string, keepLastNCommits int) *CleanupScheduler {
	return &CleanupScheduler{service: service, expr: cronExpr, keepLastNCommits: keepLastNCommits}
}

// Run blocks, checking every tick whether expr is due, until ctx is
// cancelled. Tick granularity is one minute, matching cron's resolution.
func (c *CleanupScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := gronx.IsDue(c.expr)
			if err != nil {
				slog.Warn("cache cleanup: invalid cron expression", "expr", c.expr, "error", err)
				return
			}
			if !due {
				continue
			}
			n, err := c.service.CleanupOldCache(ctx, c.keepLastNCommits)
			if err != nil {
				slog.Warn("cache cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("cache cleanup evicted stale entries", "count", n)
			}
		}
	}
}
