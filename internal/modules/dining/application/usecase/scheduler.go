package usecase

import (
	"context"
	"log/slog"
	"time"
)

// RunSchedule refreshes the whole catalog every interval until ctx is done. With immediate set
// the first batch starts right away. A non-positive interval runs at most the immediate batch.
func (m *DataManager) RunSchedule(ctx context.Context, interval time.Duration, immediate bool) {
	run := func() {
		result := m.RefreshAll(ctx)
		slog.Info("scheduled refresh finished",
			slog.Int("succeeded", len(result.Succeeded)),
			slog.Int("failed", len(result.Failed)),
			slog.Duration("elapsed", result.Elapsed))
	}

	if immediate && ctx.Err() == nil {
		run()
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh schedule stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			run()
		}
	}
}
