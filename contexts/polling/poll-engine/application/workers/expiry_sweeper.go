package workers

import (
	"context"
	"log/slog"
	"time"

	application "pollsbot/contexts/polling/poll-engine/application"
	"pollsbot/contexts/polling/poll-engine/application/commands"
)

// ExpirySweeper closes stale open polls on a schedule. The worker process
// runs RunOnce on each tick; the command layer owns per-poll atomicity.
type ExpirySweeper struct {
	Polls        commands.PollUseCase
	AutoCloseAge time.Duration
	Logger       *slog.Logger
}

// RunOnce performs one sweep over the open polls.
func (s ExpirySweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	maxAge := s.AutoCloseAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	closed, err := s.Polls.ExpireOpenPolls(ctx, maxAge)
	if err != nil {
		logger.Error("poll expiry sweep failed",
			"event", "poll_expiry_sweep_failed",
			"module", "polling/poll-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Debug("poll expiry sweep finished",
		"event", "poll_expiry_sweep_finished",
		"module", "polling/poll-engine",
		"layer", "worker",
		"closed", closed,
		"max_age", maxAge.String(),
	)
	return nil
}
