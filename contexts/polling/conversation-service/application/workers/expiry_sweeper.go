package workers

import (
	"context"
	"log/slog"

	application "pollsbot/contexts/polling/conversation-service/application"
)

// ExpirySweeper drops abandoned dialogues on a schedule. Lazy per-access
// expiry handles the common case; the sweep reclaims dialogues of users who
// never came back.
type ExpirySweeper struct {
	Dialogues application.Service
	Logger    *slog.Logger
}

// RunOnce performs one sweep over idle dialogues.
func (s ExpirySweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	swept, err := s.Dialogues.SweepExpired(ctx)
	if err != nil {
		logger.Error("dialogue expiry sweep failed",
			"event", "conversation_expiry_sweep_failed",
			"module", "polling/conversation-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Debug("dialogue expiry sweep finished",
		"event", "conversation_expiry_sweep_finished",
		"module", "polling/conversation-service",
		"layer", "worker",
		"swept", swept,
	)
	return nil
}
