package commands

import (
	"context"
	"time"

	application "pollsbot/contexts/polling/poll-engine/application"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	"pollsbot/contexts/polling/poll-engine/domain/services"
)

// ExpireOpenPolls closes every open poll older than maxAge with reason
// "expired" and returns how many were closed. Expiry never assigns a
// decision number. Each poll is re-checked under its lock, so a sweep racing
// a threshold closure leaves the threshold result in place.
func (uc PollUseCase) ExpireOpenPolls(ctx context.Context, maxAge time.Duration) (int, error) {
	logger := application.ResolveLogger(uc.Logger)
	open, err := uc.Polls.ListOpenPolls(ctx)
	if err != nil {
		return 0, err
	}
	now := uc.now()
	cutoff := now.Add(-maxAge)

	expired := 0
	for _, candidate := range open {
		if !candidate.CreatedAt.Before(cutoff) {
			continue
		}
		if err := uc.expireOne(ctx, candidate.PollID, cutoff, now); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		logger.Info("expired polls closed",
			"event", "poll_expiry_sweep_completed",
			"module", "polling/poll-engine",
			"layer", "application",
			"closed", expired,
		)
	}
	return expired, nil
}

func (uc PollUseCase) expireOne(ctx context.Context, pollID string, cutoff, now time.Time) error {
	release := uc.Locks.Acquire(pollID)
	defer release()

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.Closed() || !poll.CreatedAt.Before(cutoff) {
		return nil
	}

	votes, err := uc.Polls.ListVotes(ctx, pollID)
	if err != nil {
		return err
	}
	tally := services.ComputeTally(len(poll.Options), votes)
	winning := -1
	if len(tally.Leaders) == 1 {
		winning = tally.Leaders[0]
	}

	if _, err := uc.closeLocked(ctx, poll, services.ClosureDecision{
		ShouldClose:   true,
		Reason:        entities.CloseReasonExpired,
		WinningOption: winning,
	}, now); err != nil {
		return err
	}
	uc.Locks.Forget(pollID)
	return nil
}
