package commands

import (
	"context"
	"strings"

	application "pollsbot/contexts/polling/poll-engine/application"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
	"pollsbot/contexts/polling/poll-engine/domain/services"
)

// ClosePollCommand requests a manual poll closure. Force bypasses the
// creator check for admin-initiated closures.
type ClosePollCommand struct {
	PollID      string
	RequesterID string
	Force       bool
}

// ClosePoll closes an open poll on request. Manual closure never assigns a
// decision number, whatever the tally looks like at that moment.
func (uc PollUseCase) ClosePoll(ctx context.Context, cmd ClosePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	requesterID := strings.TrimSpace(cmd.RequesterID)
	if pollID == "" || requesterID == "" {
		return entities.Poll{}, domainerrors.ErrValidation
	}

	release := uc.Locks.Acquire(pollID)
	defer release()

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	if poll.Closed() {
		return entities.Poll{}, domainerrors.ErrPollClosed
	}
	if !cmd.Force && poll.CreatorID != requesterID {
		logger.Warn("poll close denied",
			"event", "poll_close_denied",
			"module", "polling/poll-engine",
			"layer", "application",
			"poll_id", pollID,
			"requester_id", requesterID,
			"creator_id", poll.CreatorID,
		)
		return entities.Poll{}, domainerrors.ErrNotCreator
	}

	votes, err := uc.Polls.ListVotes(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	tally := services.ComputeTally(len(poll.Options), votes)
	winning := -1
	if len(tally.Leaders) == 1 {
		winning = tally.Leaders[0]
	}

	poll, err = uc.closeLocked(ctx, poll, services.ClosureDecision{
		ShouldClose:   true,
		Reason:        entities.CloseReasonManual,
		WinningOption: winning,
	}, uc.now())
	if err != nil {
		return entities.Poll{}, err
	}
	uc.Locks.Forget(pollID)
	return poll, nil
}
