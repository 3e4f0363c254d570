package commands

import (
	"context"
	"strings"
	"time"

	application "pollsbot/contexts/polling/poll-engine/application"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
	"pollsbot/contexts/polling/poll-engine/domain/services"
)

// RecordVoteCommand casts or replaces one user's vote on a poll.
type RecordVoteCommand struct {
	PollID      string
	UserID      string
	OptionIndex int
}

// RecordVoteResult is the post-vote state the transport layer renders.
type RecordVoteResult struct {
	Poll       entities.Poll
	Tally      services.Tally
	Superseded bool
	Closed     bool
}

// RecordVote records a vote and evaluates the poll's closing conditions in
// one atomic unit. A repeat vote by the same user supersedes the prior one
// and never counts twice; the capacity limit applies to new voters only.
// When the leading option reaches the threshold share the poll closes and
// receives the chat's next decision number inside the same critical section.
func (uc PollUseCase) RecordVote(ctx context.Context, cmd RecordVoteCommand) (RecordVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	pollID := strings.TrimSpace(cmd.PollID)
	userID := strings.TrimSpace(cmd.UserID)
	if pollID == "" || userID == "" {
		return RecordVoteResult{}, domainerrors.ErrValidation
	}

	release := uc.Locks.Acquire(pollID)
	defer release()

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return RecordVoteResult{}, err
	}
	if poll.Closed() {
		return RecordVoteResult{}, domainerrors.ErrPollClosed
	}
	if cmd.OptionIndex < 0 || cmd.OptionIndex >= len(poll.Options) {
		return RecordVoteResult{}, domainerrors.ErrInvalidOption
	}

	votes, err := uc.Polls.ListVotes(ctx, pollID)
	if err != nil {
		return RecordVoteResult{}, err
	}
	superseding := false
	voters := 0
	for _, vote := range votes {
		if vote.Superseded {
			continue
		}
		voters++
		if vote.UserID == userID {
			superseding = true
		}
	}
	if !superseding && poll.MaxParticipants > 0 && voters >= poll.MaxParticipants {
		return RecordVoteResult{}, domainerrors.ErrCapacityExceeded
	}

	now := uc.now()
	vote := entities.Vote{
		PollID:      pollID,
		UserID:      userID,
		OptionIndex: cmd.OptionIndex,
		CastAt:      now,
	}
	if err := uc.Polls.CastVote(ctx, vote); err != nil {
		return RecordVoteResult{}, err
	}

	votes, err = uc.Polls.ListVotes(ctx, pollID)
	if err != nil {
		return RecordVoteResult{}, err
	}
	tally := services.ComputeTally(len(poll.Options), votes)
	decision := services.EvaluateClosure(poll, tally)

	if err := uc.publish(ctx, "vote.recorded", pollID, now, map[string]any{
		"poll_id":      pollID,
		"user_id":      userID,
		"option_index": cmd.OptionIndex,
		"superseded":   superseding,
		"total_voters": tally.TotalVoters,
	}); err != nil {
		return RecordVoteResult{}, err
	}
	logger.Info("vote recorded",
		"event", "poll_vote_recorded",
		"module", "polling/poll-engine",
		"layer", "application",
		"poll_id", pollID,
		"user_id", userID,
		"option_index", cmd.OptionIndex,
		"superseded", superseding,
		"total_voters", tally.TotalVoters,
	)

	if !decision.ShouldClose {
		return RecordVoteResult{Poll: poll, Tally: tally, Superseded: superseding}, nil
	}

	poll, err = uc.closeLocked(ctx, poll, decision, now)
	if err != nil {
		return RecordVoteResult{}, err
	}
	uc.Locks.Forget(pollID)
	return RecordVoteResult{Poll: poll, Tally: tally, Superseded: superseding, Closed: true}, nil
}

// closeLocked finalizes a poll. Callers hold the poll's lock.
func (uc PollUseCase) closeLocked(
	ctx context.Context,
	poll entities.Poll,
	decision services.ClosureDecision,
	now time.Time,
) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	if decision.AssignDecision {
		number, err := uc.Polls.NextDecisionNumber(ctx, poll.ChatID)
		if err != nil {
			return entities.Poll{}, err
		}
		poll.DecisionNumber = &number
	}
	closedAt := now
	poll.ClosedAt = &closedAt
	poll.CloseReason = decision.Reason
	if err := uc.Polls.UpdatePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}

	payload := map[string]any{
		"poll_id":      poll.PollID,
		"chat_id":      poll.ChatID,
		"close_reason": string(poll.CloseReason),
	}
	if poll.DecisionNumber != nil {
		payload["decision_number"] = *poll.DecisionNumber
	}
	if decision.WinningOption >= 0 {
		payload["winning_option"] = decision.WinningOption
	}
	if err := uc.publish(ctx, "poll.closed", poll.PollID, now, payload); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll closed",
		"event", "poll_closed",
		"module", "polling/poll-engine",
		"layer", "application",
		"poll_id", poll.PollID,
		"chat_id", poll.ChatID,
		"close_reason", string(poll.CloseReason),
		"decision_assigned", poll.DecisionNumber != nil,
	)
	return poll, nil
}
