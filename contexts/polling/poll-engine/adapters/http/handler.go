package httpadapter

import (
	"context"
	"log/slog"

	"pollsbot/contexts/polling/poll-engine/application/commands"
	"pollsbot/contexts/polling/poll-engine/application/queries"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	httptransport "pollsbot/contexts/polling/poll-engine/transport/http"
)

type Handler struct {
	Polls   commands.PollUseCase
	Results queries.ResultsUseCase
	Status  queries.StatusUseCase
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreatePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		ChatID:          req.ChatID,
		CreatorID:       userID,
		Question:        req.Question,
		Options:         req.Options,
		Threshold:       req.Threshold,
		NonAnonymous:    req.NonAnonymous,
		MaxParticipants: req.MaxParticipants,
		TemplateUsed:    req.TemplateUsed,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) RecordVoteHandler(
	ctx context.Context,
	pollID string,
	userID string,
	req httptransport.RecordVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Polls.RecordVote(ctx, commands.RecordVoteCommand{
		PollID:      pollID,
		UserID:      userID,
		OptionIndex: req.OptionIndex,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		Poll:        mapPoll(result.Poll),
		Counts:      result.Tally.Counts,
		TotalVoters: result.Tally.TotalVoters,
		Superseded:  result.Superseded,
		Closed:      result.Closed,
	}, nil
}

func (h Handler) ClosePollHandler(
	ctx context.Context,
	pollID string,
	userID string,
	req httptransport.ClosePollRequest,
) (httptransport.PollResponse, error) {
	poll, err := h.Polls.ClosePoll(ctx, commands.ClosePollCommand{
		PollID:      pollID,
		RequesterID: userID,
		Force:       req.Force,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) PollResultsHandler(ctx context.Context, pollID string) (httptransport.ResultsResponse, error) {
	results, err := h.Results.PollResults(ctx, pollID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		Poll:           mapPoll(results.Poll),
		Counts:         results.Counts,
		TotalVoters:    results.TotalVoters,
		Leaders:        results.Leaders,
		VotersByOption: results.VotersByOption,
	}, nil
}

func (h Handler) ChatPollsHandler(ctx context.Context, chatID string, limit int) (httptransport.ChatPollsResponse, error) {
	polls, err := h.Results.ChatPolls(ctx, chatID, limit)
	if err != nil {
		return httptransport.ChatPollsResponse{}, err
	}
	out := httptransport.ChatPollsResponse{Polls: make([]httptransport.PollResponse, 0, len(polls))}
	for _, poll := range polls {
		out.Polls = append(out.Polls, mapPoll(poll))
	}
	return out, nil
}

func (h Handler) StatusHandler(ctx context.Context) (httptransport.EngineStatusResponse, error) {
	status, err := h.Status.Status(ctx)
	if err != nil {
		return httptransport.EngineStatusResponse{}, err
	}
	return httptransport.EngineStatusResponse{ActivePolls: status.ActivePolls}, nil
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:          poll.PollID,
		ChatID:          poll.ChatID,
		CreatorID:       poll.CreatorID,
		Question:        poll.Question,
		Options:         poll.Options,
		VotingType:      string(poll.VotingType),
		Threshold:       poll.Threshold,
		NonAnonymous:    poll.NonAnonymous,
		MaxParticipants: poll.MaxParticipants,
		TemplateUsed:    poll.TemplateUsed,
		DecisionNumber:  poll.DecisionNumber,
		CreatedAt:       poll.CreatedAt,
		ClosedAt:        poll.ClosedAt,
		CloseReason:     string(poll.CloseReason),
	}
}
