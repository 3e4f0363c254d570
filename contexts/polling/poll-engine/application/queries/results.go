package queries

import (
	"context"
	"sort"
	"strings"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
	"pollsbot/contexts/polling/poll-engine/domain/services"
	"pollsbot/contexts/polling/poll-engine/ports"
)

type ResultsUseCase struct {
	Polls ports.PollRepository
}

// PollResults aggregates the active votes of one poll. Voter identities are
// included only when the poll was created as non-anonymous.
func (uc ResultsUseCase) PollResults(ctx context.Context, pollID string) (entities.PollResults, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return entities.PollResults{}, domainerrors.ErrValidation
	}
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	votes, err := uc.Polls.ListVotes(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}

	tally := services.ComputeTally(len(poll.Options), votes)
	results := entities.PollResults{
		Poll:        poll,
		Counts:      tally.Counts,
		TotalVoters: tally.TotalVoters,
		Leaders:     tally.Leaders,
	}
	if poll.NonAnonymous {
		results.VotersByOption = make(map[int][]string, len(poll.Options))
		for _, vote := range votes {
			if vote.Superseded || vote.OptionIndex < 0 || vote.OptionIndex >= len(poll.Options) {
				continue
			}
			results.VotersByOption[vote.OptionIndex] = append(results.VotersByOption[vote.OptionIndex], vote.UserID)
		}
		for option := range results.VotersByOption {
			sort.Strings(results.VotersByOption[option])
		}
	}
	return results, nil
}

// ChatPolls lists a chat's polls, newest first.
func (uc ResultsUseCase) ChatPolls(ctx context.Context, chatID string, limit int) ([]entities.Poll, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, domainerrors.ErrValidation
	}
	if limit <= 0 {
		limit = 20
	}
	return uc.Polls.ListChatPolls(ctx, chatID, limit)
}
