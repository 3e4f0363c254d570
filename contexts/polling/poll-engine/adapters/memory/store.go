package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
)

// Store is the in-memory poll repository used by tests and local wiring. It
// also provides Clock and IDGenerator.
type Store struct {
	mu        sync.RWMutex
	polls     map[string]entities.Poll
	votes     map[string][]entities.Vote
	decisions map[string]int
}

func NewStore() *Store {
	return &Store{
		polls:     make(map[string]entities.Poll),
		votes:     make(map[string][]entities.Vote),
		decisions: make(map[string]int),
	}
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.PollID] = clonePoll(poll)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *Store) UpdatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[poll.PollID]; !ok {
		return domainerrors.ErrPollNotFound
	}
	s.polls[poll.PollID] = clonePoll(poll)
	return nil
}

func (s *Store) CastVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[vote.PollID]; !ok {
		return domainerrors.ErrPollNotFound
	}
	existing := s.votes[vote.PollID]
	for i := range existing {
		if existing[i].UserID == vote.UserID && !existing[i].Superseded {
			existing[i].Superseded = true
		}
	}
	s.votes[vote.PollID] = append(existing, vote)
	return nil
}

func (s *Store) ListVotes(_ context.Context, pollID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := s.votes[strings.TrimSpace(pollID)]
	out := make([]entities.Vote, len(votes))
	copy(out, votes)
	return out, nil
}

func (s *Store) ListOpenPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []entities.Poll
	for _, poll := range s.polls {
		if !poll.Closed() {
			open = append(open, clonePoll(poll))
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	return open, nil
}

func (s *Store) ListChatPolls(_ context.Context, chatID string, limit int) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var polls []entities.Poll
	for _, poll := range s.polls {
		if poll.ChatID == chatID {
			polls = append(polls, clonePoll(poll))
		}
	}
	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].PollID > polls[j].PollID
		}
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	if limit > 0 && len(polls) > limit {
		polls = polls[:limit]
	}
	return polls, nil
}

func (s *Store) NextDecisionNumber(_ context.Context, chatID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[chatID]++
	return s.decisions[chatID], nil
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func clonePoll(poll entities.Poll) entities.Poll {
	out := poll
	out.Options = append([]string(nil), poll.Options...)
	if poll.DecisionNumber != nil {
		number := *poll.DecisionNumber
		out.DecisionNumber = &number
	}
	if poll.ClosedAt != nil {
		closedAt := *poll.ClosedAt
		out.ClosedAt = &closedAt
	}
	return out
}
