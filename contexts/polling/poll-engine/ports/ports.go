package ports

import (
	"context"
	"time"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
	"pollsbot/internal/shared/events"
)

// PollRepository persists polls, votes, and the per-chat decision counters.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	UpdatePoll(ctx context.Context, poll entities.Poll) error
	// CastVote marks any previous vote of the same voter on the poll as
	// superseded and records the new one.
	CastVote(ctx context.Context, vote entities.Vote) error
	ListVotes(ctx context.Context, pollID string) ([]entities.Vote, error)
	ListOpenPolls(ctx context.Context) ([]entities.Poll, error)
	ListChatPolls(ctx context.Context, chatID string, limit int) ([]entities.Poll, error)
	// NextDecisionNumber atomically increments and returns the chat's
	// decision counter.
	NextDecisionNumber(ctx context.Context, chatID string) (int, error)
}

// EventPublisher emits domain events after state transitions commit.
type EventPublisher interface {
	Publish(ctx context.Context, envelope events.Envelope) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique poll and event identifiers.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
