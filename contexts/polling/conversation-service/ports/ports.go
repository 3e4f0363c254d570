package ports

import (
	"context"
	"time"

	"pollsbot/contexts/polling/conversation-service/domain/entities"
)

// DialogueRepository persists at most one dialogue per user.
type DialogueRepository interface {
	GetDialogue(ctx context.Context, userID string) (entities.Dialogue, bool, error)
	SaveDialogue(ctx context.Context, dialogue entities.Dialogue) error
	DeleteDialogue(ctx context.Context, userID string) error
	// ListIdleSince returns dialogues whose last activity is at or before
	// the cutoff.
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]entities.Dialogue, error)
}

// Clock abstracts time so expiry is testable.
type Clock interface {
	Now() time.Time
}
