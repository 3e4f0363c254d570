package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "pollsbot/contexts/polling/poll-engine/application"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
	"pollsbot/contexts/polling/poll-engine/domain/services"
	"pollsbot/contexts/polling/poll-engine/ports"
)

const (
	defaultMaxQuestion = 300
	defaultMaxOption   = 100
	defaultMaxOptions  = 10
)

// CreatePollCommand is the write-model input for poll creation.
type CreatePollCommand struct {
	ChatID          string
	CreatorID       string
	Question        string
	Options         []string
	Threshold       int
	NonAnonymous    bool
	MaxParticipants int
	TemplateUsed    string
}

// PollUseCase orchestrates the poll lifecycle commands. All vote and closure
// mutations of one poll run under that poll's entry in Locks.
type PollUseCase struct {
	Polls       ports.PollRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Locks       *PollLocks
	MaxQuestion int
	MaxOption   int
	MaxOptions  int
	Logger      *slog.Logger
}

// CreatePoll validates the input, classifies the voting type from the option
// texts, and stores the new open poll.
func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	chatID := strings.TrimSpace(cmd.ChatID)
	creatorID := strings.TrimSpace(cmd.CreatorID)
	question := strings.TrimSpace(cmd.Question)

	options := make([]string, 0, len(cmd.Options))
	for _, option := range cmd.Options {
		options = append(options, strings.TrimSpace(option))
	}

	if err := uc.validateCreate(chatID, creatorID, question, options, cmd); err != nil {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "polling/poll-engine",
			"layer", "application",
			"chat_id", chatID,
			"creator_id", creatorID,
			"error", err.Error(),
		)
		return entities.Poll{}, err
	}

	pollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	now := uc.now()
	poll := entities.Poll{
		PollID:          pollID,
		ChatID:          chatID,
		CreatorID:       creatorID,
		Question:        question,
		Options:         options,
		VotingType:      services.Classify(options),
		Threshold:       cmd.Threshold,
		NonAnonymous:    cmd.NonAnonymous,
		MaxParticipants: cmd.MaxParticipants,
		TemplateUsed:    strings.TrimSpace(cmd.TemplateUsed),
		CreatedAt:       now,
	}
	if err := uc.Polls.CreatePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}

	if err := uc.publish(ctx, "poll.created", poll.PollID, now, map[string]any{
		"poll_id":     poll.PollID,
		"chat_id":     poll.ChatID,
		"creator_id":  poll.CreatorID,
		"voting_type": string(poll.VotingType),
		"threshold":   poll.Threshold,
		"options":     len(poll.Options),
	}); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "polling/poll-engine",
		"layer", "application",
		"poll_id", poll.PollID,
		"chat_id", poll.ChatID,
		"creator_id", poll.CreatorID,
		"voting_type", string(poll.VotingType),
		"threshold", poll.Threshold,
	)
	return poll, nil
}

func (uc PollUseCase) validateCreate(
	chatID string,
	creatorID string,
	question string,
	options []string,
	cmd CreatePollCommand,
) error {
	if chatID == "" || creatorID == "" {
		return domainerrors.ErrValidation
	}
	if question == "" || len([]rune(question)) > uc.maxQuestion() {
		return domainerrors.ErrValidation
	}
	if len(options) < 2 || len(options) > uc.maxOptions() {
		return domainerrors.ErrValidation
	}
	seen := make(map[string]bool, len(options))
	for _, option := range options {
		if option == "" || len([]rune(option)) > uc.maxOption() {
			return domainerrors.ErrValidation
		}
		folded := strings.ToLower(option)
		if seen[folded] {
			return domainerrors.ErrValidation
		}
		seen[folded] = true
	}
	if cmd.Threshold < 0 || cmd.Threshold > 100 {
		return domainerrors.ErrValidation
	}
	if cmd.MaxParticipants < 0 {
		return domainerrors.ErrValidation
	}
	return nil
}

func (uc PollUseCase) publish(
	ctx context.Context,
	eventType string,
	pollID string,
	occurredAt time.Time,
	payload map[string]any,
) error {
	// Publisher is optional for pure read/test wiring, so nil is a no-op.
	if uc.Publisher == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Publisher.Publish(ctx, newPollEnvelope(eventID, eventType, pollID, occurredAt, payload))
}

func (uc PollUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc PollUseCase) maxQuestion() int {
	if uc.MaxQuestion <= 0 {
		return defaultMaxQuestion
	}
	return uc.MaxQuestion
}

func (uc PollUseCase) maxOption() int {
	if uc.MaxOption <= 0 {
		return defaultMaxOption
	}
	return uc.MaxOption
}

func (uc PollUseCase) maxOptions() int {
	if uc.MaxOptions <= 0 {
		return defaultMaxOptions
	}
	return uc.MaxOptions
}
