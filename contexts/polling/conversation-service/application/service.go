package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"pollsbot/contexts/polling/conversation-service/domain/entities"
	domainerrors "pollsbot/contexts/polling/conversation-service/domain/errors"
	"pollsbot/contexts/polling/conversation-service/ports"
)

const (
	defaultTimeout     = 2 * time.Hour
	defaultMaxQuestion = 300
	defaultMaxOption   = 100
	defaultMaxOptions  = 10
)

var templateNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

// OutcomeKind classifies what a dialogue step produced.
type OutcomeKind string

const (
	OutcomeAwaiting  OutcomeKind = "awaiting"
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// InstantiationResult is the completed output of a template-instantiation
// dialogue: every variable bound, in first-occurrence order.
type InstantiationResult struct {
	TemplateName string
	Bindings     map[string]string
}

// StepOutcome is what a dialogue operation hands back to the transport
// layer. Exactly one of the draft pointers is set when Kind is completed.
// Buttons lists the quick replies the step affords, for transports that can
// render them.
type StepOutcome struct {
	Kind          OutcomeKind
	Prompt        string
	Buttons       []string
	Reason        string
	Poll          *entities.PollDraft
	Template      *entities.TemplateDraft
	Instantiation *InstantiationResult
}

// StartPollInput begins a poll-creation wizard with the poll settings fixed
// up front; the wizard collects question and options.
type StartPollInput struct {
	UserID          string
	ChatID          string
	Threshold       int
	NonAnonymous    bool
	MaxParticipants int
}

// Service owns the per-user dialogue state machine. Operations on one user
// are serialized through Locks; expired dialogues are swept lazily on any
// access and periodically by the worker.
type Service struct {
	Dialogues   ports.DialogueRepository
	Clock       ports.Clock
	Locks       *UserLocks
	Timeout     time.Duration
	MaxQuestion int
	MaxOption   int
	MaxOptions  int
	Logger      *slog.Logger
}

// StartPollCreation opens a poll-creation dialogue for the user.
func (s Service) StartPollCreation(ctx context.Context, input StartPollInput) (StepOutcome, error) {
	userID := strings.TrimSpace(input.UserID)
	chatID := strings.TrimSpace(input.ChatID)
	if userID == "" || chatID == "" {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	if input.Threshold < 0 || input.Threshold > 100 || input.MaxParticipants < 0 {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	return s.start(ctx, entities.Dialogue{
		UserID: userID,
		ChatID: chatID,
		Kind:   entities.KindPollCreation,
		Stage:  entities.StageQuestion,
		Poll: entities.PollDraft{
			Threshold:       input.Threshold,
			NonAnonymous:    input.NonAnonymous,
			MaxParticipants: input.MaxParticipants,
		},
	}, "Send the poll question.")
}

// StartTemplateCreation opens a template-creation dialogue for the user.
func (s Service) StartTemplateCreation(ctx context.Context, userID, chatID string) (StepOutcome, error) {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	if userID == "" || chatID == "" {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	return s.start(ctx, entities.Dialogue{
		UserID: userID,
		ChatID: chatID,
		Kind:   entities.KindTemplateCreation,
		Stage:  entities.StageName,
	}, "Send a template name (3-50 letters, digits, '-' or '_').")
}

// StartTemplateInstantiation opens a dialogue that collects one value per
// template variable, in the order given. A template without variables
// completes immediately.
func (s Service) StartTemplateInstantiation(
	ctx context.Context,
	userID, chatID, templateName string,
	variables []string,
) (StepOutcome, error) {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	templateName = strings.TrimSpace(templateName)
	if userID == "" || chatID == "" || templateName == "" {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	if len(variables) == 0 {
		return StepOutcome{
			Kind: OutcomeCompleted,
			Instantiation: &InstantiationResult{
				TemplateName: templateName,
				Bindings:     map[string]string{},
			},
		}, nil
	}
	return s.start(ctx, entities.Dialogue{
		UserID: userID,
		ChatID: chatID,
		Kind:   entities.KindTemplateInstantiation,
		Stage:  entities.StageVariable,
		Instantiation: entities.InstantiationDraft{
			TemplateName: templateName,
			Variables:    append([]string(nil), variables...),
			Bindings:     map[string]string{},
		},
	}, fmt.Sprintf("Send a value for {%s}.", variables[0]))
}

func (s Service) start(ctx context.Context, dialogue entities.Dialogue, prompt string) (StepOutcome, error) {
	logger := ResolveLogger(s.Logger)
	release := s.Locks.Acquire(dialogue.UserID)
	defer release()

	now := s.now()
	existing, found, err := s.Dialogues.GetDialogue(ctx, dialogue.UserID)
	if err != nil {
		return StepOutcome{}, err
	}
	if found {
		if !existing.ExpiredAt(now, s.timeout()) {
			return StepOutcome{}, domainerrors.ErrDialogueConflict
		}
		// Expired drafts are discarded silently, like a cancellation.
		if err := s.Dialogues.DeleteDialogue(ctx, dialogue.UserID); err != nil {
			return StepOutcome{}, err
		}
	}

	dialogue.StartedAt = now
	dialogue.UpdatedAt = now
	if err := s.Dialogues.SaveDialogue(ctx, dialogue); err != nil {
		return StepOutcome{}, err
	}
	logger.Info("dialogue started",
		"event", "conversation_dialogue_started",
		"module", "polling/conversation-service",
		"layer", "application",
		"user_id", dialogue.UserID,
		"chat_id", dialogue.ChatID,
		"kind", string(dialogue.Kind),
	)
	return StepOutcome{Kind: OutcomeAwaiting, Prompt: prompt}, nil
}

// Advance feeds one user message into the active dialogue. A rejected step
// keeps all collected data and waits for corrected input.
func (s Service) Advance(ctx context.Context, userID, input string) (StepOutcome, error) {
	logger := ResolveLogger(s.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	release := s.Locks.Acquire(userID)
	defer release()

	now := s.now()
	dialogue, found, err := s.Dialogues.GetDialogue(ctx, userID)
	if err != nil {
		return StepOutcome{}, err
	}
	if !found {
		return StepOutcome{}, domainerrors.ErrNoDialogue
	}
	if dialogue.ExpiredAt(now, s.timeout()) {
		if err := s.Dialogues.DeleteDialogue(ctx, userID); err != nil {
			return StepOutcome{}, err
		}
		logger.Info("dialogue expired",
			"event", "conversation_dialogue_expired",
			"module", "polling/conversation-service",
			"layer", "application",
			"user_id", userID,
			"kind", string(dialogue.Kind),
		)
		return StepOutcome{Kind: OutcomeCancelled, Reason: "expired"}, nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return StepOutcome{Kind: OutcomeRejected, Reason: "empty message"}, nil
	}

	var outcome StepOutcome
	switch dialogue.Kind {
	case entities.KindPollCreation:
		outcome, dialogue = s.advancePoll(dialogue, input)
	case entities.KindTemplateCreation:
		outcome, dialogue = s.advanceTemplate(dialogue, input)
	case entities.KindTemplateInstantiation:
		outcome, dialogue = s.advanceInstantiation(dialogue, input)
	default:
		return StepOutcome{}, domainerrors.ErrValidation
	}

	switch outcome.Kind {
	case OutcomeCompleted, OutcomeCancelled:
		if err := s.Dialogues.DeleteDialogue(ctx, userID); err != nil {
			return StepOutcome{}, err
		}
	case OutcomeAwaiting:
		dialogue.UpdatedAt = now
		if err := s.Dialogues.SaveDialogue(ctx, dialogue); err != nil {
			return StepOutcome{}, err
		}
	case OutcomeRejected:
		// Rejection keeps the stored state untouched, including its
		// expiry clock.
	}

	logger.Debug("dialogue advanced",
		"event", "conversation_dialogue_advanced",
		"module", "polling/conversation-service",
		"layer", "application",
		"user_id", userID,
		"kind", string(dialogue.Kind),
		"stage", string(dialogue.Stage),
		"outcome", string(outcome.Kind),
	)
	return outcome, nil
}

// Cancel discards the user's dialogue. Cancellation has no side effects
// beyond dropping the draft.
func (s Service) Cancel(ctx context.Context, userID string) (StepOutcome, error) {
	logger := ResolveLogger(s.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return StepOutcome{}, domainerrors.ErrValidation
	}
	release := s.Locks.Acquire(userID)
	defer release()

	_, found, err := s.Dialogues.GetDialogue(ctx, userID)
	if err != nil {
		return StepOutcome{}, err
	}
	if !found {
		return StepOutcome{}, domainerrors.ErrNoDialogue
	}
	if err := s.Dialogues.DeleteDialogue(ctx, userID); err != nil {
		return StepOutcome{}, err
	}
	logger.Info("dialogue cancelled",
		"event", "conversation_dialogue_cancelled",
		"module", "polling/conversation-service",
		"layer", "application",
		"user_id", userID,
	)
	return StepOutcome{Kind: OutcomeCancelled, Reason: "cancelled"}, nil
}

// SweepExpired deletes every dialogue past its idle timeout and returns the
// count. The worker runs this on an interval; lazy per-access expiry covers
// the gap between sweeps.
func (s Service) SweepExpired(ctx context.Context) (int, error) {
	logger := ResolveLogger(s.Logger)
	now := s.now()
	cutoff := now.Add(-s.timeout())
	idle, err := s.Dialogues.ListIdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, dialogue := range idle {
		release := s.Locks.Acquire(dialogue.UserID)
		current, found, err := s.Dialogues.GetDialogue(ctx, dialogue.UserID)
		if err == nil && found && current.ExpiredAt(now, s.timeout()) {
			err = s.Dialogues.DeleteDialogue(ctx, dialogue.UserID)
			if err == nil {
				swept++
			}
		}
		release()
		if err != nil {
			return swept, err
		}
	}
	if swept > 0 {
		logger.Info("expired dialogues swept",
			"event", "conversation_expiry_sweep_completed",
			"module", "polling/conversation-service",
			"layer", "application",
			"swept", swept,
		)
	}
	return swept, nil
}

func (s Service) now() time.Time {
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	return now
}

func (s Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultTimeout
	}
	return s.Timeout
}

func (s Service) maxQuestion() int {
	if s.MaxQuestion <= 0 {
		return defaultMaxQuestion
	}
	return s.MaxQuestion
}

func (s Service) maxOption() int {
	if s.MaxOption <= 0 {
		return defaultMaxOption
	}
	return s.MaxOption
}

func (s Service) maxOptions() int {
	if s.MaxOptions <= 0 {
		return defaultMaxOptions
	}
	return s.MaxOptions
}
