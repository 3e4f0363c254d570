package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pollsbot/contexts/polling/conversation-service/application"
	"pollsbot/contexts/polling/conversation-service/domain/entities"
	domainerrors "pollsbot/contexts/polling/conversation-service/domain/errors"
	httptransport "pollsbot/contexts/polling/conversation-service/transport/http"
)

type Handler struct {
	Dialogues application.Service

	// DefaultThreshold applies when a poll-creation request omits one.
	DefaultThreshold int

	Logger *slog.Logger
}

func (h Handler) StartDialogueHandler(
	ctx context.Context,
	userID string,
	req httptransport.StartDialogueRequest,
) (httptransport.StepOutcomeResponse, error) {
	var outcome application.StepOutcome
	var err error
	switch entities.Kind(req.Kind) {
	case entities.KindPollCreation:
		threshold := h.DefaultThreshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		outcome, err = h.Dialogues.StartPollCreation(ctx, application.StartPollInput{
			UserID:          userID,
			ChatID:          req.ChatID,
			Threshold:       threshold,
			NonAnonymous:    req.NonAnonymous,
			MaxParticipants: req.MaxParticipants,
		})
	case entities.KindTemplateCreation:
		outcome, err = h.Dialogues.StartTemplateCreation(ctx, userID, req.ChatID)
	case entities.KindTemplateInstantiation:
		outcome, err = h.Dialogues.StartTemplateInstantiation(ctx, userID, req.ChatID, req.TemplateName, req.Variables)
	default:
		return httptransport.StepOutcomeResponse{}, domainerrors.ErrValidation
	}
	if err != nil {
		return httptransport.StepOutcomeResponse{}, err
	}
	return mapOutcome(outcome), nil
}

func (h Handler) AdvanceDialogueHandler(
	ctx context.Context,
	userID string,
	req httptransport.AdvanceDialogueRequest,
) (httptransport.StepOutcomeResponse, error) {
	outcome, err := h.Dialogues.Advance(ctx, userID, req.Input)
	if err != nil {
		return httptransport.StepOutcomeResponse{}, err
	}
	return mapOutcome(outcome), nil
}

// DialogueActionHandler feeds one transport-neutral user action into the
// active dialogue and renders the outcome as a reply descriptor. Only the
// cancel command is recognized; callbacks and free text advance the wizard.
func (h Handler) DialogueActionHandler(
	ctx context.Context,
	userID string,
	req httptransport.InboundActionRequest,
) (httptransport.ReplyResponse, error) {
	var outcome application.StepOutcome
	var err error
	switch req.Kind {
	case "command":
		if strings.TrimPrefix(strings.TrimSpace(req.Payload), "/") != "cancel" {
			return httptransport.ReplyResponse{}, domainerrors.ErrValidation
		}
		outcome, err = h.Dialogues.Cancel(ctx, userID)
	case "callback", "free_text":
		outcome, err = h.Dialogues.Advance(ctx, userID, req.Payload)
	default:
		return httptransport.ReplyResponse{}, domainerrors.ErrValidation
	}
	if err != nil {
		return httptransport.ReplyResponse{}, err
	}
	return mapReply(outcome), nil
}

func (h Handler) CancelDialogueHandler(ctx context.Context, userID string) (httptransport.StepOutcomeResponse, error) {
	outcome, err := h.Dialogues.Cancel(ctx, userID)
	if err != nil {
		return httptransport.StepOutcomeResponse{}, err
	}
	return mapOutcome(outcome), nil
}

func mapReply(outcome application.StepOutcome) httptransport.ReplyResponse {
	switch outcome.Kind {
	case application.OutcomeAwaiting:
		return httptransport.ReplyResponse{Text: outcome.Prompt, Buttons: outcome.Buttons}
	case application.OutcomeRejected:
		return httptransport.ReplyResponse{Text: outcome.Reason, EditPrevious: true}
	case application.OutcomeCancelled:
		return httptransport.ReplyResponse{Text: "Dialogue cancelled."}
	case application.OutcomeCompleted:
		switch {
		case outcome.Poll != nil:
			return httptransport.ReplyResponse{
				Text: fmt.Sprintf("Poll draft ready: %q with %d options.",
					outcome.Poll.Question, len(outcome.Poll.Options)),
			}
		case outcome.Template != nil:
			return httptransport.ReplyResponse{
				Text: fmt.Sprintf("Template %q saved.", outcome.Template.Name),
			}
		case outcome.Instantiation != nil:
			return httptransport.ReplyResponse{
				Text: fmt.Sprintf("All values for %q collected.", outcome.Instantiation.TemplateName),
			}
		}
	}
	return httptransport.ReplyResponse{}
}

func mapOutcome(outcome application.StepOutcome) httptransport.StepOutcomeResponse {
	resp := httptransport.StepOutcomeResponse{
		Outcome: string(outcome.Kind),
		Prompt:  outcome.Prompt,
		Buttons: outcome.Buttons,
		Reason:  outcome.Reason,
	}
	if outcome.Poll != nil {
		resp.Poll = &httptransport.PollDraftResponse{
			Question:        outcome.Poll.Question,
			Options:         outcome.Poll.Options,
			Threshold:       outcome.Poll.Threshold,
			NonAnonymous:    outcome.Poll.NonAnonymous,
			MaxParticipants: outcome.Poll.MaxParticipants,
		}
	}
	if outcome.Template != nil {
		resp.Template = &httptransport.TemplateDraftResponse{
			Name:     outcome.Template.Name,
			Question: outcome.Template.Question,
			Options:  outcome.Template.Options,
		}
	}
	if outcome.Instantiation != nil {
		resp.Instantiation = &httptransport.InstantiationResponse{
			TemplateName: outcome.Instantiation.TemplateName,
			Bindings:     outcome.Instantiation.Bindings,
		}
	}
	return resp
}
