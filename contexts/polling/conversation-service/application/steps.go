package application

import (
	"fmt"
	"strings"

	"pollsbot/contexts/polling/conversation-service/domain/entities"
)

const optionsDone = "done"

func (s Service) advancePoll(dialogue entities.Dialogue, input string) (StepOutcome, entities.Dialogue) {
	switch dialogue.Stage {
	case entities.StageQuestion:
		if reason, ok := s.checkQuestion(input); !ok {
			return StepOutcome{Kind: OutcomeRejected, Reason: reason}, dialogue
		}
		dialogue.Poll.Question = input
		dialogue.Stage = entities.StageOptions
		return StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: "Send an option. Send 'done' when you have at least two.",
		}, dialogue

	case entities.StageOptions:
		if strings.EqualFold(input, optionsDone) {
			if len(dialogue.Poll.Options) < 2 {
				return StepOutcome{Kind: OutcomeRejected, Reason: "a poll needs at least two options"}, dialogue
			}
			dialogue.Stage = entities.StageConfirm
			return StepOutcome{
				Kind: OutcomeAwaiting,
				Prompt: fmt.Sprintf("Create poll %q with %d options? (yes/no)",
					dialogue.Poll.Question, len(dialogue.Poll.Options)),
				Buttons: confirmButtons(),
			}, dialogue
		}
		if reason, ok := s.checkOption(input, dialogue.Poll.Options); !ok {
			return StepOutcome{Kind: OutcomeRejected, Reason: reason}, dialogue
		}
		dialogue.Poll.Options = append(dialogue.Poll.Options, input)
		outcome := StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: fmt.Sprintf("Option %d recorded. Send another, or 'done'.", len(dialogue.Poll.Options)),
		}
		if len(dialogue.Poll.Options) >= 2 {
			outcome.Buttons = []string{optionsDone}
		}
		return outcome, dialogue

	case entities.StageConfirm:
		switch parseConfirmation(input) {
		case confirmYes:
			draft := dialogue.Poll
			return StepOutcome{Kind: OutcomeCompleted, Poll: &draft}, dialogue
		case confirmNo:
			return StepOutcome{Kind: OutcomeCancelled, Reason: "declined"}, dialogue
		default:
			return StepOutcome{Kind: OutcomeRejected, Reason: "answer yes or no"}, dialogue
		}
	}
	return StepOutcome{Kind: OutcomeRejected, Reason: "unexpected dialogue state"}, dialogue
}

func (s Service) advanceTemplate(dialogue entities.Dialogue, input string) (StepOutcome, entities.Dialogue) {
	switch dialogue.Stage {
	case entities.StageName:
		if !templateNamePattern.MatchString(input) {
			return StepOutcome{
				Kind:   OutcomeRejected,
				Reason: "template names are 3-50 letters, digits, '-' or '_'",
			}, dialogue
		}
		dialogue.Template.Name = input
		dialogue.Stage = entities.StageQuestion
		return StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: "Send the template question. Placeholders look like {topic}.",
		}, dialogue

	case entities.StageQuestion:
		if reason, ok := s.checkQuestion(input); !ok {
			return StepOutcome{Kind: OutcomeRejected, Reason: reason}, dialogue
		}
		dialogue.Template.Question = input
		dialogue.Stage = entities.StageOptions
		return StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: "Send an option. Send 'done' when you have at least two.",
		}, dialogue

	case entities.StageOptions:
		if strings.EqualFold(input, optionsDone) {
			if len(dialogue.Template.Options) < 2 {
				return StepOutcome{Kind: OutcomeRejected, Reason: "a template needs at least two options"}, dialogue
			}
			dialogue.Stage = entities.StageConfirm
			return StepOutcome{
				Kind: OutcomeAwaiting,
				Prompt: fmt.Sprintf("Save template %q with %d options? (yes/no)",
					dialogue.Template.Name, len(dialogue.Template.Options)),
				Buttons: confirmButtons(),
			}, dialogue
		}
		if reason, ok := s.checkOption(input, dialogue.Template.Options); !ok {
			return StepOutcome{Kind: OutcomeRejected, Reason: reason}, dialogue
		}
		dialogue.Template.Options = append(dialogue.Template.Options, input)
		outcome := StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: fmt.Sprintf("Option %d recorded. Send another, or 'done'.", len(dialogue.Template.Options)),
		}
		if len(dialogue.Template.Options) >= 2 {
			outcome.Buttons = []string{optionsDone}
		}
		return outcome, dialogue

	case entities.StageConfirm:
		switch parseConfirmation(input) {
		case confirmYes:
			draft := dialogue.Template
			return StepOutcome{Kind: OutcomeCompleted, Template: &draft}, dialogue
		case confirmNo:
			return StepOutcome{Kind: OutcomeCancelled, Reason: "declined"}, dialogue
		default:
			return StepOutcome{Kind: OutcomeRejected, Reason: "answer yes or no"}, dialogue
		}
	}
	return StepOutcome{Kind: OutcomeRejected, Reason: "unexpected dialogue state"}, dialogue
}

func (s Service) advanceInstantiation(dialogue entities.Dialogue, input string) (StepOutcome, entities.Dialogue) {
	draft := &dialogue.Instantiation
	if dialogue.Stage != entities.StageVariable || draft.NextVariable >= len(draft.Variables) {
		return StepOutcome{Kind: OutcomeRejected, Reason: "unexpected dialogue state"}, dialogue
	}
	if len([]rune(input)) > s.maxQuestion() {
		return StepOutcome{
			Kind:   OutcomeRejected,
			Reason: fmt.Sprintf("values are limited to %d characters", s.maxQuestion()),
		}, dialogue
	}

	name := draft.Variables[draft.NextVariable]
	if draft.Bindings == nil {
		draft.Bindings = map[string]string{}
	}
	draft.Bindings[name] = input
	draft.NextVariable++

	if draft.NextVariable < len(draft.Variables) {
		return StepOutcome{
			Kind:   OutcomeAwaiting,
			Prompt: fmt.Sprintf("Send a value for {%s}.", draft.Variables[draft.NextVariable]),
		}, dialogue
	}

	bindings := make(map[string]string, len(draft.Bindings))
	for key, value := range draft.Bindings {
		bindings[key] = value
	}
	return StepOutcome{
		Kind: OutcomeCompleted,
		Instantiation: &InstantiationResult{
			TemplateName: draft.TemplateName,
			Bindings:     bindings,
		},
	}, dialogue
}

func (s Service) checkQuestion(input string) (string, bool) {
	if len([]rune(input)) > s.maxQuestion() {
		return fmt.Sprintf("questions are limited to %d characters", s.maxQuestion()), false
	}
	return "", true
}

func (s Service) checkOption(input string, existing []string) (string, bool) {
	if len([]rune(input)) > s.maxOption() {
		return fmt.Sprintf("options are limited to %d characters", s.maxOption()), false
	}
	if len(existing) >= s.maxOptions() {
		return fmt.Sprintf("polls are limited to %d options", s.maxOptions()), false
	}
	for _, option := range existing {
		if strings.EqualFold(option, input) {
			return "that option is already on the list", false
		}
	}
	return "", true
}

type confirmation int

const (
	confirmUnknown confirmation = iota
	confirmYes
	confirmNo
)

func parseConfirmation(input string) confirmation {
	switch strings.ToLower(input) {
	case "yes", "y", "да":
		return confirmYes
	case "no", "n", "нет":
		return confirmNo
	default:
		return confirmUnknown
	}
}

func confirmButtons() []string {
	return []string{"yes", "no"}
}
