package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"pollsbot/contexts/polling/template-service/domain/entities"
	domainerrors "pollsbot/contexts/polling/template-service/domain/errors"
	"pollsbot/contexts/polling/template-service/domain/services"
	"pollsbot/contexts/polling/template-service/ports"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

// CreateTemplateInput is the write-model input for template creation.
type CreateTemplateInput struct {
	Name         string
	Question     string
	Options      []string
	Description  string
	CreatorID    string
	Threshold    int
	NonAnonymous bool
}

// RenderResult is a fully substituted template, ready to become a poll.
type RenderResult struct {
	Template entities.Template
	Question string
	Options  []string
}

// Service owns template CRUD and rendering. Limits come from configuration
// and match the poll engine's own question/option limits.
type Service struct {
	Templates   ports.TemplateRepository
	Clock       ports.Clock
	MaxQuestion int
	MaxOption   int
	Logger      *slog.Logger
}

// CreateTemplate validates and stores a new template. Variables are derived
// from placeholders in the question and options, in first-occurrence order.
func (s Service) CreateTemplate(ctx context.Context, input CreateTemplateInput) (entities.Template, error) {
	name := strings.TrimSpace(input.Name)
	if !namePattern.MatchString(name) {
		return entities.Template{}, domainerrors.ErrInvalidName
	}
	question := strings.TrimSpace(input.Question)
	if question == "" || len([]rune(question)) > s.maxQuestion() {
		return entities.Template{}, domainerrors.ErrInvalidTemplate
	}
	if len(input.Options) < 2 {
		return entities.Template{}, domainerrors.ErrInvalidTemplate
	}
	options := make([]string, 0, len(input.Options))
	for _, option := range input.Options {
		option = strings.TrimSpace(option)
		if option == "" || len([]rune(option)) > s.maxOption() {
			return entities.Template{}, domainerrors.ErrInvalidTemplate
		}
		options = append(options, option)
	}
	if input.Threshold < 0 || input.Threshold > 100 {
		return entities.Template{}, domainerrors.ErrInvalidTemplate
	}

	if _, found, err := s.Templates.GetTemplate(ctx, name); err != nil {
		return entities.Template{}, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	} else if found {
		return entities.Template{}, domainerrors.ErrTemplateExists
	}

	scanTexts := append([]string{question}, options...)
	tpl := entities.Template{
		Name:         name,
		Question:     question,
		Options:      options,
		Description:  strings.TrimSpace(input.Description),
		Variables:    services.ExtractVariables(scanTexts...),
		CreatorID:    strings.TrimSpace(input.CreatorID),
		Threshold:    input.Threshold,
		NonAnonymous: input.NonAnonymous,
		CreatedAt:    s.now(),
	}
	if err := s.Templates.SaveTemplate(ctx, tpl); err != nil {
		return entities.Template{}, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}

	ResolveLogger(s.Logger).Info("template created",
		"event", "template_created",
		"module", "polling/template-service",
		"layer", "application",
		"template", tpl.Name,
		"creator_id", tpl.CreatorID,
		"variables", len(tpl.Variables),
	)
	return tpl, nil
}

// DeleteTemplate removes a template. Only the creator may delete unless the
// caller passes force (admin path, checked by the caller).
func (s Service) DeleteTemplate(ctx context.Context, name, requesterID string, force bool) error {
	tpl, found, err := s.Templates.GetTemplate(ctx, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if !found {
		return domainerrors.ErrTemplateNotFound
	}
	if !force && tpl.CreatorID != strings.TrimSpace(requesterID) {
		return domainerrors.ErrNotOwner
	}
	if err := s.Templates.DeleteTemplate(ctx, tpl.Name); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	return nil
}

func (s Service) GetTemplate(ctx context.Context, name string) (entities.Template, error) {
	tpl, found, err := s.Templates.GetTemplate(ctx, strings.TrimSpace(name))
	if err != nil {
		return entities.Template{}, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if !found {
		return entities.Template{}, domainerrors.ErrTemplateNotFound
	}
	return tpl, nil
}

func (s Service) ListTemplates(ctx context.Context) ([]entities.Template, error) {
	templates, err := s.Templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	return templates, nil
}

// Render substitutes bindings into the template text. Every placeholder must
// have a binding; a miss is an internal consistency defect because the
// instantiation dialogue collects values for exactly the derived variables.
func (s Service) Render(ctx context.Context, name string, bindings map[string]string) (RenderResult, error) {
	tpl, err := s.GetTemplate(ctx, name)
	if err != nil {
		return RenderResult{}, err
	}

	question, unbound := services.Substitute(tpl.Question, bindings)
	options := make([]string, 0, len(tpl.Options))
	for _, option := range tpl.Options {
		rendered, missing := services.Substitute(option, bindings)
		unbound = append(unbound, missing...)
		options = append(options, rendered)
	}
	if len(unbound) > 0 {
		ResolveLogger(s.Logger).Error("template rendered with unbound placeholders",
			"event", "template_unbound_variable",
			"module", "polling/template-service",
			"layer", "application",
			"template", tpl.Name,
			"unbound", strings.Join(unbound, ","),
		)
		return RenderResult{}, domainerrors.ErrUnboundVariable
	}

	return RenderResult{Template: tpl, Question: question, Options: options}, nil
}

// RecordUsage bumps the usage counter after a successful instantiation.
func (s Service) RecordUsage(ctx context.Context, name string) (int, error) {
	count, err := s.Templates.IncrementUsage(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	return count, nil
}

// SeedDefaults installs the stock templates when they are absent. Existing
// templates, including user-modified ones with the same name, stay untouched.
func (s Service) SeedDefaults(ctx context.Context) error {
	for _, seed := range defaultTemplates() {
		_, found, err := s.Templates.GetTemplate(ctx, seed.Name)
		if err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
		}
		if found {
			continue
		}
		seed.CreatedAt = s.now()
		if err := s.Templates.SaveTemplate(ctx, seed); err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
		}
		ResolveLogger(s.Logger).Info("default template seeded",
			"event", "template_default_seeded",
			"module", "polling/template-service",
			"layer", "application",
			"template", seed.Name,
		)
	}
	return nil
}

func defaultTemplates() []entities.Template {
	build := func(name, question, description string, options []string) entities.Template {
		scanTexts := append([]string{question}, options...)
		return entities.Template{
			Name:        name,
			Question:    question,
			Options:     options,
			Description: description,
			Variables:   services.ExtractVariables(scanTexts...),
			CreatorID:   "system",
			Threshold:   50,
		}
	}
	return []entities.Template{
		build("yes_no", "{topic}?", "Simple yes/no question", []string{"Yes", "No"}),
		build("budget", "Allocate {amount} for {purpose}?", "Budget approval", []string{"For", "Against", "Abstain"}),
		build("meeting", "Meet on {date} at {place}?", "Meeting coordination", []string{"Works for me", "Does not work", "Suggest another"}),
		build("priority", "Priority: {item}", "Priority triage", []string{"High", "Medium", "Low"}),
	}
}

func (s Service) maxQuestion() int {
	if s.MaxQuestion <= 0 {
		return 300
	}
	return s.MaxQuestion
}

func (s Service) maxOption() int {
	if s.MaxOption <= 0 {
		return 100
	}
	return s.MaxOption
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
