package template_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	template "pollsbot/contexts/polling/template-service"
	"pollsbot/contexts/polling/template-service/application"
	domainerrors "pollsbot/contexts/polling/template-service/domain/errors"
	"pollsbot/contexts/polling/template-service/domain/services"
)

func TestExtractVariablesOrderAndDeduplication(t *testing.T) {
	got := services.ExtractVariables("Meet at {place} on {date}, {place} confirmed")
	want := []string{"place", "date"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractVariablesIgnoresMalformedBraces(t *testing.T) {
	cases := map[string][]string{
		"{1bad} {good_1} {} { spaced } {unclosed":  {"good_1"},
		"literal {{nested}} text":                  {"nested"},
		"no placeholders here":                     nil,
		"{a}{b}{a}":                                {"a", "b"},
		"options can use {Variable_Name} as well":  {"Variable_Name"},
		"{_lead} and {x9} are valid identifiers":   {"_lead", "x9"},
		"dash {not-valid} is literal, {ok} is not": {"ok"},
	}
	for text, want := range cases {
		got := services.ExtractVariables(text)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("text %q: expected %v, got %v", text, want, got)
		}
	}
}

func TestSubstituteIsLiteralAndNonReentrant(t *testing.T) {
	out, unbound := services.Substitute("Deploy {service} to {env}", map[string]string{
		"service": "billing-{env}",
		"env":     "prod",
	})
	if len(unbound) != 0 {
		t.Fatalf("unexpected unbound names: %v", unbound)
	}
	// The substituted value keeps its literal {env}; only original
	// placeholder spans are replaced.
	if out != "Deploy billing-{env} to prod" {
		t.Fatalf("unexpected substitution result: %q", out)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	module := template.NewInMemoryModule(nil, nil)
	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:      "release",
		Question:  "Ship {version} on {date}?",
		Options:   []string{"Yes", "No", "Delay until {date}"},
		CreatorID: "user-1",
	}); err != nil {
		t.Fatalf("create template failed: %v", err)
	}

	bindings := map[string]string{"version": "2.4.0", "date": "Friday"}
	first, err := module.Service.Render(context.Background(), "release", bindings)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := module.Service.Render(context.Background(), "release", bindings)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if first.Question != second.Question || !reflect.DeepEqual(first.Options, second.Options) {
		t.Fatalf("render is not idempotent: %+v vs %+v", first, second)
	}
	if first.Question != "Ship 2.4.0 on Friday?" {
		t.Fatalf("unexpected rendered question: %q", first.Question)
	}
	if first.Options[2] != "Delay until Friday" {
		t.Fatalf("options must be rendered too, got %q", first.Options[2])
	}
}

func TestRenderFailsOnUnboundVariable(t *testing.T) {
	module := template.NewInMemoryModule(nil, nil)
	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:      "meeting",
		Question:  "Meet at {place} on {date}?",
		Options:   []string{"Works", "Does not work"},
		CreatorID: "user-1",
	}); err != nil {
		t.Fatalf("create template failed: %v", err)
	}

	_, err := module.Service.Render(context.Background(), "meeting", map[string]string{"place": "office"})
	if !errors.Is(err, domainerrors.ErrUnboundVariable) {
		t.Fatalf("expected unbound variable error, got %v", err)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	module := template.NewInMemoryModule(nil, nil)

	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:     "ab",
		Question: "Too short name?",
		Options:  []string{"Yes", "No"},
	}); !errors.Is(err, domainerrors.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:     "lonely",
		Question: "Single option?",
		Options:  []string{"Yes"},
	}); !errors.Is(err, domainerrors.ErrInvalidTemplate) {
		t.Fatalf("expected invalid template, got %v", err)
	}

	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:      "taken",
		Question:  "First?",
		Options:   []string{"Yes", "No"},
		CreatorID: "user-1",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:      "taken",
		Question:  "Second?",
		Options:   []string{"Yes", "No"},
		CreatorID: "user-2",
	}); !errors.Is(err, domainerrors.ErrTemplateExists) {
		t.Fatalf("expected name conflict, got %v", err)
	}
}

func TestDeleteTemplateOwnership(t *testing.T) {
	module := template.NewInMemoryModule(nil, nil)
	if _, err := module.Service.CreateTemplate(context.Background(), application.CreateTemplateInput{
		Name:      "mine",
		Question:  "Keep or drop?",
		Options:   []string{"Keep", "Drop"},
		CreatorID: "owner",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := module.Service.DeleteTemplate(context.Background(), "mine", "intruder", false); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("expected ownership rejection, got %v", err)
	}
	if err := module.Service.DeleteTemplate(context.Background(), "mine", "intruder", true); err != nil {
		t.Fatalf("forced delete failed: %v", err)
	}
	if _, err := module.Service.GetTemplate(context.Background(), "mine"); !errors.Is(err, domainerrors.ErrTemplateNotFound) {
		t.Fatalf("expected template gone, got %v", err)
	}
}

func TestUsageCountOrdersListing(t *testing.T) {
	module := template.NewInMemoryModule(nil, nil)
	if err := module.Service.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := module.Service.RecordUsage(context.Background(), "budget"); err != nil {
			t.Fatalf("record usage failed: %v", err)
		}
	}
	templates, err := module.Service.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(templates) != 4 {
		t.Fatalf("expected 4 seeded templates, got %d", len(templates))
	}
	if templates[0].Name != "budget" || templates[0].UsageCount != 3 {
		t.Fatalf("expected budget first with 3 usages, got %s/%d", templates[0].Name, templates[0].UsageCount)
	}

	// Seeding again must not reset counters.
	if err := module.Service.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("reseed failed: %v", err)
	}
	reloaded, err := module.Service.GetTemplate(context.Background(), "budget")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.UsageCount != 3 {
		t.Fatalf("reseed must keep usage count, got %d", reloaded.UsageCount)
	}
}
