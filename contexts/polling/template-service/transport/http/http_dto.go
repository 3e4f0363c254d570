package httptransport

import "time"

type CreateTemplateRequest struct {
	Name         string   `json:"name"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Description  string   `json:"description,omitempty"`
	Threshold    int      `json:"threshold"`
	NonAnonymous bool     `json:"non_anonymous"`
}

type RenderTemplateRequest struct {
	Bindings map[string]string `json:"bindings"`
}

type TemplateResponse struct {
	Name         string    `json:"name"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	Description  string    `json:"description,omitempty"`
	Variables    []string  `json:"variables"`
	CreatorID    string    `json:"creator_id"`
	UsageCount   int       `json:"usage_count"`
	Threshold    int       `json:"threshold"`
	NonAnonymous bool      `json:"non_anonymous"`
	CreatedAt    time.Time `json:"created_at"`
}

type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// RenderResponse is a fully substituted template, ready to become a poll.
type RenderResponse struct {
	Template TemplateResponse `json:"template"`
	Question string           `json:"question"`
	Options  []string         `json:"options"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
