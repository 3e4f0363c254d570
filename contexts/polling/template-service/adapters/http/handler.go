package httpadapter

import (
	"context"
	"log/slog"

	"pollsbot/contexts/polling/template-service/application"
	"pollsbot/contexts/polling/template-service/domain/entities"
	httptransport "pollsbot/contexts/polling/template-service/transport/http"
)

type Handler struct {
	Templates application.Service
	Logger    *slog.Logger
}

func (h Handler) CreateTemplateHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateTemplateRequest,
) (httptransport.TemplateResponse, error) {
	tpl, err := h.Templates.CreateTemplate(ctx, application.CreateTemplateInput{
		Name:         req.Name,
		Question:     req.Question,
		Options:      req.Options,
		Description:  req.Description,
		CreatorID:    userID,
		Threshold:    req.Threshold,
		NonAnonymous: req.NonAnonymous,
	})
	if err != nil {
		return httptransport.TemplateResponse{}, err
	}
	return mapTemplate(tpl), nil
}

func (h Handler) DeleteTemplateHandler(ctx context.Context, name, userID string, force bool) error {
	return h.Templates.DeleteTemplate(ctx, name, userID, force)
}

func (h Handler) GetTemplateHandler(ctx context.Context, name string) (httptransport.TemplateResponse, error) {
	tpl, err := h.Templates.GetTemplate(ctx, name)
	if err != nil {
		return httptransport.TemplateResponse{}, err
	}
	return mapTemplate(tpl), nil
}

func (h Handler) ListTemplatesHandler(ctx context.Context) (httptransport.TemplateListResponse, error) {
	templates, err := h.Templates.ListTemplates(ctx)
	if err != nil {
		return httptransport.TemplateListResponse{}, err
	}
	out := httptransport.TemplateListResponse{Templates: make([]httptransport.TemplateResponse, 0, len(templates))}
	for _, tpl := range templates {
		out.Templates = append(out.Templates, mapTemplate(tpl))
	}
	return out, nil
}

func (h Handler) RenderTemplateHandler(
	ctx context.Context,
	name string,
	req httptransport.RenderTemplateRequest,
) (httptransport.RenderResponse, error) {
	result, err := h.Templates.Render(ctx, name, req.Bindings)
	if err != nil {
		return httptransport.RenderResponse{}, err
	}
	return httptransport.RenderResponse{
		Template: mapTemplate(result.Template),
		Question: result.Question,
		Options:  result.Options,
	}, nil
}

func mapTemplate(tpl entities.Template) httptransport.TemplateResponse {
	return httptransport.TemplateResponse{
		Name:         tpl.Name,
		Question:     tpl.Question,
		Options:      tpl.Options,
		Description:  tpl.Description,
		Variables:    tpl.Variables,
		CreatorID:    tpl.CreatorID,
		UsageCount:   tpl.UsageCount,
		Threshold:    tpl.Threshold,
		NonAnonymous: tpl.NonAnonymous,
		CreatedAt:    tpl.CreatedAt,
	}
}
