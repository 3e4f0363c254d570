package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	permissionentities "pollsbot/contexts/identity-access/permission-service/domain/entities"
	ratelimitentities "pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	templateerrors "pollsbot/contexts/polling/template-service/domain/errors"
	templatehttp "pollsbot/contexts/polling/template-service/transport/http"
)

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeTemplateError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if !s.requireTier(w, r, userID, permissionentities.TierCreate) {
		return
	}
	if !s.allowAction(w, r, userID, ratelimitentities.ActionCreateTemplate) {
		return
	}

	var req templatehttp.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTemplateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.templates.Handler.CreateTemplateHandler(r.Context(), userID, req)
	if err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.templates.Handler.ListTemplatesHandler(r.Context())
	if err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.templates.Handler.GetTemplateHandler(r.Context(), r.PathValue("name"))
	if err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeTemplateError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	// Admins may delete any template; everyone else only their own.
	tier, err := s.permissions.Service.Resolve(r.Context(), userID)
	if err != nil {
		writePermissionDomainError(w, err)
		return
	}
	force := tier.AtLeast(permissionentities.TierAdmin)

	if err := s.templates.Handler.DeleteTemplateHandler(r.Context(), r.PathValue("name"), userID, force); err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeTemplateError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if !s.allowAction(w, r, userID, ratelimitentities.ActionUseTemplate) {
		return
	}

	var req templatehttp.RenderTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTemplateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	name := r.PathValue("name")
	resp, err := s.templates.Handler.RenderTemplateHandler(r.Context(), name, req)
	if err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	if _, err := s.templates.Service.RecordUsage(r.Context(), name); err != nil {
		writeTemplateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeTemplateDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, templateerrors.ErrInvalidName):
		writeTemplateError(w, http.StatusBadRequest, "invalid_name", err.Error())
	case errors.Is(err, templateerrors.ErrInvalidTemplate):
		writeTemplateError(w, http.StatusBadRequest, "invalid_template", err.Error())
	case errors.Is(err, templateerrors.ErrTemplateExists):
		writeTemplateError(w, http.StatusConflict, "template_exists", err.Error())
	case errors.Is(err, templateerrors.ErrTemplateNotFound):
		writeTemplateError(w, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, templateerrors.ErrNotOwner):
		writeTemplateError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, templateerrors.ErrUnboundVariable):
		writeTemplateError(w, http.StatusUnprocessableEntity, "unbound_variable", err.Error())
	default:
		writeTemplateError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTemplateError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, templatehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
