package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	permissionentities "pollsbot/contexts/identity-access/permission-service/domain/entities"
	permissionerrors "pollsbot/contexts/identity-access/permission-service/domain/errors"
	permissionhttp "pollsbot/contexts/identity-access/permission-service/transport/http"
)

func (s *Server) handleResolveTier(w http.ResponseWriter, r *http.Request) {
	resp, err := s.permissions.Handler.ResolveTierHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writePermissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantTier(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUserID(r)
	if !ok {
		writePermissionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req permissionhttp.GrantTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePermissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.permissions.Handler.GrantTierHandler(r.Context(), actorID, req)
	if err != nil {
		writePermissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTouchUser(w http.ResponseWriter, r *http.Request) {
	var req permissionhttp.TouchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePermissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.permissions.Handler.TouchUserHandler(r.Context(), r.PathValue("user_id"), req); err != nil {
		writePermissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// requireTier guards a route on the caller's permission tier. It writes the
// refusal itself and reports whether the request may proceed.
func (s *Server) requireTier(w http.ResponseWriter, r *http.Request, userID string, min permissionentities.Tier) bool {
	if err := s.permissions.Service.Require(r.Context(), userID, min); err != nil {
		writePermissionDomainError(w, err)
		return false
	}
	return true
}

func writePermissionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, permissionerrors.ErrInvalidUserID):
		writePermissionError(w, http.StatusBadRequest, "invalid_user_id", err.Error())
	case errors.Is(err, permissionerrors.ErrUnknownTier):
		writePermissionError(w, http.StatusUnprocessableEntity, "unknown_tier", err.Error())
	case errors.Is(err, permissionerrors.ErrPermissionDenied):
		writePermissionError(w, http.StatusForbidden, "permission_denied", err.Error())
	default:
		writePermissionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePermissionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, permissionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
