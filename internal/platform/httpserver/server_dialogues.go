package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	permissionentities "pollsbot/contexts/identity-access/permission-service/domain/entities"
	ratelimitentities "pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	dialogueentities "pollsbot/contexts/polling/conversation-service/domain/entities"
	dialogueerrors "pollsbot/contexts/polling/conversation-service/domain/errors"
	dialoguehttp "pollsbot/contexts/polling/conversation-service/transport/http"
)

func (s *Server) handleStartDialogue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeDialogueError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req dialoguehttp.StartDialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDialogueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	// Wizards that end in a write require the matching tier up front so the
	// user does not walk the whole dialogue only to be refused at the end.
	minTier := permissionentities.TierUse
	switch dialogueentities.Kind(req.Kind) {
	case dialogueentities.KindPollCreation, dialogueentities.KindTemplateCreation:
		minTier = permissionentities.TierCreate
	}
	if !s.requireTier(w, r, userID, minTier) {
		return
	}
	if !s.allowAction(w, r, userID, ratelimitentities.ActionMessage) {
		return
	}

	resp, err := s.dialogues.Handler.StartDialogueHandler(r.Context(), userID, req)
	if err != nil {
		writeDialogueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceDialogue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeDialogueError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if !s.allowAction(w, r, userID, ratelimitentities.ActionMessage) {
		return
	}

	var req dialoguehttp.AdvanceDialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDialogueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.dialogues.Handler.AdvanceDialogueHandler(r.Context(), userID, req)
	if err != nil {
		writeDialogueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDialogueAction is the single entry point a chat transport needs:
// it accepts raw user actions and answers with a ready-to-render reply.
func (s *Server) handleDialogueAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeDialogueError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if !s.allowAction(w, r, userID, ratelimitentities.ActionMessage) {
		return
	}

	var req dialoguehttp.InboundActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDialogueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.dialogues.Handler.DialogueActionHandler(r.Context(), userID, req)
	if err != nil {
		writeDialogueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelDialogue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeDialogueError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.dialogues.Handler.CancelDialogueHandler(r.Context(), userID)
	if err != nil {
		writeDialogueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDialogueDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dialogueerrors.ErrValidation):
		writeDialogueError(w, http.StatusBadRequest, "invalid_dialogue", err.Error())
	case errors.Is(err, dialogueerrors.ErrDialogueConflict):
		writeDialogueError(w, http.StatusConflict, "dialogue_conflict", err.Error())
	case errors.Is(err, dialogueerrors.ErrNoDialogue):
		writeDialogueError(w, http.StatusNotFound, "no_dialogue", err.Error())
	default:
		writeDialogueError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDialogueError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, dialoguehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
