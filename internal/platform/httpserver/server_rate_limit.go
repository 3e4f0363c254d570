package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ratelimithandler "pollsbot/contexts/identity-access/rate-limit-service/adapters/http"
	ratelimitentities "pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	ratelimiterrors "pollsbot/contexts/identity-access/rate-limit-service/domain/errors"
	ratelimithttp "pollsbot/contexts/identity-access/rate-limit-service/transport/http"
)

func (s *Server) handleRateLimitCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeRateLimitError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req ratelimithttp.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRateLimitError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.limiter.Handler.CheckHandler(r.Context(), userID, req)
	if err != nil {
		writeRateLimitDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFloodStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.limiter.Handler.FloodStatusHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeRateLimitDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// allowAction applies the sliding-window limit to a mutating route. Denials
// carry a Retry-After header alongside the error body.
func (s *Server) allowAction(w http.ResponseWriter, r *http.Request, userID string, action ratelimitentities.Action) bool {
	decision, err := s.limiter.Service.CheckAndRecord(r.Context(), userID, action)
	if err != nil {
		writeRateLimitDomainError(w, err)
		return false
	}
	if decision.Allowed {
		return true
	}

	mapped := ratelimithandler.MapDecision(decision)
	if mapped.RetryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(mapped.RetryAfterSeconds))
	}
	writeRateLimitError(w, http.StatusTooManyRequests, "rate_limited", "too many "+string(action)+" attempts, slow down")
	return false
}

func writeRateLimitDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ratelimiterrors.ErrInvalidKey):
		writeRateLimitError(w, http.StatusBadRequest, "invalid_key", err.Error())
	default:
		writeRateLimitError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRateLimitError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ratelimithttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
