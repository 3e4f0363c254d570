package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"pollsbot/contexts/identity-access/rate-limit-service/application"
	"pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	httptransport "pollsbot/contexts/identity-access/rate-limit-service/transport/http"
)

type Handler struct {
	Limiter application.Service
	Logger  *slog.Logger
}

func (h Handler) CheckHandler(
	ctx context.Context,
	userID string,
	req httptransport.CheckRequest,
) (httptransport.DecisionResponse, error) {
	decision, err := h.Limiter.CheckAndRecord(ctx, userID, entities.Action(req.Action))
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return MapDecision(decision), nil
}

func (h Handler) FloodStatusHandler(ctx context.Context, userID string) (httptransport.FloodStatusResponse, error) {
	flooding, err := h.Limiter.IsFlooding(ctx, userID)
	if err != nil {
		return httptransport.FloodStatusResponse{}, err
	}
	return httptransport.FloodStatusResponse{Flooding: flooding}, nil
}

// MapDecision rounds the retry hint up so a client that waits the advertised
// number of seconds lands outside the window.
func MapDecision(decision entities.Decision) httptransport.DecisionResponse {
	resp := httptransport.DecisionResponse{
		Allowed:   decision.Allowed,
		Remaining: decision.Remaining,
	}
	if decision.RetryAfter > 0 {
		resp.RetryAfterSeconds = int((decision.RetryAfter + time.Second - 1) / time.Second)
	}
	return resp
}
