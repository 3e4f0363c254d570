package httpadapter

import (
	"context"
	"log/slog"

	"pollsbot/contexts/identity-access/permission-service/application"
	"pollsbot/contexts/identity-access/permission-service/domain/entities"
	httptransport "pollsbot/contexts/identity-access/permission-service/transport/http"
)

type Handler struct {
	Permissions application.Service
	Logger      *slog.Logger
}

func (h Handler) ResolveTierHandler(ctx context.Context, userID string) (httptransport.TierResponse, error) {
	tier, err := h.Permissions.Resolve(ctx, userID)
	if err != nil {
		return httptransport.TierResponse{}, err
	}
	return httptransport.TierResponse{UserID: userID, Tier: string(tier)}, nil
}

func (h Handler) GrantTierHandler(
	ctx context.Context,
	actorID string,
	req httptransport.GrantTierRequest,
) (httptransport.TierResponse, error) {
	if err := h.Permissions.Grant(ctx, actorID, req.UserID, entities.Tier(req.Tier)); err != nil {
		return httptransport.TierResponse{}, err
	}
	return httptransport.TierResponse{UserID: req.UserID, Tier: req.Tier}, nil
}

func (h Handler) TouchUserHandler(ctx context.Context, userID string, req httptransport.TouchUserRequest) error {
	return h.Permissions.Touch(ctx, userID, req.Username)
}
