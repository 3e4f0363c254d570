package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pollsbot/contexts/identity-access/permission-service/domain/entities"
	domainerrors "pollsbot/contexts/identity-access/permission-service/domain/errors"
	"pollsbot/contexts/identity-access/permission-service/ports"
)

// Service resolves and mutates permission tiers. Lookup failures degrade to
// the default tier rather than blocking read paths; writes surface storage
// errors to the caller.
type Service struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// Resolve returns the user's tier, registering unknown users with the
// default `use` tier.
func (s Service) Resolve(ctx context.Context, userID string) (entities.Tier, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domainerrors.ErrInvalidUserID
	}

	user, found, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if found {
		return user.Tier, nil
	}

	if err := s.register(ctx, userID, ""); err != nil {
		return "", err
	}
	return entities.TierUse, nil
}

// Require fails with ErrPermissionDenied when the user's tier sits strictly
// below min.
func (s Service) Require(ctx context.Context, userID string, min entities.Tier) error {
	if !min.Known() {
		return domainerrors.ErrUnknownTier
	}
	tier, err := s.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if !tier.AtLeast(min) {
		ResolveLogger(s.Logger).Warn("permission denied",
			"event", "permission_denied",
			"module", "identity-access/permission-service",
			"layer", "application",
			"user_id", userID,
			"tier", string(tier),
			"required", string(min),
		)
		return domainerrors.ErrPermissionDenied
	}
	return nil
}

// Grant sets the target user's tier. Only admins may grant.
func (s Service) Grant(ctx context.Context, actorID, userID string, tier entities.Tier) error {
	if !tier.Known() {
		return domainerrors.ErrUnknownTier
	}
	if err := s.Require(ctx, actorID, entities.TierAdmin); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidUserID
	}

	now := s.now()
	user, found, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if !found {
		user = entities.User{
			UserID:    userID,
			Username:  defaultUsername(userID),
			CreatedAt: now,
		}
	}
	user.Tier = tier
	user.LastActivity = now
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}

	ResolveLogger(s.Logger).Info("permission tier granted",
		"event", "permission_granted",
		"module", "identity-access/permission-service",
		"layer", "application",
		"actor_id", actorID,
		"user_id", userID,
		"tier", string(tier),
	)
	return nil
}

// Touch upserts the user record on any interaction, refreshing the display
// name and activity stamp without changing the tier.
func (s Service) Touch(ctx context.Context, userID, username string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidUserID
	}

	now := s.now()
	user, found, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if !found {
		user = entities.User{
			UserID:    userID,
			Tier:      entities.TierUse,
			CreatedAt: now,
		}
	}
	if strings.TrimSpace(username) != "" {
		user.Username = strings.TrimSpace(username)
	} else if user.Username == "" {
		user.Username = defaultUsername(userID)
	}
	user.LastActivity = now
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	return nil
}

func (s Service) register(ctx context.Context, userID, username string) error {
	now := s.now()
	if username == "" {
		username = defaultUsername(userID)
	}
	user := entities.User{
		UserID:       userID,
		Username:     username,
		Tier:         entities.TierUse,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	ResolveLogger(s.Logger).Info("user registered with default tier",
		"event", "permission_user_registered",
		"module", "identity-access/permission-service",
		"layer", "application",
		"user_id", userID,
	)
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func defaultUsername(userID string) string {
	return "user_" + userID
}
