package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	domainerrors "pollsbot/contexts/identity-access/rate-limit-service/domain/errors"
	"pollsbot/contexts/identity-access/rate-limit-service/ports"
)

const (
	defaultCap    = 10
	defaultWindow = time.Hour

	// Flood probes are stricter short windows checked without recording.
	floodMinuteWindow = time.Minute
	floodMinuteCap    = 10
	floodBurstWindow  = 10 * time.Second
	floodBurstCap     = 3
)

// Service evaluates the sliding-window policy over a per-(user, action)
// event log. The window storage guarantees per-key atomicity; this layer
// owns policy resolution and retry-after arithmetic.
type Service struct {
	Window   ports.WindowLog
	Observer ports.Observer
	Clock    ports.Clock

	// DefaultWindow applies to every action without a policy override.
	DefaultWindow time.Duration
	Policies      map[entities.Action]entities.Policy

	Logger *slog.Logger
}

// CheckAndRecord admits the attempt when fewer than cap events sit inside
// [now-window, now], recording it in the same atomic step. A denied attempt
// is not recorded and carries the duration until the oldest in-window event
// expires.
func (s Service) CheckAndRecord(ctx context.Context, userID string, action entities.Action) (entities.Decision, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(string(action)) == "" {
		return entities.Decision{}, domainerrors.ErrInvalidKey
	}

	now := s.now()
	policy := s.resolvePolicy(action)
	windowStart := now.Add(-policy.Window)
	key := windowKey(userID, action)

	reservation, err := s.Window.Reserve(ctx, key, windowStart, now, policy.Cap)
	if err != nil {
		ResolveLogger(s.Logger).Error("rate limit reservation failed",
			"event", "ratelimit_reserve_failed",
			"module", "identity-access/rate-limit-service",
			"layer", "application",
			"user_id", userID,
			"action", string(action),
			"error", err.Error(),
		)
		return entities.Decision{}, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}

	decision := entities.Decision{
		Allowed:   reservation.Allowed,
		CheckedAt: now,
	}
	if reservation.Allowed {
		decision.Remaining = policy.Cap - reservation.Count
		if decision.Remaining < 0 {
			decision.Remaining = 0
		}
		return decision, nil
	}

	retryAfter := policy.Window - now.Sub(reservation.OldestAt)
	if retryAfter < 0 {
		retryAfter = 0
	}
	decision.RetryAfter = retryAfter
	ResolveLogger(s.Logger).Warn("rate limit exceeded",
		"event", "ratelimit_denied",
		"module", "identity-access/rate-limit-service",
		"layer", "application",
		"user_id", userID,
		"action", string(action),
		"retry_after", retryAfter.String(),
	)
	return decision, nil
}

// IsFlooding reports whether the user's message log breaches either flood
// probe. It never records events; the message action log is fed by
// CheckAndRecord on the message action.
func (s Service) IsFlooding(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, domainerrors.ErrInvalidKey
	}
	now := s.now()
	key := windowKey(userID, entities.ActionMessage)

	recent, err := s.Observer.Count(ctx, key, now.Add(-floodMinuteWindow))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	if recent > floodMinuteCap {
		return true, nil
	}

	burst, err := s.Observer.Count(ctx, key, now.Add(-floodBurstWindow))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domainerrors.ErrStorage, err)
	}
	return burst > floodBurstCap, nil
}

func (s Service) resolvePolicy(action entities.Action) entities.Policy {
	policy, ok := s.Policies[action]
	if !ok {
		policy = entities.Policy{Cap: defaultCap}
	}
	if policy.Cap <= 0 {
		policy.Cap = defaultCap
	}
	if policy.Window <= 0 {
		policy.Window = s.DefaultWindow
	}
	if policy.Window <= 0 {
		policy.Window = defaultWindow
	}
	return policy
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func windowKey(userID string, action entities.Action) string {
	return fmt.Sprintf("ratelimit:%s:%s", strings.TrimSpace(userID), action)
}
