package ports

import (
	"context"
	"time"

	"pollsbot/contexts/identity-access/permission-service/domain/entities"
)

// UserRepository persists user identities and their tiers.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (entities.User, bool, error)
	SaveUser(ctx context.Context, user entities.User) error
}

type Clock interface {
	Now() time.Time
}
