package ports

import (
	"context"
	"time"

	"pollsbot/contexts/polling/template-service/domain/entities"
)

// TemplateRepository persists templates keyed by name.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, name string) (entities.Template, bool, error)
	SaveTemplate(ctx context.Context, template entities.Template) error
	DeleteTemplate(ctx context.Context, name string) error
	// ListTemplates returns all templates ordered by usage count descending.
	ListTemplates(ctx context.Context) ([]entities.Template, error)
	// IncrementUsage bumps the usage counter atomically and returns the new
	// count.
	IncrementUsage(ctx context.Context, name string) (int, error)
}

type Clock interface {
	Now() time.Time
}
