package template

import (
	"log/slog"

	httpadapter "pollsbot/contexts/polling/template-service/adapters/http"
	"pollsbot/contexts/polling/template-service/adapters/memory"
	"pollsbot/contexts/polling/template-service/application"
	"pollsbot/contexts/polling/template-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Templates   ports.TemplateRepository
	Clock       ports.Clock
	MaxQuestion int
	MaxOption   int
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Templates:   deps.Templates,
		Clock:       deps.Clock,
		MaxQuestion: deps.MaxQuestion,
		MaxOption:   deps.MaxOption,
		Logger:      deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Templates: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(clock ports.Clock, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Templates: store,
		Clock:     clock,
		Logger:    logger,
	})
	module.Store = store
	return module
}
