package ratelimit

import (
	"log/slog"
	"time"

	httpadapter "pollsbot/contexts/identity-access/rate-limit-service/adapters/http"
	"pollsbot/contexts/identity-access/rate-limit-service/adapters/memory"
	"pollsbot/contexts/identity-access/rate-limit-service/application"
	"pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	"pollsbot/contexts/identity-access/rate-limit-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Window        ports.WindowLog
	Observer      ports.Observer
	Clock         ports.Clock
	DefaultWindow time.Duration
	Policies      map[entities.Action]entities.Policy
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Window:        deps.Window,
		Observer:      deps.Observer,
		Clock:         deps.Clock,
		DefaultWindow: deps.DefaultWindow,
		Policies:      deps.Policies,
		Logger:        deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Limiter: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(defaultWindow time.Duration, policies map[entities.Action]entities.Policy, clock ports.Clock, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Window:        store,
		Observer:      store,
		Clock:         clock,
		DefaultWindow: defaultWindow,
		Policies:      policies,
		Logger:        logger,
	})
	module.Store = store
	return module
}
