package permission

import (
	"log/slog"

	httpadapter "pollsbot/contexts/identity-access/permission-service/adapters/http"
	"pollsbot/contexts/identity-access/permission-service/adapters/memory"
	"pollsbot/contexts/identity-access/permission-service/application"
	"pollsbot/contexts/identity-access/permission-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users:  deps.Users,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Permissions: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(clock ports.Clock, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:  store,
		Clock:  clock,
		Logger: logger,
	})
	module.Store = store
	return module
}
