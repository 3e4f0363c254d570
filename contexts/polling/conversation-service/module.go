package conversation

import (
	"log/slog"
	"time"

	httpadapter "pollsbot/contexts/polling/conversation-service/adapters/http"
	"pollsbot/contexts/polling/conversation-service/adapters/memory"
	"pollsbot/contexts/polling/conversation-service/application"
	"pollsbot/contexts/polling/conversation-service/application/workers"
	"pollsbot/contexts/polling/conversation-service/ports"
)

type Module struct {
	Service application.Service
	Sweeper workers.ExpirySweeper
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Dialogues        ports.DialogueRepository
	Clock            ports.Clock
	Timeout          time.Duration
	MaxQuestion      int
	MaxOption        int
	MaxOptions       int
	DefaultThreshold int
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Dialogues:   deps.Dialogues,
		Clock:       deps.Clock,
		Locks:       application.NewUserLocks(),
		Timeout:     deps.Timeout,
		MaxQuestion: deps.MaxQuestion,
		MaxOption:   deps.MaxOption,
		MaxOptions:  deps.MaxOptions,
		Logger:      deps.Logger,
	}
	return Module{
		Service: service,
		Sweeper: workers.ExpirySweeper{Dialogues: service, Logger: deps.Logger},
		Handler: httpadapter.Handler{Dialogues: service, DefaultThreshold: deps.DefaultThreshold, Logger: deps.Logger},
	}
}

func NewInMemoryModule(timeout time.Duration, clock ports.Clock, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Dialogues: store,
		Clock:     clock,
		Timeout:   timeout,
		Logger:    logger,
	})
	module.Store = store
	return module
}
