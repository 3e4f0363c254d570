package pollengine

import (
	"log/slog"
	"time"

	httpadapter "pollsbot/contexts/polling/poll-engine/adapters/http"
	"pollsbot/contexts/polling/poll-engine/adapters/memory"
	"pollsbot/contexts/polling/poll-engine/application/commands"
	"pollsbot/contexts/polling/poll-engine/application/queries"
	"pollsbot/contexts/polling/poll-engine/application/workers"
	"pollsbot/contexts/polling/poll-engine/ports"
)

type Module struct {
	Polls   commands.PollUseCase
	Results queries.ResultsUseCase
	Status  queries.StatusUseCase
	Sweeper workers.ExpirySweeper
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls        ports.PollRepository
	Publisher    ports.EventPublisher
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	MaxQuestion  int
	MaxOption    int
	MaxOptions   int
	AutoCloseAge time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:       deps.Polls,
		Publisher:   deps.Publisher,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Locks:       commands.NewPollLocks(),
		MaxQuestion: deps.MaxQuestion,
		MaxOption:   deps.MaxOption,
		MaxOptions:  deps.MaxOptions,
		Logger:      deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{Polls: deps.Polls}
	statusUseCase := queries.StatusUseCase{Polls: deps.Polls}
	return Module{
		Polls:   pollUseCase,
		Results: resultsUseCase,
		Status:  statusUseCase,
		Sweeper: workers.ExpirySweeper{
			Polls:        pollUseCase,
			AutoCloseAge: deps.AutoCloseAge,
			Logger:       deps.Logger,
		},
		Handler: httpadapter.Handler{
			Polls:   pollUseCase,
			Results: resultsUseCase,
			Status:  statusUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Polls:        store,
		Clock:        store,
		IDGen:        store,
		AutoCloseAge: 24 * time.Hour,
		Logger:       logger,
	})
	module.Store = store
	return module
}
