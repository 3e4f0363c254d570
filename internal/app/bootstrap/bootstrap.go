package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	permission "pollsbot/contexts/identity-access/permission-service"
	permissionpostgres "pollsbot/contexts/identity-access/permission-service/adapters/postgres"
	ratelimit "pollsbot/contexts/identity-access/rate-limit-service"
	ratelimitredis "pollsbot/contexts/identity-access/rate-limit-service/adapters/redis"
	ratelimitentities "pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
	conversation "pollsbot/contexts/polling/conversation-service"
	conversationpostgres "pollsbot/contexts/polling/conversation-service/adapters/postgres"
	conversationworkers "pollsbot/contexts/polling/conversation-service/application/workers"
	pollengine "pollsbot/contexts/polling/poll-engine"
	pollpostgres "pollsbot/contexts/polling/poll-engine/adapters/postgres"
	pollworkers "pollsbot/contexts/polling/poll-engine/application/workers"
	pollports "pollsbot/contexts/polling/poll-engine/ports"
	template "pollsbot/contexts/polling/template-service"
	templatepostgres "pollsbot/contexts/polling/template-service/adapters/postgres"
	"pollsbot/internal/platform/cache"
	"pollsbot/internal/platform/config"
	"pollsbot/internal/platform/db"
	"pollsbot/internal/platform/httpserver"
	"pollsbot/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	pollSweeper   pollworkers.ExpirySweeper
	dialogueSweep conversationworkers.ExpirySweeper
	sweepInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	publisher := buildPublisher(cfg, logger)
	pollModule := buildPollModule(cfg, pg, publisher, logger)
	conversationModule := buildConversationModule(cfg, pg, logger)

	templateModule := template.NewModule(template.Dependencies{
		Templates:   templatepostgres.NewRepository(pg.DB, logger),
		Clock:       templatepostgres.SystemClock{},
		MaxQuestion: cfg.MaxPollQuestion,
		MaxOption:   cfg.MaxPollOption,
		Logger:      logger,
	})
	if err := templateModule.Service.SeedDefaults(context.Background()); err != nil {
		return nil, err
	}

	permissionModule := permission.NewModule(permission.Dependencies{
		Users:  permissionpostgres.NewRepository(pg.DB, logger),
		Clock:  permissionpostgres.SystemClock{},
		Logger: logger,
	})

	ratelimitModule, err := buildRateLimitModule(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		pollModule,
		conversationModule,
		templateModule,
		permissionModule,
		ratelimitModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	publisher := buildPublisher(cfg, logger)
	pollModule := buildPollModule(cfg, pg, publisher, logger)
	conversationModule := buildConversationModule(cfg, pg, logger)

	return &WorkerApp{
		postgres:      pg,
		pollSweeper:   pollModule.Sweeper,
		dialogueSweep: conversationModule.Sweeper,
		sweepInterval: cfg.SweepInterval,
		logger:        logger,
	}, nil
}

func buildPollModule(cfg config.Config, pg *db.Postgres, publisher pollports.EventPublisher, logger *slog.Logger) pollengine.Module {
	return pollengine.NewModule(pollengine.Dependencies{
		Polls:        pollpostgres.NewRepository(pg.DB, logger),
		Publisher:    publisher,
		Clock:        pollpostgres.SystemClock{},
		IDGen:        pollpostgres.UUIDGenerator{},
		MaxQuestion:  cfg.MaxPollQuestion,
		MaxOption:    cfg.MaxPollOption,
		MaxOptions:   cfg.MaxPollOptions,
		AutoCloseAge: time.Duration(cfg.AutoCloseHours) * time.Hour,
		Logger:       logger,
	})
}

func buildConversationModule(cfg config.Config, pg *db.Postgres, logger *slog.Logger) conversation.Module {
	return conversation.NewModule(conversation.Dependencies{
		Dialogues:        conversationpostgres.NewRepository(pg.DB, logger),
		Clock:            conversationpostgres.SystemClock{},
		Timeout:          cfg.SessionTimeout,
		MaxQuestion:      cfg.MaxPollQuestion,
		MaxOption:        cfg.MaxPollOption,
		MaxOptions:       cfg.MaxPollOptions,
		DefaultThreshold: cfg.DefaultThreshold,
		Logger:           logger,
	})
}

// buildRateLimitModule prefers the Redis window log; without a Redis address
// it degrades to the in-process store, which is fine for a single replica.
func buildRateLimitModule(cfg config.Config, logger *slog.Logger) (ratelimit.Module, error) {
	policies := make(map[ratelimitentities.Action]ratelimitentities.Policy, len(cfg.RateLimitCaps))
	for action, limit := range cfg.RateLimitCaps {
		policies[ratelimitentities.Action(action)] = ratelimitentities.Policy{
			Cap:    limit,
			Window: cfg.RateLimitWindow,
		}
	}

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return ratelimit.NewInMemoryModule(cfg.RateLimitWindow, policies, nil, logger), nil
	}

	client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return ratelimit.Module{}, err
	}
	store := ratelimitredis.NewStore(client)
	return ratelimit.NewModule(ratelimit.Dependencies{
		Window:        store,
		Observer:      store,
		Clock:         ratelimitredis.SystemClock{},
		DefaultWindow: cfg.RateLimitWindow,
		Policies:      policies,
		Logger:        logger,
	}), nil
}

func buildPublisher(cfg config.Config, logger *slog.Logger) pollports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return messaging.NewMemoryPublisher()
	}
	return messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopic, logger)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
	)

	for {
		if err := w.pollSweeper.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.dialogueSweep.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
