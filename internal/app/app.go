package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/common"
	"github.com/ternarybob/suadeo/internal/handlers"
	"github.com/ternarybob/suadeo/internal/interfaces"
	"github.com/ternarybob/suadeo/internal/services/auth"
	"github.com/ternarybob/suadeo/internal/services/insights"
	"github.com/ternarybob/suadeo/internal/services/llm"
	"github.com/ternarybob/suadeo/internal/services/mailer"
	"github.com/ternarybob/suadeo/internal/services/ratelimit"
	"github.com/ternarybob/suadeo/internal/services/scheduler"
	"github.com/ternarybob/suadeo/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// AI provider and the insight pipeline built on it
	Completion     interfaces.CompletionService
	InsightService interfaces.InsightService

	// Request gating
	Auth    *auth.Service
	Limiter interfaces.RateLimiter

	// Background services
	Mailer    *mailer.Service
	Scheduler *scheduler.Service

	// HTTP handlers
	AccountHandler     *handlers.AccountHandler
	CallHandler        *handlers.CallHandler
	StakeholderHandler *handlers.StakeholderHandler
	EmailHandler       *handlers.EmailHandler
	InsightHandler     *handlers.InsightHandler
	ResearchHandler    *handlers.ResearchHandler
	StatusHandler      *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	completion, err := llm.NewCompletionService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	app.Completion = completion

	app.InsightService = insights.NewService(storageManager, completion, &cfg.Insights, logger)

	app.Auth = auth.NewService(&cfg.Auth, logger)
	app.Limiter = ratelimit.NewSlidingWindowLimiter(
		cfg.RateLimit.Requests,
		common.ParseDurationOr(cfg.RateLimit.Window, 60*time.Second),
		ratelimit.SystemClock(),
		logger,
	)

	app.Mailer = mailer.NewService(&cfg.Imap, storageManager, logger)
	app.Scheduler = scheduler.NewService(cfg, storageManager, app.InsightService, app.Limiter, app.Mailer, logger)

	app.AccountHandler = handlers.NewAccountHandler(storageManager, logger)
	app.CallHandler = handlers.NewCallHandler(storageManager, logger)
	app.StakeholderHandler = handlers.NewStakeholderHandler(storageManager, logger)
	app.EmailHandler = handlers.NewEmailHandler(storageManager, logger)
	app.InsightHandler = handlers.NewInsightHandler(app.InsightService, storageManager, app.Limiter, logger)
	app.ResearchHandler = handlers.NewResearchHandler(storageManager, completion, logger)
	app.StatusHandler = handlers.NewStatusHandler(storageManager, completion, logger)

	if err := app.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Str("provider", completion.Provider()).
		Str("storage", cfg.Storage.Type).
		Msg("Application initialized")

	return app, nil
}

// Close shuts down background services and releases resources
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Completion != nil {
		if err := a.Completion.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close AI provider client")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
