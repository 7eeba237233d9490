package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"ContentCurator/internal/aigen"
	"ContentCurator/internal/config"
	"ContentCurator/internal/curation"
	"ContentCurator/internal/infrastructure/adapter"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/storage"
	"ContentCurator/internal/infrastructure/telegram"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/pipeline"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/ratelimit"
	"ContentCurator/internal/resolver"
	"ContentCurator/internal/schedule"
	"ContentCurator/internal/scrape"
)

// Application wires configuration to services and owns their lifecycle.
type Application struct {
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	schedule *schedule.Service
	curation *curation.Service
	aigen    *aigen.Service
}

// New builds a fully wired application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sources := storage.NewSourceStore(db)
	topics := storage.NewTopicStore(db)
	contents := storage.NewAIContentStore(db)
	reports := storage.NewReportStore(db)

	httpClient := &http.Client{Timeout: 20 * time.Second}

	registry := scrape.NewRegistry()
	registry.Register(adapter.NewRSS(httpClient))
	registry.Register(adapter.NewYouTube(httpClient))
	registry.Register(adapter.NewWebsite(httpClient))
	registry.Register(adapter.NewInstagram(httpClient))
	registry.Register(adapter.NewTwitter(httpClient))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	runner := pipeline.NewRunner(
		sources,
		topics,
		reports,
		notifier,
		resolver.New(httpClient),
		ratelimit.New(cfg.RateLimits),
		registry,
		pipeline.NewNormalizer(cfg.Quality),
		cfg.Workers,
		baseLogger.With("component", "pipeline"),
	)

	trigger := scheduler.NewCronTrigger(cfg.Scheduler.Hour, cfg.Scheduler.Minute, cfg.Scheduler.Location())
	scheduleSvc := schedule.NewService(runner, trigger, baseLogger.With("component", "schedule"))

	curationSvc := curation.NewService(topics, nil)
	aigenSvc := aigen.NewService(
		topics,
		contents,
		llm.NewGeminiClient(cfg.AI),
		curationSvc,
		cfg.AI,
		nil,
		baseLogger.With("component", "aigen"),
	)

	return &Application{
		cfg:      cfg,
		log:      baseLogger,
		db:       db,
		schedule: scheduleSvc,
		curation: curationSvc,
		aigen:    aigenSvc,
	}, nil
}

// Schedule exposes the run scheduler for callers driving manual runs.
func (a *Application) Schedule() *schedule.Service { return a.schedule }

// Curation exposes the curation service.
func (a *Application) Curation() *curation.Service { return a.curation }

// Generation exposes the AI generation service.
func (a *Application) Generation() *aigen.Service { return a.aigen }

// Run starts the daily schedule and blocks until the context ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := a.schedule.Start(ctx); err != nil {
		return fmt.Errorf("start schedule: %w", err)
	}
	a.log.Info("scheduler started",
		"hour", a.cfg.Scheduler.Hour,
		"minute", a.cfg.Scheduler.Minute,
		"timezone", a.cfg.Scheduler.Timezone,
	)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.schedule.Stop(stopCtx); err != nil {
		a.log.Warn("stop schedule", "error", err)
	}
	return a.db.Close()
}
