package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DealScanner/internal/config"
	"DealScanner/internal/infrastructure/llm"
	"DealScanner/internal/infrastructure/parser"
	schedinfra "DealScanner/internal/infrastructure/scheduler"
	"DealScanner/internal/infrastructure/storage"
	"DealScanner/internal/infrastructure/telegram"
	"DealScanner/internal/logging"
	"DealScanner/internal/ports"
	"DealScanner/internal/scanner"
	"DealScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	pipeline   *usecase.Pipeline
	scheduler  *usecase.Scheduler
	repository ports.PostRepository
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := parser.NewPageFetcher(nil, cfg.Crawler.UserAgent, cfg.Crawler.RequestsPerSecond)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewPpomppuScanner(fetcher, baseLogger.With("component", "scanner.ppomppu")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	repository, err := storage.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open post store: %w", err)
	}

	content := parser.NewContentFetcher(fetcher)
	summarizer := llm.NewService(
		llm.NewGeminiClient(cfg.Gemini),
		content,
		cfg.Gemini.PromptTemplate,
		baseLogger.With("component", "summarizer"),
	)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Summarizer: summarizer,
		Notifier:   notifier,
		Policy:     usecase.MarkSentAlways,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	driver := schedinfra.NewInterval(cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, pipeline, cfg.Search.Keyword, cfg.Scheduler.Location())

	return &Application{
		cfg:        cfg,
		pipeline:   pipeline,
		scheduler:  sched,
		repository: repository,
	}, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, a.cfg.Search.Keyword, now)
}

// Start runs the pipeline on the configured interval until the context is
// cancelled.
func (a *Application) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.scheduler.Stop(context.WithoutCancel(ctx))
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}
