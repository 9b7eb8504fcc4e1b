// Package app wires the document store, content store, event bus, and the
// three application modules into one HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/wingshot-club/wingshot-bot/app/eventbus"
	contestservice "github.com/wingshot-club/wingshot-bot/app/modules/contest/application"
	contesthandlers "github.com/wingshot-club/wingshot-bot/app/modules/contest/infrastructure/handlers"
	judgingservice "github.com/wingshot-club/wingshot-bot/app/modules/judging/application"
	judginghandlers "github.com/wingshot-club/wingshot-bot/app/modules/judging/infrastructure/handlers"
	submissionservice "github.com/wingshot-club/wingshot-bot/app/modules/submission/application"
	submissionhandlers "github.com/wingshot-club/wingshot-bot/app/modules/submission/infrastructure/handlers"
	"github.com/wingshot-club/wingshot-bot/config"
	"github.com/wingshot-club/wingshot-bot/internal/media"
	"github.com/wingshot-club/wingshot-bot/internal/observability"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

// App holds the assembled application.
type App struct {
	Cfg      *config.Config
	Store    *store.Store
	Media    *media.ContentStore
	Bus      eventbus.EventBus
	Registry *prometheus.Registry

	logger *slog.Logger
	server *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)
	tracer := otel.Tracer("wingshot-bot")

	documentStore := store.New(store.Config{
		Path:       cfg.Store.Path,
		BackupDir:  cfg.Store.BackupDir,
		MaxBackups: cfg.Store.MaxBackups,
	}, logger, metrics)

	contentStore := media.NewContentStore(cfg.Content.Dir, logger)

	bus := eventbus.New(logger, metrics)
	if err := eventbus.StartAudit(ctx, bus, logger); err != nil {
		return nil, fmt.Errorf("failed to start audit subscriber: %w", err)
	}

	submissionSvc := submissionservice.NewSubmissionService(documentStore, contentStore, bus, logger, metrics, tracer)
	judgingSvc := judgingservice.NewJudgingService(documentStore, bus, logger, tracer)
	contestSvc := contestservice.NewContestService(documentStore, bus, logger, tracer)

	router := newRouter(cfg,
		submissionhandlers.NewSubmissionHandlers(submissionSvc, logger, metrics, cfg.HTTP.MaxUploadBytes),
		judginghandlers.NewJudgingHandlers(judgingSvc, logger),
		contesthandlers.NewContestHandlers(contestSvc, logger),
		contentStore,
		registry,
	)

	return &App{
		Cfg:      cfg,
		Store:    documentStore,
		Media:    contentStore,
		Bus:      bus,
		Registry: registry,
		logger:   logger,
		server: &http.Server{
			Addr:    cfg.HTTP.Address,
			Handler: router,
		},
	}, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", slog.String("address", a.Cfg.HTTP.Address))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

// Close releases the event bus.
func (a *App) Close() error {
	return a.Bus.Close()
}
