package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"klvcli/internal/config"
	apierrors "klvcli/internal/errors"
	"klvcli/internal/exporter"
	"klvcli/internal/files"
	"klvcli/internal/infrastructure"
	custommw "klvcli/internal/middleware"
	"klvcli/internal/services"
	handlers "klvcli/internal/transport/http"
	"klvcli/internal/trial"
	"klvcli/internal/validation"
)

const AppName = "KLV Campaign Analytics"

// Application is the composition root of the analytics server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Metrics       *infrastructure.Metrics
	TrialManager  *trial.Manager
	ReportService *services.ReportService
}

// NewApplication wires the full dependency graph from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", handlers.Version))

	paths := cfg.NewPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	metrics, err := infrastructure.InitializeMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	trialManager, err := trial.NewManager(cfg.Trial, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trial manager: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		TrialManager:  trialManager,
		ReportService: services.NewReportService(logger, metrics),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(custommw.TraceID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(a.Config.Server.ReadTimeout))

	if a.Config.Server.RateLimitRPS > 0 {
		r.Use(custommw.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger,
		).Handler)
	}

	r.Use(custommw.NewTrialGate(a.TrialManager, a.Logger).Handler)

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errorHandler.HandleError(w, req, apierrors.ErrNotFound)
	})

	fileValidator := validation.NewFileValidator(a.Logger)
	fileManager := files.NewManager(a.Config.NewPaths(), a.Logger)
	csvWriter := exporter.NewCSVWriter(a.Config.NewPaths(), a.Logger)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/healthz", healthHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)

		reportHandler := handlers.NewReportHandler(
			a.ReportService, fileValidator, fileManager, csvWriter,
			a.Config.Upload.MaxSizeBytes, a.Logger, errorHandler)
		r.Mount("/reports", reportHandler.Routes())

		trialHandler := handlers.NewTrialHandler(a.TrialManager, a.Logger, errorHandler)
		r.Mount("/trial", trialHandler.Routes())
	})

	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving. A listener failure cancels the run context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "server listening",
		slog.Int("port", a.Config.Server.Port),
		slog.String("trial_countdown", a.TrialManager.Status().Countdown))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully drains the server and flushes metrics.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.Metrics.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "metrics shutdown error", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run serves until an interrupt arrives, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
		// Listener failed; give in-flight work a moment before draining.
		time.Sleep(100 * time.Millisecond)
	}

	return a.Stop(context.Background())
}
