package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salestracker/internal/config"
	"salestracker/internal/dataprocessing"
	apierrors "salestracker/internal/errors"
	"salestracker/internal/exporter"
	"salestracker/internal/infrastructure"
	customMiddleware "salestracker/internal/middleware"
	"salestracker/internal/services"
	handlers "salestracker/internal/transport/http"
	"salestracker/internal/validation"
	"salestracker/pkg/contracts"
	"salestracker/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Sources       *dataprocessing.Sources
	Services      *ServiceContainer

	errorHandler  *apierrors.ErrorHandler
	fileValidator *validation.FileValidator
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads configuration from the environment and builds the
// application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(context.Background(), cfg, logger)
}

// New builds the application from cfg: telemetry, the two source tables,
// services, router and server. A source file that cannot be opened or read
// is fatal; unparseable cells only fail the views that use their column.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", handlers.AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateSources(cfg.Data); err != nil {
		return nil, fmt.Errorf("invalid data sources: %w", err)
	}

	sources, err := dataprocessing.LoadSources(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	metrics.RecordSourceRows(ctx, string(domain.SourceSales), sources.Sales.Len())
	metrics.RecordSourceRows(ctx, string(domain.SourceEnriched), sources.Enriched.Len())

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Sources:       sources,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
		fileValidator: fileValidator,
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() {
	a.Services = &ServiceContainer{
		Dashboard: services.NewDashboardService(
			a.Sources,
			a.Config.Analysis.Params(),
			a.OTelProviders.Tracer,
			a.Metrics,
			a.Logger.With(slog.String("service", "dashboard")),
		),
		Health: services.NewHealthService(contracts.Version, a.Sources, a.Logger.With(slog.String("service", "health"))),
	}
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID first: every later log line and problem body carries its id.
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	// Set last so mounted sub-routers inherit the handlers.
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator()

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(
		a.Services.Dashboard,
		validator,
		exporter.NewCSVWriter(false),
		a.Logger,
		a.errorHandler,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler.Routes(r)
		r.Mount("/", dashboardHandler.Routes())
	})
}

func (a *Application) setupHTMLRoutes(r chi.Router) {
	htmlHandler := handlers.NewHTMLHandler(
		a.Services.Dashboard,
		customMiddleware.NewValidator(),
		a.Logger,
		a.errorHandler,
	)
	htmlHandler.Routes(r)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels
// ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level),
		slog.Int("sales_rows", a.Sources.Sales.Len()),
		slog.Int("enriched_rows", a.Sources.Enriched.Len()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the server fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-sigCtx.Done()
	a.Logger.Info("Received shutdown signal")

	// ctx may already be cancelled by a server failure; shut down on a fresh one.
	return a.Stop(context.Background())
}

// Export writes the summary table of every view to dir as one CSV file per
// view, using the configured analysis defaults. Failed views are logged and
// skipped. It returns the number of files written.
func (a *Application) Export(ctx context.Context, dir string, bom bool) (int, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	if err := a.fileValidator.ValidateOutputDirectory(dir); err != nil {
		return 0, err
	}

	start := time.Now()
	writer := exporter.NewCSVWriter(bom)
	p := a.Services.Dashboard.DefaultParams()

	written := 0
	for _, v := range a.Services.Dashboard.Views(p) {
		res, err := a.Services.Dashboard.RunView(ctx, v.ID, p)
		if err != nil {
			return written, err
		}
		if res.Failed() {
			a.Logger.WarnContext(ctx, "Skipping failed view",
				slog.String("view", v.ID),
				slog.String("error_kind", res.Error.Kind),
				slog.String("error", res.Error.Message))
			continue
		}

		path := filepath.Join(dir, exporter.FileName(v.ID))
		if err := writer.WriteFile(path, res.Table); err != nil {
			return written, fmt.Errorf("export %s: %w", v.ID, err)
		}
		written++
	}

	a.Logger.InfoContext(ctx, "Export complete",
		slog.String("dir", dir),
		slog.Int("files", written),
		slog.Duration("duration", time.Since(start)))
	return written, nil
}
