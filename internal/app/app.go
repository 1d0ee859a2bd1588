// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opswatch/opswatch/internal/alerts"
	alertskafka "github.com/opswatch/opswatch/internal/alerts/kafka"
	alertspostgres "github.com/opswatch/opswatch/internal/alerts/postgres"
	"github.com/opswatch/opswatch/internal/audit"
	auditpostgres "github.com/opswatch/opswatch/internal/audit/postgres"
	"github.com/opswatch/opswatch/internal/config"
	"github.com/opswatch/opswatch/internal/dashboard"
	dashboardpostgres "github.com/opswatch/opswatch/internal/dashboard/postgres"
	"github.com/opswatch/opswatch/internal/identity"
	"github.com/opswatch/opswatch/internal/identity/jwt"
	identitypostgres "github.com/opswatch/opswatch/internal/identity/postgres"
	"github.com/opswatch/opswatch/internal/incidents"
	incidentspostgres "github.com/opswatch/opswatch/internal/incidents/postgres"
	"github.com/opswatch/opswatch/internal/notify"
	"github.com/opswatch/opswatch/internal/notify/email"
	"github.com/opswatch/opswatch/internal/pkg/ctxlog"
	"github.com/opswatch/opswatch/internal/pkg/httputil"
	"github.com/opswatch/opswatch/internal/pkg/metrics"
	"github.com/opswatch/opswatch/internal/pkg/postgres"
	"github.com/opswatch/opswatch/internal/realtime"
	"github.com/opswatch/opswatch/internal/simulation"
	"github.com/opswatch/opswatch/internal/version"
	"github.com/opswatch/opswatch/migrations"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	scheduler     *simulation.Scheduler
	consumer      *alertskafka.Consumer
	consumerStop  context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.URL, migrations.FS, "."); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, err := app.setupRouter()
	if err != nil {
		db.Close()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers and background consumers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	if a.consumer != nil {
		consumerCtx, consumerCancel := context.WithCancel(context.Background())
		a.consumerStop = consumerCancel
		go func() {
			if err := a.consumer.Run(consumerCtx); err != nil {
				a.logger.Error("kafka consumer error", "error", err)
			}
		}()
	}

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop background producers before cutting off the servers
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.consumerStop != nil {
		a.consumerStop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka consumer: %w", err))
		}
	}

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Scheduler returns the demo-mode scheduler instance.
// Used in tests to inspect scheduler state.
func (a *App) Scheduler() *simulation.Scheduler {
	return a.scheduler
}

func (a *App) setupRouter() (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if a.config.RateLimit.Enabled {
		r.Use(httputil.RateLimitMiddleware(httputil.RateLimitConfig{
			RequestsPerSecond: a.config.RateLimit.RequestsPerSecond,
			Burst:             a.config.RateLimit.Burst,
		}))
	}

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>OpsWatch API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	hub := realtime.NewHub()
	r.Get("/ws", hub.ServeWS)

	emailSender, err := email.NewSender(email.Config{
		Enabled:      a.config.Email.Enabled,
		SMTPHost:     a.config.Email.SMTPHost,
		SMTPPort:     a.config.Email.SMTPPort,
		SMTPUser:     a.config.Email.SMTPUser,
		SMTPPassword: a.config.Email.SMTPPassword,
		FromAddress:  a.config.Email.FromAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("create email sender: %w", err)
	}

	if !a.config.Email.Enabled {
		slog.Warn("email sender is disabled: assignment emails will be logged instead of sent")
	}

	jwtAuth, err := jwt.NewAuthenticator(jwt.Config{
		SecretKey:     a.config.JWT.SecretKey,
		TokenDuration: a.config.JWT.AccessTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("create jwt authenticator: %w", err)
	}

	identityRepo := identitypostgres.NewRepository(a.db)
	identityService := identity.NewService(identityRepo, jwtAuth)
	identityHandler := identity.NewHandler(identityService)

	notifier := notify.NewNotifier(emailSender, hub, identityService)

	auditRepo := auditpostgres.NewRepository(a.db)
	auditor := audit.NewRecorder(auditRepo)

	incidentsRepo := incidentspostgres.NewRepository(a.db)
	incidentsService := incidents.NewService(incidentsRepo, auditor, notifier)
	incidentsHandler := incidents.NewHandler(incidentsService)

	alertsRepo := alertspostgres.NewRepository(a.db)
	alertsService := alerts.NewService(alertsRepo, notifier)
	alertsHandler := alerts.NewHandler(alertsService)

	if a.config.Kafka.Enabled {
		a.consumer = alertskafka.NewConsumer(alertskafka.Config{
			Brokers: a.config.Kafka.Brokers,
			Topic:   a.config.Kafka.Topic,
			GroupID: a.config.Kafka.GroupID,
		}, alertsService)
	} else {
		slog.Warn("kafka consumer is disabled: alerts are accepted over HTTP only")
	}

	simulationService := simulation.NewService(incidentsService, a.config.Simulation.OrganizationID)
	a.scheduler = simulation.NewScheduler(simulationService, a.config.Simulation.TickInterval)
	simulationHandler := simulation.NewHandler(simulationService, a.scheduler)

	dashboardRepo := dashboardpostgres.NewRepository(a.db)
	dashboardHandler := dashboard.NewHandler(dashboardRepo)

	r.Route("/api/v1", func(r chi.Router) {
		identityHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(jwtAuth))

			identityHandler.RegisterProtectedRoutes(r)

			r.Route("/incidents", incidentsHandler.RegisterRoutes)
			r.Route("/alerts", alertsHandler.RegisterRoutes)
			r.Route("/simulate", simulationHandler.RegisterRoutes)
			r.Route("/dashboard", dashboardHandler.RegisterRoutes)
		})
	})

	return r, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
