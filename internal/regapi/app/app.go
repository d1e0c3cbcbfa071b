package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/devotp"
	httpapi "github.com/aussiebroadwan/hireflow/internal/regapi/http"
	"github.com/aussiebroadwan/hireflow/internal/regapi/metrics"
	"github.com/aussiebroadwan/hireflow/internal/regapi/service"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store/drivers/sqlite"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/cryptox"
	"github.com/aussiebroadwan/hireflow/pkg/jwtx"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the registration backend with all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clock.Clock

	db      store.Store
	gate    cooldown.Gate
	mailbox *devotp.Mailbox
	signer  jwtx.Signer

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	registrationService *service.RegistrationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds the application. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "regapi",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		clock: clock.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initGate(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeDeps()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the configured router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts serving and blocks until a signal arrives or the server fails.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("regapi starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"dev_otp", app.cfg.DevOTP,
		"skip_otp", app.cfg.SkipOTP,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeDeps()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the
// database and cooldown backend.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down regapi...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeDeps(); err != nil {
		return err
	}

	app.logger.Info("regapi stopped")
	return nil
}

func (app *Application) closeDeps() error {
	if c, ok := app.gate.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing cooldown backend", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initGate(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		app.gate = cooldown.NewMemoryGate(app.clock)
		app.logger.Info("resend cooldown kept in memory")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	gate, err := cooldown.NewRedisGate(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect cooldown backend: %w", err)
	}
	app.gate = gate
	app.logger.Info("resend cooldown kept in redis")
	return nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	pemKey, ephemeral, err := cryptox.LoadOrGenerateEd25519Key(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	if ephemeral {
		app.logger.Warn("using an ephemeral signing key; issued tokens will not survive a restart")
	}
	app.signer, err = jwtx.NewEd25519Signer(app.cfg.KeyID, pemKey)
	if err != nil {
		return fmt.Errorf("failed to build signer: %w", err)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	senders := service.FanOut{
		service.LogSender{Logger: app.logger, Reveal: app.cfg.DevOTP},
	}
	if app.cfg.DevOTP {
		app.mailbox = devotp.NewMailbox(app.clock)
		senders = append(senders, app.mailbox)
	}

	app.registrationService = &service.RegistrationService{
		Store:       app.db,
		Gate:        app.gate,
		Sender:      senders,
		Signer:      app.signer,
		Hasher:      cryptox.PasswordHasher{Pepper: pepper},
		Codes:       service.Codes{Issuer: app.cfg.Issuer},
		Clock:       app.clock,
		Metrics:     app.metrics,
		Issuer:      app.cfg.Issuer,
		Audience:    app.cfg.Audience,
		AccessTTL:   app.cfg.AccessTTL,
		CodeTTL:     app.cfg.CodeTTL,
		Cooldown:    app.cfg.Cooldown,
		MaxAttempts: app.cfg.MaxAttempts,
		SkipOTP:     app.cfg.SkipOTP,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.gate,
		app.logger,
		app.clock,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.gate, app.logger)
	router.RegistrationService = app.registrationService
	router.Mailbox = app.mailbox // nil unless dev OTP mode
	router.Metrics = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
