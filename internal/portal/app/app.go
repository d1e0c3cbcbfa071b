package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application is the terminal portal: an SDK client against the
// registration API and the UI that drives it.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	logFile *os.File

	client *regsdk.SDKClient
	ui     *Terminal
}

// New wires the portal. Logs go to cfg.LogFile or stderr, never to out.
func New(cfg Config, in io.Reader, out io.Writer) (*Application, error) {
	app := &Application{cfg: cfg}

	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		app.logFile = f
		logOut = f
	}

	app.logger = slogx.New(slogx.Config{
		Service: "portal",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  logOut,
	})

	app.client = regsdk.NewSDKClient(cfg.APIBaseURL)
	app.client.HTTPClient.Timeout = cfg.RequestTimeout
	app.client.HTTPClient.Transport = slogx.NewTransport(nil, app.logger)

	app.ui = &Terminal{
		In:       in,
		Out:      out,
		Client:   app.client,
		Clock:    clock.New(),
		Logger:   app.logger,
		Cooldown: int(cfg.ResendCooldown.Seconds()),
	}

	return app, nil
}

// Run waits for the API to come up and then hands the terminal to the UI.
func (app *Application) Run(ctx context.Context) error {
	defer app.Close()

	app.logger.Info("portal starting", "api", app.cfg.APIBaseURL)

	if err := WaitForBackend(ctx, app.client, app.cfg.StartupWait, app.logger); err != nil {
		return err
	}
	return app.ui.Run(ctx)
}

// Close releases the log file, if any.
func (app *Application) Close() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}
