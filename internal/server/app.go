// Package server wires configuration, storage, services and the HTTP
// API into the runnable BaseKit server process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basekit-io/basekit/internal/logging"
	"github.com/basekit-io/basekit/internal/server/config"
	"github.com/basekit-io/basekit/internal/server/httpapi"
	"github.com/basekit-io/basekit/internal/server/mail"
	"github.com/basekit-io/basekit/internal/server/obs"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
	"github.com/basekit-io/basekit/internal/server/services"
	"github.com/basekit-io/basekit/internal/server/shared/db"
	"github.com/basekit-io/basekit/internal/server/stream"
	"github.com/basekit-io/basekit/internal/server/telemetry"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	version string
	commit  string
}

func NewApp(cfg *config.Config, version, commit string) *App {
	return &App{
		config:  cfg,
		logger:  logging.NewJSON(os.Stdout, logging.ParseLevel(cfg.LogLevel)),
		version: version,
		commit:  commit,
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// buildMailer selects the outgoing-mail transport. The returned close
// func is non-nil only for transports holding connections.
func (app *App) buildMailer() (mail.Mailer, func() error) {
	switch app.config.MailTransport {
	case "smtp":
		return mail.NewSMTPMailer(
			app.config.SMTPAddr,
			app.config.SMTPUsername,
			app.config.SMTPPassword,
			app.config.MailFrom,
			app.config.MailFromName,
		), nil
	case "kafka":
		m := mail.NewKafkaMailer(app.config.KafkaBroker, app.config.KafkaTopic)
		return m, m.Close
	default:
		return mail.NewLogMailer(app.logger), nil
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting basekit server", "version", app.version)
	app.initSignalHandler(cancelFunc)

	shutdownTracing := telemetry.Setup("basekit-server")
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			app.logger.Warn(ctx, "tracing shutdown failed", "error", err)
		}
	}()

	obs.Init()
	obs.InitBuildInfo(app.version, app.commit)

	conn, err := db.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, conn); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	hub := stream.NewHub()
	mailer, closeMailer := app.buildMailer()
	if closeMailer != nil {
		defer func() {
			if err := closeMailer(); err != nil {
				app.logger.Warn(ctx, "mailer close failed", "error", err)
			}
		}()
	}

	identity := services.NewIdentityService(conn, rm, hub, app.config)
	reset := services.NewResetService(conn, rm, identity, mailer, app.logger, app.config.AppBaseURL)
	users := services.NewUsersService(conn, rm, identity, hub)
	roles := services.NewRolesService(conn, rm)
	settings := services.NewSettingsService(conn, rm)
	avatars := services.NewAvatarService(conn, rm, app.config)

	api := httpapi.New(app.config, app.logger, app.version, httpapi.Deps{
		Identity: identity,
		Users:    users,
		Roles:    roles,
		Settings: settings,
		Avatars:  avatars,
		Reset:    reset,
		Feed:     hub,
	})

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "http server listening", "addr", app.config.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
