package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adminflow/adminflow-api/internal/api"
	"github.com/adminflow/adminflow-api/internal/api/handler"
	"github.com/adminflow/adminflow-api/internal/infrastructure/http/handlers"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API and the email workers.

The process stops gracefully on SIGINT or SIGTERM: in-flight requests are
drained, then queued emails are delivered before exit.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.bootstrapAdmin(ctx); err != nil {
		return err
	}

	// workers outlive ctx so queued mail is flushed during shutdown
	a.mailer.Start(context.WithoutCancel(ctx))

	e := api.NewRouter(api.Handlers{
		Auth:          handler.NewAuthHandler(a.auth),
		Registrations: handler.NewRegistrationHandler(a.registrations),
		Sync:          handler.NewSyncHandler(a.sync),
		AnnualUpdate:  handler.NewAnnualUpdateHandler(a.annualUpdate),
		Teams:         handler.NewTeamHandler(a.teams),
		Health:        handlers.NewHealthHandler(a.modes()),
		Readiness: handlers.NewHealthDependenciesHandler(map[string]handlers.Check{
			"mongo": handlers.MongoCheck(a.db),
			"redis": handlers.RedisCheck(a.redis),
		}),
	}, a.cfg.JWTSecret, a.log)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("server listening")
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	if err := a.mailer.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("email queue shutdown")
	}

	a.log.Info().Msg("server stopped")
	return nil
}
