package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/pages-api/internal/database"
	"github.com/deppfellow/pages-api/internal/handler"
	"github.com/deppfellow/pages-api/internal/repository"
	"github.com/deppfellow/pages-api/internal/router"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/service"
	"github.com/spf13/cobra"
)

const defaultShutdownGrace = 30 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

Outside the local environment (and always for sqlite) pending migrations
are applied before the server starts listening.`,
		RunE: runServe,
	}

	cmd.Flags().Duration("shutdown-grace", defaultShutdownGrace, "Time allowed for in-flight requests on shutdown")
	cmd.Flags().Bool("skip-migrations", false, "Start without applying migrations")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grace, _ := cmd.Flags().GetDuration("shutdown-grace")
	skipMigrations, _ := cmd.Flags().GetBool("skip-migrations")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if !skipMigrations && (a.cfg.Primary.Env != "local" || a.cfg.Database.Driver == database.DriverSQLite) {
		if err := database.Migrate(ctx, a.log, a.cfg); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	srv, err := server.New(a.cfg, a.log, a.loggerService)
	if err != nil {
		return fmt.Errorf("initialising server: %w", err)
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		return fmt.Errorf("creating services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

	serverErrCh := make(chan error, 1)
	go func() {
		err := srv.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	a.log.Info().Msg("server shut down cleanly")
	return nil
}
