package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/gocrud/internal/database"
	"github.com/deppfellow/gocrud/internal/handler"
	"github.com/deppfellow/gocrud/internal/middleware"
	"github.com/deppfellow/gocrud/internal/repository"
	"github.com/deppfellow/gocrud/internal/router"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/deppfellow/gocrud/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

type serveOptions struct {
	migrate bool
	workers bool
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&opts.workers, "workers", true, "process email jobs in this process")

	return cmd
}

func runServe(parent context.Context, opts *serveOptions) error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.migrate && cfg.Primary.Env != "local" {
		if err := database.Migrate(ctx, log, cfg); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return err
	}

	if opts.workers {
		if err := srv.Job.Start(); err != nil {
			return err
		}
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		return err
	}
	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv, services)

	srv.SetupHTTPServer(router.NewRouter(srv, handlers, middlewares))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
