// Command gocrud runs the API server, the email worker and maintenance
// tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/deppfellow/gocrud/internal/config"
	"github.com/deppfellow/gocrud/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gocrud",
		Short:         "Auth and CRUD API with a request-to-query filter compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newWorkerCommand())
	cmd.AddCommand(newPruneTokensCommand())

	return cmd
}

// bootstrap loads the configuration and builds the logger every command
// shares.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}
