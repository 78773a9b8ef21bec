package main

import (
	"github.com/deppfellow/gocrud/internal/database"
	"github.com/deppfellow/gocrud/internal/repository"
	"github.com/spf13/cobra"
)

func newPruneTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired API tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			db, err := database.New(cfg, log, loggerService)
			if err != nil {
				return err
			}
			defer db.Close()

			deleted, err := repository.NewTokenRepository(db.Pool).DeleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int64("deleted", deleted).Msg("pruned expired api tokens")
			return nil
		},
	}
}
