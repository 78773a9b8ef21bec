package main

import (
	"github.com/deppfellow/gocrud/internal/lib/job"
	"github.com/spf13/cobra"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process queued email jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			jobs := job.NewJobService(log, cfg)
			defer func() {
				if err := jobs.Client.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close job client")
				}
			}()

			// asynq stops on SIGINT and SIGTERM by itself.
			return jobs.Run()
		},
	}
}
