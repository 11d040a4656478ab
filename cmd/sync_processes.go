package cmd

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/whartman-APD/invoice-send-aws/internal/adapters/catalog/postgres"
	"github.com/whartman-APD/invoice-send-aws/internal/application"
)

func newSyncProcessesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-processes",
		Short: "Refresh the process catalog database from every client workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if app.cfg.DatabaseURL == "" {
				return errors.New("INVOICER_DATABASE_URL is required for sync-processes")
			}
			pool, err := pgxpool.New(ctx, app.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to catalog database: %w", err)
			}
			defer pool.Close()

			sync := application.NewSync(app.registry, app.secrets, app.platforms,
				postgres.NewStore(pool), app.clock, app.logger)

			result, err := sync.Run(ctx)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("%d of %d clients failed to sync", result.Failed, result.Clients)
			}
			return nil
		},
	}
}
