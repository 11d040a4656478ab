package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whartman-APD/invoice-send-aws/internal/application"
)

func newCreateInvoicesCmd(app *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "create-invoices",
		Short: "Aggregate last month's usage and create client invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			trackerClient, err := app.trackerClient(ctx)
			if err != nil {
				return err
			}
			booksClient, err := app.booksClient(ctx)
			if err != nil {
				return err
			}
			docsClient, err := app.docsClient(ctx)
			if err != nil {
				return err
			}

			reference, err := app.cfg.ReferenceDate(app.clock.Now)
			if err != nil {
				return err
			}

			cfg := application.BatchConfig{
				LowerClientID:          app.cfg.LowerClientID,
				UpperClientID:          app.cfg.UpperClientID,
				Net30ClientIDs:         app.cfg.Net30Set(),
				UploadReports:          app.cfg.UploadReports && !dryRun,
				CreateInvoices:         app.cfg.CreateInvoices && !dryRun,
				UpdateContractCounters: app.cfg.UpdateContractCounters && !dryRun,
				ReferenceDate:          reference,
				ArchiveBasePath:        app.cfg.ArchiveBasePath,
			}

			batch := application.NewBatch(cfg, application.BatchDeps{
				Registry:   app.registry,
				Secrets:    app.secrets,
				Platforms:  app.platforms,
				Snapshots:  docsClient,
				Contracts:  application.NewContractResolver(trackerClient, app.logger, cfg.UpdateContractCounters),
				Accounting: booksClient,
				Documents:  docsClient,
			}, app.logger)

			result, err := batch.Run(ctx)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("%d of %d clients failed", result.Failed, result.Processed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and log everything, skip invoices, uploads, and counter writes")

	return cmd
}
