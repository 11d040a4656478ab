package cmd

import (
	"github.com/spf13/cobra"

	"github.com/whartman-APD/invoice-send-aws/internal/application"
)

func newSendInvoicesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send-invoices",
		Short: "Email today's invoices and mail the bookkeeper a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			booksClient, err := app.booksClient(ctx)
			if err != nil {
				return err
			}
			mailClient, err := app.mailClient(ctx)
			if err != nil {
				return err
			}

			sender := application.NewSender(application.SenderConfig{
				BookkeeperEmail:   app.cfg.BookkeeperEmail,
				SenderEmail:       app.cfg.SenderEmail,
				ExcludedCustomers: app.cfg.ExcludedSet(),
			}, booksClient, mailClient, app.clock, app.logger)

			_, err = sender.Run(ctx)
			return err
		},
	}
}
