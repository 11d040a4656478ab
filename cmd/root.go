package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "invoicer",
		Short:         "Monthly billing reconciliation for managed automation clients",
		Long:          "invoicer aggregates client runtime usage from the automation cloud, reconciles it against each client's contract terms, creates the month's invoices, and archives the supporting usage reports.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newCreateInvoicesCmd(app),
		newSendInvoicesCmd(app),
		newSyncProcessesCmd(app),
	)

	return rootCmd
}
