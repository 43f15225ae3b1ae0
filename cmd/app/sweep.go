package main

import (
	"dispatch/cmd"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire pending offers past their deadline once and exit",
	RunE: func(c *cobra.Command, _ []string) error {
		app, err := cmd.NewCompositionRoot(c.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		expired, err := app.CreateOfferExpiryJob().RunOnce(c.Context())
		if err != nil {
			return err
		}
		logger.Info("offer sweep finished", zap.Int("expired", expired))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
