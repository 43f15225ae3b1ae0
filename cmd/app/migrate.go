package main

import (
	"dispatch/cmd"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the jobs, offers and pricing configuration tables",
	RunE: func(c *cobra.Command, _ []string) error {
		app, err := cmd.NewCompositionRoot(c.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if err = app.Migrate(c.Context()); err != nil {
			return err
		}
		logger.Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
