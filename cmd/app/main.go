package main

import (
	"fmt"
	"os"

	"dispatch/cmd"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    cmd.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "dispatch",
	Short:         "Dispatch and pricing engine for moves, service requests and waste pickups",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := cmd.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := cmd.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		zap.ReplaceGlobals(logger)

		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
