package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	servePort    int
	serveMigrate bool
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the offer expiry sweep",
	RunE: func(c *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := cmd.NewCompositionRoot(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if serveMigrate {
			if err = app.Migrate(ctx); err != nil {
				return err
			}
		}

		e, err := app.CreateRouter(ctx)
		if err != nil {
			return err
		}

		manager := app.CreateJobManager()
		if err = manager.StartAll(); err != nil {
			return err
		}
		defer manager.StopAll()

		port := servePort
		if port == 0 {
			port = cfg.HTTP.Port
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting server", zap.Int("port", port), zap.String("store", cfg.Store.Driver))
			if err := e.Start(fmt.Sprintf("0.0.0.0:%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "create the schema before serving")
	rootCmd.AddCommand(serveCmd)
}
