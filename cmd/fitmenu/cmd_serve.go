// cmd/fitmenu/cmd_serve.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitmenu/internal/metrics"
	"fitmenu/internal/server"
	"fitmenu/internal/storage"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the menu tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(false)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer store.Close()

			m := metrics.New()
			svc := newDailyService(cfg, store, m, log)

			srv, err := server.NewMenuServer(&server.Config{
				Host: cfg.Server.Host,
				Port: cfg.Server.Port,
			}, svc, store, m, log)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			ctx := cmd.Context()
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				log.Info("received shutdown signal")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Warn("error during shutdown", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "host address")
	cmd.Flags().IntVar(&port, "port", 8011, "port for HTTP transport")
	return cmd
}
