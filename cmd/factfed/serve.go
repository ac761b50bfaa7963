package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pevans/factfed/logging"
	"github.com/pevans/factfed/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report store over HTTP",
		Long: `Start the report API:

  GET  /api/v1/reports        list reports (check_result, category, limit, offset)
  GET  /api/v1/reports/:id    one report
  GET  /api/v1/stats          verdict and category counts
  POST /api/v1/extract        run extraction on {"title", "raw_text"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.API.Addr
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			server := &http.Server{
				Addr:              addr,
				Handler:           store.NewAPIServer(st).SetupRouter(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting report API server", logging.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down report API server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
