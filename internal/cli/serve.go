package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/noah-isme/sims-core/internal/handler"
	"github.com/noah-isme/sims-core/pkg/config"
)

func newServeDiagCommand(opts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve-diag",
		Short: "Serve health, readiness and Prometheus metrics on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := opts.open(ctx, opts.Verbose)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck

			if port == 0 {
				port = app.Config.Diagnostics.Port
			}
			if app.Config.Env == config.EnvProduction {
				gin.SetMode(gin.ReleaseMode)
			}

			checks := map[string]handler.Pinger{
				"database": handler.PingFunc(app.DB.DB().PingContext),
			}
			if app.Cache.Enabled() {
				checks["cache"] = app.Cache
			}
			router := handler.Router(handler.NewMetricsHandler(app.Metrics, checks), app.Logger)

			srv := &http.Server{
				Addr:              fmt.Sprintf("127.0.0.1:%d", port),
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				app.Logger.Sugar().Infow("diagnostics server starting", "addr", srv.Addr, "env", app.Config.Env)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to DIAG_PORT)")
	return cmd
}
