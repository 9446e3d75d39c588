package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"actionitems/config/database"
	"actionitems/pkg/logger"
	"actionitems/router"
	"actionitems/socket"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the action items HTTP service and change feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init()
			defer logger.Sync()

			cfg := app.Config
			if addr != "" {
				cfg.Addr = addr
			}
			if cfg.JWTSecret == "" {
				logger.Sugar.Warn("SUPABASE_JWT_SECRET is not set; every request will be rejected")
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
			}

			hub := socket.NewHub()
			go hub.Run()

			srv := &http.Server{
				Addr: cfg.Addr,
				Handler: router.Setup(db, hub, router.Options{
					JWTSecret:     cfg.JWTSecret,
					AllowedOrigin: cfg.AllowedOrigin,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Sugar.Infof("Action items service listening on %s", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Sugar.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the schema before serving")
	return cmd
}
