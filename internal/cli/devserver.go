package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskdash/internal/fakeapi"
)

func newDevServerCmd(app *App) *cobra.Command {
	var (
		addr string
		demo bool
	)

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory development backend",
		Long:  "Run an in-memory backend implementing the dashboard REST API. It is seeded with " + fakeapi.SeedAdminEmail + " / " + fakeapi.SeedAdminPassword + ". Data is lost on exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []fakeapi.Option{fakeapi.WithLogger(app.log)}
			if demo {
				opts = append(opts, fakeapi.WithDemoData())
			}
			backend, err := fakeapi.New(opts...)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return writeErrIf(cmd, serve(ctx, addr, backend.Handler(), app.log))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("TASKDASH_DEV_ADDR", ":3000"), "Listen address")
	cmd.Flags().BoolVar(&demo, "demo", true, "Seed a sample project")
	return cmd
}

// serve runs h on addr until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("dev server listening", zap.String("addr", addr))
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("dev server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func writeErrIf(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	return writeErr(cmd, err)
}
