package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "fitlevel/internal/adapter/http"
	"fitlevel/internal/metrics"
	"fitlevel/internal/scheduler"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the nightly finalization job",
		Long: `Serve the JSON API under /api and Prometheus metrics under /metrics.

Finalization runs once at startup and then on the configured cron schedule.
SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions) (err error) {
	cfg := opts.cfg

	st, err := openStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("fitlevel", "server", reg)
	svcs := wire(st, m)

	oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up sso", err)
	}

	server := adapthttp.New(svcs, m, reg).WithOIDC(oidcCfg)
	if cfg.AuthDisabled {
		log.Warn("authentication disabled")
		server = server.WithoutAuth()
	}

	sched, err := scheduler.New(cfg.FinalizeCron, svcs.Levels, svcs.Auth)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up scheduler", err)
	}
	sched.Start(ctx)
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": cfg.Addr, "driver": cfg.DBDriver}).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "http server failed", err)
		}
		return nil
	case <-ctx.Done():
		log.Warn("signal received, shutting down ...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
