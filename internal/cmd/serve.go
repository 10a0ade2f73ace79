package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lipidgenesis/internal/config"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code := run(cmd.Context(), opts, cmd.OutOrStdout()); code != 0 {
				return fmt.Errorf("server exited with status %d", code)
			}
			return nil
		},
	}
}

// run starts the HTTP server and blocks until it fails or a shutdown signal
// arrives. It returns the process exit status.
func run(ctx context.Context, opts *rootOptions, logOut io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.setup(logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lipidgenesis: %v\n", err)
		return 1
	}

	applog.Info(ctx, "configuration loaded",
		"addr", cfg.Server.Addr,
		"databaseMock", cfg.Database.UseMock,
		"databaseConfigured", cfg.Database.Enabled(),
		"logLevel", cfg.Logging.Level,
	)

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		applog.Error(ctx, "failed to load catalog", "error", err)
		return 1
	}

	srv, err := newServerFunc(serverConfig(cfg, cat))
	if err != nil {
		applog.Error(ctx, "failed to initialise server", "error", err)
		return 1
	}

	sigCh, stop := subscribeShutdownSig()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	applog.Info(ctx, "server stopped")
	return 0
}

func serverConfig(cfg config.Config, cat *refdata.Catalog) server.Config {
	return server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Report: server.ReportConfig{
			Title:  cfg.Report.Title,
			Locale: cfg.Report.Locale,
		},
		Catalog: cat,
	}
}
